package main

import "pushgate/cmd"

func main() {
	cmd.Execute()
}
