package worker

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// verifyImage is the default content-validation hook: the payload must fully
// decode as a supported image format.
func verifyImage(data []byte) error {
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("invalid image: %w", err)
	}
	return nil
}
