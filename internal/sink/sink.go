// Package sink abstracts the downstream message-delivery API. The worker
// only sees success or failure per send; transport details stay here.
package sink

import "context"

type Sink interface {
	SendText(ctx context.Context, umo, text string) error
	SendImage(ctx context.Context, umo string, image []byte) error
}
