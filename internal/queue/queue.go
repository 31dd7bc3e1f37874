// Package queue implements the bounded FIFO channel between the ingress
// server and the delivery worker.
package queue

import (
	"context"
	"errors"
	"time"

	"pushgate/internal/model"
)

// ErrFull is returned by Enqueue when the queue is at capacity. It is a
// backpressure signal: the producer must not block or drop silently.
var ErrFull = errors.New("queue full")

// Queue is the sole shared channel between producer and consumer. Enqueue
// never blocks past the capacity check; Dequeue blocks at most for the poll
// timeout so the consumer can observe shutdown between polls.
type Queue interface {
	Enqueue(ctx context.Context, env model.Envelope) error
	// Dequeue returns (env, true, nil) on success and (zero, false, nil)
	// when the timeout elapses with the queue empty.
	Dequeue(ctx context.Context, timeout time.Duration) (model.Envelope, bool, error)
	// Len reports current depth. Best-effort under concurrent access.
	Len(ctx context.Context) int
	// Drain discards all queued envelopes and returns how many were dropped.
	Drain(ctx context.Context) int
	Close() error
}
