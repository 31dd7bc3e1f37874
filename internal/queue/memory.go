package queue

import (
	"context"
	"time"

	"pushgate/internal/model"
)

const DefaultCapacity = 100

// Memory is the in-process queue: a buffered channel, safe for concurrent
// producers and a single consumer.
type Memory struct {
	ch chan model.Envelope
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{ch: make(chan model.Envelope, capacity)}
}

func (m *Memory) Enqueue(ctx context.Context, env model.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case m.ch <- env:
		return nil
	default:
		return ErrFull
	}
}

func (m *Memory) Dequeue(ctx context.Context, timeout time.Duration) (model.Envelope, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case env := <-m.ch:
		return env, true, nil
	case <-timer.C:
		return model.Envelope{}, false, nil
	case <-ctx.Done():
		return model.Envelope{}, false, ctx.Err()
	}
}

func (m *Memory) Len(_ context.Context) int { return len(m.ch) }

func (m *Memory) Drain(_ context.Context) int {
	n := 0
	for {
		select {
		case <-m.ch:
			n++
		default:
			return n
		}
	}
}

// Close is a no-op: the channel is never closed so late producers fail with
// ErrFull instead of panicking.
func (m *Memory) Close() error { return nil }
