package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushgate/internal/model"
)

func TestMemoryFIFO(t *testing.T) {
	q := NewMemory(10)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, model.Envelope{ID: id}))
	}
	assert.Equal(t, 3, q.Len(ctx))

	for _, want := range []string{"a", "b", "c"} {
		env, ok, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, env.ID)
	}
	assert.Equal(t, 0, q.Len(ctx))
}

func TestMemoryFullRejectsWithoutBlocking(t *testing.T) {
	q := NewMemory(2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, model.Envelope{ID: "a"}))
	require.NoError(t, q.Enqueue(ctx, model.Envelope{ID: "b"}))

	start := time.Now()
	err := q.Enqueue(ctx, model.Envelope{ID: "c"})
	assert.ErrorIs(t, err, ErrFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "enqueue on full queue must not block")

	// existing messages untouched, FIFO preserved
	env, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", env.ID)
}

func TestMemoryDequeueTimeout(t *testing.T) {
	q := NewMemory(1)

	start := time.Now()
	_, ok, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMemoryDequeueCancelled(t *testing.T) {
	q := NewMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, ok, err := q.Dequeue(ctx, 5*time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryDrain(t *testing.T) {
	q := NewMemory(5)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(ctx, model.Envelope{ID: fmt.Sprintf("m%d", i)}))
	}

	assert.Equal(t, 4, q.Drain(ctx))
	assert.Equal(t, 0, q.Len(ctx))
	assert.Equal(t, 0, q.Drain(ctx))
}

func TestMemoryConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 25

	q := NewMemory(producers * perProducer)
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Enqueue(ctx, model.Envelope{ID: fmt.Sprintf("%d-%d", p, i)})
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len(ctx))

	seen := make(map[string]bool)
	for i := 0; i < producers*perProducer; i++ {
		env, ok, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.False(t, seen[env.ID], "duplicate %s", env.ID)
		seen[env.ID] = true
	}
}
