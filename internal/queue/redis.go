package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pushgate/internal/model"
)

const DefaultRedisKey = "pushgate:queue"

// pushScript checks capacity and pushes atomically so concurrent producers
// cannot overshoot the bound. Returns -1 when full, else the new length.
var pushScript = redis.NewScript(`
if redis.call("LLEN", KEYS[1]) >= tonumber(ARGV[2]) then
  return -1
end
return redis.call("RPUSH", KEYS[1], ARGV[1])
`)

// Redis is a Redis-list queue for running ingress and worker as separate
// processes. BLPOP is destructive: a message popped by a crashing worker is
// lost, same as the in-memory queue. No ack tracking.
type Redis struct {
	rdb      *redis.Client
	key      string
	capacity int
}

func NewRedis(rdb *redis.Client, key string, capacity int) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Redis{rdb: rdb, key: key, capacity: capacity}
}

func (r *Redis) Enqueue(ctx context.Context, env model.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	n, err := pushScript.Run(ctx, r.rdb, []string{r.key}, payload, r.capacity).Int64()
	if err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	if n < 0 {
		return ErrFull
	}
	return nil
}

func (r *Redis) Dequeue(ctx context.Context, timeout time.Duration) (model.Envelope, bool, error) {
	vals, err := r.rdb.BLPop(ctx, timeout, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Envelope{}, false, nil
		}
		return model.Envelope{}, false, fmt.Errorf("redis pop: %w", err)
	}
	// BLPOP returns [key, value]
	if len(vals) != 2 {
		return model.Envelope{}, false, fmt.Errorf("redis pop: unexpected reply of %d elements", len(vals))
	}
	var env model.Envelope
	if err := json.Unmarshal([]byte(vals[1]), &env); err != nil {
		return model.Envelope{}, false, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, true, nil
}

func (r *Redis) Len(ctx context.Context) int {
	n, err := r.rdb.LLen(ctx, r.key).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

func (r *Redis) Drain(ctx context.Context) int {
	pipe := r.rdb.TxPipeline()
	llen := pipe.LLen(ctx, r.key)
	pipe.Del(ctx, r.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0
	}
	return int(llen.Val())
}

// Close is a no-op; the redis client is owned by the caller.
func (r *Redis) Close() error { return nil }
