package cmd

import (
	"fmt"
	"time"

	"pushgate/internal/callback"
	"pushgate/internal/config"
	"pushgate/internal/db"
	"pushgate/internal/logger"
	"pushgate/internal/queue"
	"pushgate/internal/sink"
	"pushgate/internal/worker"
)

// buildQueue constructs the configured queue driver. The returned cleanup
// closes the redis client when one was dialed.
func buildQueue(cfg config.Config) (queue.Queue, func(), error) {
	switch cfg.Queue.Driver {
	case "", "memory":
		return queue.NewMemory(cfg.Queue.Capacity), func() {}, nil

	case "redis":
		rdb, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		q := queue.NewRedis(rdb, cfg.Queue.RedisKey, cfg.Queue.Capacity)
		return q, func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

// requireRedisQueue guards the split-process commands: the memory queue
// cannot cross a process boundary.
func requireRedisQueue(cfg config.Config) error {
	if cfg.Queue.Driver != "redis" {
		return fmt.Errorf("queue.driver must be \"redis\" to run ingress and worker as separate processes (got %q)", cfg.Queue.Driver)
	}
	return nil
}

func buildWorker(cfg config.Config, q queue.Queue) *worker.Worker {
	if cfg.Sink.BaseURL == "" {
		logger.Log.Warn("sink.base_url is empty, deliveries will fail")
	}
	s := sink.NewHTTPSink(
		cfg.Sink.BaseURL,
		cfg.Sink.TextPath,
		cfg.Sink.ImagePath,
		cfg.Sink.TimeoutMs,
		cfg.Sink.Breaker.FailThreshold,
		cfg.Sink.Breaker.OpenForMs,
	)
	n := callback.NewNotifier(cfg.Callback.Timeout, logger.Log.Named("callback"))

	w := worker.New(q, s, n, logger.Log.Named("worker"))
	if cfg.Queue.PollTimeout > 0 {
		w.PollTimeout = cfg.Queue.PollTimeout
	} else {
		w.PollTimeout = time.Second
	}
	return w
}
