package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pushgate/internal/config"
	"pushgate/internal/logger"
	"pushgate/internal/metrics"
)

// workerCmd runs the delivery worker alone, consuming the shared redis
// queue fed by a `pushgate api` process.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the delivery worker only (redis queue required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := requireRedisQueue(cfg); err != nil {
			return err
		}
		if cfg.Sink.BaseURL == "" {
			return fmt.Errorf("sink.base_url is required")
		}

		log := logger.Init(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		metrics.MustRegister(prometheus.DefaultRegisterer)

		q, closeQueue, err := buildQueue(cfg)
		if err != nil {
			return err
		}
		defer closeQueue()

		w := buildWorker(cfg, q)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info(">> worker started",
			zap.String("queue_key", cfg.Queue.RedisKey),
			zap.Duration("poll_timeout", w.PollTimeout))

		return w.Run(ctx)
	},
}
