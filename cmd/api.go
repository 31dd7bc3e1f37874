package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pushgate/internal/config"
	httpSrv "pushgate/internal/http"
	"pushgate/internal/logger"
	"pushgate/internal/metrics"
)

// apiCmd runs the ingress server alone, with the worker in a separate
// process (`pushgate worker`). Requires the redis queue driver so the two
// processes share nothing but the queue.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the ingress API only (redis queue required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := requireRedisQueue(cfg); err != nil {
			return err
		}

		log := logger.Init(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		metrics.MustRegister(prometheus.DefaultRegisterer)

		q, closeQueue, err := buildQueue(cfg)
		if err != nil {
			return err
		}
		defer closeQueue()

		server := httpSrv.NewServer(cfg, q)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}
