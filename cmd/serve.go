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
	"pushgate/internal/lifecycle"
	"pushgate/internal/logger"
	"pushgate/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the full pipeline: ingress API and delivery worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
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
		w := buildWorker(cfg, q)

		ctrl := lifecycle.New(cfg, q, server, w, log.Named("lifecycle"))
		if err := ctrl.Start(); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-ctrl.ServerErr():
			if err != nil {
				log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ctrl.Stop(ctx)
	},
}
