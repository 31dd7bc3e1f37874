// Package lifecycle owns startup ordering and graceful shutdown of the
// ingress server and the delivery worker.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"pushgate/internal/config"
	"pushgate/internal/metrics"
	"pushgate/internal/queue"
)

// ShutdownGrace bounds how long the ingress server may keep draining
// in-flight requests before it is closed forcefully.
const ShutdownGrace = 5 * time.Second

var ErrIncompleteConfig = errors.New("incomplete configuration")

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Server is the ingress side as the controller drives it.
type Server interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
	Close() error
}

// Runner is the worker loop.
type Runner interface {
	Run(ctx context.Context) error
}

// Controller sequences Stopped -> Starting -> Running -> Stopping -> Stopped.
// It refuses to start on incomplete configuration, spawns the server before
// the worker, and on stop cancels the worker, shuts the server down within
// the grace period, and discards whatever is still queued.
type Controller struct {
	cfg    config.Config
	queue  queue.Queue
	server Server
	worker Runner
	log    *zap.Logger

	state      atomic.Int32
	cancel     context.CancelFunc
	workerDone chan struct{}
	serverErr  chan error
}

func New(cfg config.Config, q queue.Queue, srv Server, w Runner, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{cfg: cfg, queue: q, server: srv, worker: w, log: log}
}

func (c *Controller) State() State { return State(c.state.Load()) }

// ServerErr surfaces an ingress server crash. Nil until Start succeeds.
func (c *Controller) ServerErr() <-chan error { return c.serverErr }

func (c *Controller) Start() error {
	if !c.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("lifecycle: start from state %s", c.State())
	}

	if c.cfg.Auth.Token == "" || c.cfg.Delivery.DefaultUMO == "" {
		c.log.Error("lifecycle: refusing to start",
			zap.Bool("token_set", c.cfg.Auth.Token != ""),
			zap.Bool("default_umo_set", c.cfg.Delivery.DefaultUMO != ""))
		c.state.Store(int32(StateStopped))
		return fmt.Errorf("%w: auth.token and delivery.default_umo are required", ErrIncompleteConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	// server first, then the worker loop
	c.serverErr = make(chan error, 1)
	go func() {
		c.serverErr <- c.server.Start(c.cfg.HTTP.Addr)
	}()

	c.workerDone = make(chan struct{})
	go func() {
		defer close(c.workerDone)
		if err := c.worker.Run(ctx); err != nil {
			c.log.Error("lifecycle: worker exited with error", zap.Error(err))
		}
	}()

	c.state.Store(int32(StateRunning))
	c.log.Info("lifecycle: running", zap.String("addr", c.cfg.HTTP.Addr))
	return nil
}

// Stop shuts the pipeline down. Queued-but-undelivered envelopes are
// discarded, not delivered: shutdown favors availability over completeness.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return nil
	}
	c.log.Info("lifecycle: stopping")

	// worker exits within one poll interval of this
	c.cancel()
	select {
	case <-c.workerDone:
	case <-ctx.Done():
		c.log.Warn("lifecycle: gave up waiting for worker", zap.Error(ctx.Err()))
	}

	graceCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := c.server.Shutdown(graceCtx); err != nil {
		c.log.Warn("lifecycle: graceful shutdown failed, closing", zap.Error(err))
		_ = c.server.Close()
	}

	if n := c.queue.Drain(context.Background()); n > 0 {
		metrics.MessagesTotal.WithLabelValues("discarded", "all").Add(float64(n))
		c.log.Warn("lifecycle: discarded queued messages", zap.Int("count", n))
	}
	metrics.QueueDepth.Set(0)

	c.state.Store(int32(StateStopped))
	c.log.Info("lifecycle: stopped")
	return nil
}
