package worker

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pushgate/internal/callback"
	"pushgate/internal/metrics"
	"pushgate/internal/model"
	"pushgate/internal/queue"
	"pushgate/internal/sink"
)

const (
	DefaultPollTimeout = time.Second

	// dequeueErrBackoff paces retries when the queue itself fails (e.g. a
	// Redis outage makes Dequeue return immediately instead of polling).
	dequeueErrBackoff = 200 * time.Millisecond
)

// Worker drains the queue one envelope at a time:
// - polls with a short timeout so shutdown is observed between polls,
// - dispatches to the sink by message kind,
// - produces exactly one DeliveryResult per dequeued envelope,
// - fires the callback on a detached goroutine when a callback_url is set.
//
// Delivery failures are local: logged, reflected in the result, never
// requeued, never fatal to the loop.
type Worker struct {
	// Dependencies
	Queue    queue.Queue
	Sink     sink.Sink
	Notifier *callback.Notifier

	// Behavior
	PollTimeout   time.Duration
	ValidateImage func([]byte) error // image integrity hook; nil => verifyImage

	log *zap.Logger
}

func New(q queue.Queue, s sink.Sink, n *callback.Notifier, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		Queue:       q,
		Sink:        s,
		Notifier:    n,
		PollTimeout: DefaultPollTimeout,
		log:         log,
	}
}

// Run blocks until ctx is cancelled, returning nil on normal shutdown. The
// loop exits within one poll interval of cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w.PollTimeout <= 0 {
		w.PollTimeout = DefaultPollTimeout
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		env, ok, err := w.Queue.Dequeue(ctx, w.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("worker: dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(dequeueErrBackoff):
			}
			continue
		}
		if !ok {
			// empty poll, loop to re-check ctx
			continue
		}

		metrics.QueueDepth.Set(float64(w.Queue.Len(ctx)))

		res := w.processOne(ctx, env)

		if env.CallbackURL != "" {
			// Detached: callback completion never delays the next dequeue,
			// and shutdown of the worker does not cancel an in-flight post.
			go w.Notifier.Notify(context.Background(), env.CallbackURL, res)
		}
	}
}

func (w *Worker) processOne(ctx context.Context, env model.Envelope) model.DeliveryResult {
	w.log.Info("worker: processing message",
		zap.String("message_id", env.ID),
		zap.String("umo", env.UMO),
		zap.String("kind", env.Kind.String()))

	err := w.deliver(ctx, env)

	res := model.DeliveryResult{MessageID: env.ID, Success: err == nil}
	if err != nil {
		res.Error = err.Error()
		metrics.MessagesTotal.WithLabelValues("failed", env.Kind.String()).Inc()
		w.log.Error("worker: delivery failed",
			zap.String("message_id", env.ID),
			zap.Error(err))
		return res
	}

	metrics.MessagesTotal.WithLabelValues("delivered", env.Kind.String()).Inc()
	w.log.Info("worker: message delivered", zap.String("message_id", env.ID))
	return res
}

func (w *Worker) deliver(ctx context.Context, env model.Envelope) error {
	switch env.Kind {
	case model.KindText:
		return w.Sink.SendText(ctx, env.UMO, env.Content)

	case model.KindImage:
		data, err := base64.StdEncoding.DecodeString(env.Content)
		if err != nil {
			return fmt.Errorf("decode image content: %w", err)
		}
		validate := w.ValidateImage
		if validate == nil {
			validate = verifyImage
		}
		// Invalid bytes never reach the sink.
		if err := validate(data); err != nil {
			return err
		}
		return w.Sink.SendImage(ctx, env.UMO, data)

	default:
		// Ingress normalizes unknown kinds to text, so this only fires for
		// foreign producers pushing directly onto a shared Redis queue.
		return fmt.Errorf("unsupported message kind %q", env.Kind)
	}
}
