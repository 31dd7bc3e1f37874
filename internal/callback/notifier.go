// Package callback posts delivery results to caller-supplied URLs.
// Strictly best-effort: nothing here feeds back into the pipeline.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pushgate/internal/metrics"
	"pushgate/internal/model"
)

const DefaultTimeout = 5 * time.Second

type Notifier struct {
	client *http.Client
	log    *zap.Logger
}

func NewNotifier(timeout time.Duration, log *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Notify POSTs the delivery result to url. Failures are logged and swallowed;
// there are no retries. The worker fires this on a detached goroutine.
func (n *Notifier) Notify(ctx context.Context, url string, res model.DeliveryResult) {
	b, err := json.Marshal(res)
	if err != nil {
		n.log.Error("callback: marshal result", zap.String("message_id", res.MessageID), zap.Error(err))
		metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		n.log.Error("callback: build request", zap.String("url", url), zap.Error(err))
		metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("callback: post failed",
			zap.String("url", url),
			zap.String("message_id", res.MessageID),
			zap.Error(err))
		metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.log.Warn("callback: non-2xx response",
			zap.String("url", url),
			zap.String("message_id", res.MessageID),
			zap.Int("status", resp.StatusCode))
		metrics.CallbacksTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.CallbacksTotal.WithLabelValues("ok").Inc()
}
