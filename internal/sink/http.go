package sink

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable means the breaker is open: the sink has failed repeatedly
// and sends are rejected fast until the cooldown elapses.
var ErrUnavailable = errors.New("sink unavailable")

// HTTPSink delivers messages to the bot API over JSON POSTs, one path per
// message kind. A breaker guards against a dead sink eating the full client
// timeout on every queued message.
type HTTPSink struct {
	baseURL   string
	textPath  string
	imagePath string
	client    *http.Client
	br        *Breaker
}

func NewHTTPSink(baseURL, textPath, imagePath string, timeoutMs, failThreshold, openForMs int) *HTTPSink {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &HTTPSink{
		baseURL:   baseURL,
		textPath:  textPath,
		imagePath: imagePath,
		client:    &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:        NewBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

type textMessage struct {
	UMO  string `json:"umo"`
	Text string `json:"text"`
}

type imageMessage struct {
	UMO   string `json:"umo"`
	Image string `json:"image"` // base64-encoded bytes
}

func (s *HTTPSink) SendText(ctx context.Context, umo, text string) error {
	return s.send(ctx, s.textPath, textMessage{UMO: umo, Text: text})
}

func (s *HTTPSink) SendImage(ctx context.Context, umo string, image []byte) error {
	return s.send(ctx, s.imagePath, imageMessage{
		UMO:   umo,
		Image: base64.StdEncoding.EncodeToString(image),
	})
}

func (s *HTTPSink) send(ctx context.Context, path string, payload any) error {
	if !s.br.TryAcquire() {
		return ErrUnavailable
	}

	if err := s.post(ctx, path, payload); err != nil {
		s.br.OnFailure()
		return err
	}

	s.br.OnSuccess()

	return nil
}

func (s *HTTPSink) post(ctx context.Context, path string, payload any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("sink: path=%s status=%d", path, res.StatusCode)
	}

	return nil
}
