package sink

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSinkSendText(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.URL, "/message/text", "/message/image", 1000, 3, 15000)
	require.NoError(t, s.SendText(context.Background(), "user1", "hello"))

	assert.Equal(t, "/message/text", gotPath)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &msg))
	assert.Equal(t, "user1", msg["umo"])
	assert.Equal(t, "hello", msg["text"])
}

func TestHTTPSinkSendImage(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	s := NewHTTPSink(srv.URL, "/message/text", "/message/image", 1000, 3, 15000)
	require.NoError(t, s.SendImage(context.Background(), "user2", raw))

	assert.Equal(t, "/message/image", gotPath)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &msg))
	assert.Equal(t, "user2", msg["umo"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), msg["image"])
}

func TestHTTPSinkNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.URL, "/t", "/i", 1000, 3, 15000)
	err := s.SendText(context.Background(), "u", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestHTTPSinkBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSink(srv.URL, "/t", "/i", 1000, 2, 60000)

	require.Error(t, s.SendText(context.Background(), "u", "x"))
	require.Error(t, s.SendText(context.Background(), "u", "x"))
	assert.Equal(t, int64(2), calls.Load())

	// breaker is open now: rejected without touching the sink
	err := s.SendText(context.Background(), "u", "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int64(2), calls.Load())
}
