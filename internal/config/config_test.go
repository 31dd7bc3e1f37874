package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9966", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.Queue.Driver)
	assert.Equal(t, 100, cfg.Queue.Capacity)
	assert.Equal(t, time.Second, cfg.Queue.PollTimeout)
	assert.Equal(t, "pushgate:queue", cfg.Queue.RedisKey)
	assert.Equal(t, 5*time.Second, cfg.Callback.Timeout)
	assert.Equal(t, 3, cfg.Sink.Breaker.FailThreshold)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Delivery.DefaultUMO)

	// empty token is backfilled with a generated one
	assert.NotEmpty(t, cfg.Auth.Token)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http:\n  addr: \"127.0.0.1:8080\"\nauth:\n  token: \"abc\"\ndelivery:\n  default_umo: \"user1\"\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, "abc", cfg.Auth.Token)
	assert.Equal(t, "user1", cfg.Delivery.DefaultUMO)
	// untouched keys keep defaults
	assert.Equal(t, "memory", cfg.Queue.Driver)
}

func TestLoadBackfillsTokenAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"delivery:\n  default_umo: \"user1\"\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Auth.Token)

	// the generated token survives a reload
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Auth.Token, again.Auth.Token)
}

func TestLoadKeepsExistingToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"auth:\n  token: \"keep-me\"\n",
	), 0o644))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "keep-me", cfg.Auth.Token)

	// file untouched when no backfill was needed
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PUSHGATE_DELIVERY_DEFAULT_UMO", "env-user")
	t.Setenv("PUSHGATE_QUEUE_DRIVER", "redis")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Delivery.DefaultUMO)
	assert.Equal(t, "redis", cfg.Queue.Driver)
}

func TestNewTokenIsRandom(t *testing.T) {
	a := NewToken()
	b := NewToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40) // 32 bytes base64url
}
