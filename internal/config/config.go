package config

import (
	"bytes"
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Callback CallbackConfig `mapstructure:"callback"`
	Log      LogConfig      `mapstructure:"log"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	Token string `mapstructure:"token"`
}

type DeliveryConfig struct {
	DefaultUMO string `mapstructure:"default_umo"`
}

type QueueConfig struct {
	Driver      string        `mapstructure:"driver"` // "memory" | "redis"
	Capacity    int           `mapstructure:"capacity"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	RedisKey    string        `mapstructure:"redis_key"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"`
}

type SinkConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	TextPath  string        `mapstructure:"text_path"`
	ImagePath string        `mapstructure:"image_path"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type CallbackConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies
// env overrides (PUSHGATE_*). An empty auth token is backfilled with a
// generated one and written back to the config file best-effort; this is the
// only config mutation and it happens before any component starts.
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (PUSHGATE_*), dots become underscores
	v.SetEnvPrefix("PUSHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Auth.Token == "" {
		cfg.Auth.Token = NewToken()
		v.Set("auth.token", cfg.Auth.Token)
		if path != "" {
			// best-effort persist so the operator can find the token
			_ = v.WriteConfigAs(path)
		}
	}

	return cfg, nil
}

// NewToken generates a random bearer token (32 bytes, base64url).
func NewToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
