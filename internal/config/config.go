// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Durations are configured as integer milliseconds (or hours/seconds where
//   the key says so) and exposed through typed accessors.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Telegram delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Rate limiter backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const redacted = "****"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" yaml:"addr"`

	TelegramToken         string `koanf:"telegram_token" yaml:"telegram_token"`
	TelegramAPIURL        string `koanf:"telegram_api_url" yaml:"telegram_api_url"`
	TelegramMode          string `koanf:"telegram_mode" yaml:"telegram_mode"`
	TelegramWebhookURL    string `koanf:"telegram_webhook_url" yaml:"telegram_webhook_url"`
	TelegramWebhookSecret string `koanf:"telegram_webhook_secret" yaml:"telegram_webhook_secret"`
	TelegramPollTimeoutS  int    `koanf:"telegram_poll_timeout_s" yaml:"telegram_poll_timeout_s"`

	GeminiAPIKey    string `koanf:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel     string `koanf:"gemini_model" yaml:"gemini_model"`
	GeminiTimeoutMS int    `koanf:"gemini_timeout_ms" yaml:"gemini_timeout_ms"`

	// RateLimitPerUser is the number of admitted requests per window.
	RateLimitPerUser  int    `koanf:"rate_limit_per_user" yaml:"rate_limit_per_user"`
	RateLimitWindowMS int    `koanf:"rate_limit_window_ms" yaml:"rate_limit_window_ms"`
	RateLimitBackend  string `koanf:"rate_limit_backend" yaml:"rate_limit_backend"`
	RedisURL          string `koanf:"redis_url" yaml:"redis_url"`

	// SweepIntervalMS is how often idle rate records and sessions are reaped.
	SweepIntervalMS int `koanf:"sweep_interval_ms" yaml:"sweep_interval_ms"`
	// SessionIdleTTLHours removes sessions idle this long; 0 keeps them forever.
	SessionIdleTTLHours int `koanf:"session_idle_ttl_hours" yaml:"session_idle_ttl_hours"`

	// QueueSize bounds the in-memory event queue across all lanes.
	QueueSize int `koanf:"queue_size" yaml:"queue_size"`
	// WorkerCount sets the number of queue lanes, one worker each.
	WorkerCount int `koanf:"worker_count" yaml:"worker_count"`
	// DedupeSize sets the size of the update id deduplication ring.
	DedupeSize int `koanf:"dedupe_size" yaml:"dedupe_size"`
	// ShardCount configures the lock shards of the per-user stores.
	ShardCount int `koanf:"shard_count" yaml:"shard_count"`

	MaxMessageLength int `koanf:"max_message_length" yaml:"max_message_length"`
	HandlerTimeoutMS int `koanf:"handler_timeout_ms" yaml:"handler_timeout_ms"`

	LibraryCatalog string `koanf:"library_catalog" yaml:"library_catalog"`
	// RNGSeed seeds game sampling; 0 picks a random seed.
	RNGSeed uint64 `koanf:"rng_seed" yaml:"rng_seed"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":10000",
		TelegramMode:         ModePolling,
		TelegramPollTimeoutS: 30,
		GeminiModel:          "gemini-1.5-flash",
		GeminiTimeoutMS:      30_000,
		RateLimitPerUser:     10,
		RateLimitWindowMS:    60_000,
		RateLimitBackend:     BackendMemory,
		SweepIntervalMS:      60_000,
		SessionIdleTTLHours:  168,
		QueueSize:            4096,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           10_000,
		ShardCount:           64,
		MaxMessageLength:     4096,
		HandlerTimeoutMS:     45_000,
	}
}

// Validate checks structural settings. Credentials are checked separately
// by CheckCredentials so the config can be inspected without them.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TelegramMode != ModePolling && c.TelegramMode != ModeWebhook:
		return fmt.Errorf("%w: telegram_mode must be %q or %q, got %q", ErrInvalidConfig, ModePolling, ModeWebhook, c.TelegramMode)
	case c.RateLimitBackend != BackendMemory && c.RateLimitBackend != BackendRedis:
		return fmt.Errorf("%w: rate_limit_backend must be %q or %q, got %q", ErrInvalidConfig, BackendMemory, BackendRedis, c.RateLimitBackend)
	case c.RateLimitBackend == BackendRedis && c.RedisURL == "":
		return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
	case c.RateLimitPerUser < 0:
		return fmt.Errorf("%w: rate_limit_per_user must not be negative", ErrInvalidConfig)
	case c.RateLimitWindowMS <= 0:
		return fmt.Errorf("%w: rate_limit_window_ms must be positive", ErrInvalidConfig)
	case c.SessionIdleTTLHours < 0:
		return fmt.Errorf("%w: session_idle_ttl_hours must not be negative", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxMessageLength < 4:
		return fmt.Errorf("%w: max_message_length must be at least 4", ErrInvalidConfig)
	}
	return nil
}

// CheckCredentials reports missing secrets needed to run the bot.
func (c *Config) CheckCredentials() error {
	switch {
	case c.TelegramToken == "":
		return fmt.Errorf("%w: telegram_token (or TELEGRAM_BOT_TOKEN) is required", ErrInvalidConfig)
	case c.GeminiAPIKey == "":
		return fmt.Errorf("%w: gemini_api_key (or GEMINI_API_KEY) is required", ErrInvalidConfig)
	case c.TelegramMode == ModeWebhook && c.TelegramWebhookSecret == "":
		return fmt.Errorf("%w: telegram_webhook_secret is required in webhook mode", ErrInvalidConfig)
	}
	return nil
}

// Redacted returns a copy with secrets masked.
func (c Config) Redacted() Config {
	for _, s := range []*string{&c.TelegramToken, &c.GeminiAPIKey, &c.TelegramWebhookSecret, &c.RedisURL} {
		if *s != "" {
			*s = redacted
		}
	}
	return c
}

// RateLimitWindow returns the sliding window length.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// SweepInterval returns the sweeper period.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMS) * time.Millisecond
}

// SessionIdleTTL returns the idle session lifetime; zero disables sweeping.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleTTLHours) * time.Hour
}

// HandlerTimeout bounds the handling of one event.
func (c *Config) HandlerTimeout() time.Duration {
	return time.Duration(c.HandlerTimeoutMS) * time.Millisecond
}

// GeminiTimeout bounds one completion request.
func (c *Config) GeminiTimeout() time.Duration {
	return time.Duration(c.GeminiTimeoutMS) * time.Millisecond
}

// PollTimeout is the getUpdates long-poll timeout.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.TelegramPollTimeoutS) * time.Second
}
