package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/tutorbot/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":10000")
			convey.So(cfg.TelegramMode, convey.ShouldEqual, config.ModePolling)
			convey.So(cfg.RateLimitPerUser, convey.ShouldEqual, 10)
			convey.So(cfg.RateLimitWindow(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.RateLimitBackend, convey.ShouldEqual, config.BackendMemory)
			convey.So(cfg.SessionIdleTTL(), convey.ShouldEqual, 168*time.Hour)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.MaxMessageLength, convey.ShouldEqual, 4096)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then credentials are reported missing", func() {
			err := cfg.CheckCredentials()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "telegram_token")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(c *config.Config){
			"addr":                   func(c *config.Config) { c.Addr = "" },
			"telegram_mode":          func(c *config.Config) { c.TelegramMode = "carrier-pigeon" },
			"rate_limit_backend":     func(c *config.Config) { c.RateLimitBackend = "etcd" },
			"redis_url":              func(c *config.Config) { c.RateLimitBackend = config.BackendRedis },
			"rate_limit_per_user":    func(c *config.Config) { c.RateLimitPerUser = -1 },
			"rate_limit_window_ms":   func(c *config.Config) { c.RateLimitWindowMS = 0 },
			"session_idle_ttl_hours": func(c *config.Config) { c.SessionIdleTTLHours = -1 },
			"worker_count":           func(c *config.Config) { c.WorkerCount = 0 },
			"queue_size":             func(c *config.Config) { c.QueueSize = 0 },
			"max_message_length":     func(c *config.Config) { c.MaxMessageLength = 3 },
		}
		for key, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, key)
		}
	})

	convey.Convey("Given a zero rate limit", t, func() {
		cfg := config.New(context.Background())
		cfg.RateLimitPerUser = 0
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

func TestConfig_Redacted(t *testing.T) {
	convey.Convey("Given a config with secrets", t, func() {
		cfg := config.New(context.Background())
		cfg.TelegramToken = "123:abc"
		cfg.GeminiAPIKey = "key"
		out := cfg.Redacted()

		convey.So(out.TelegramToken, convey.ShouldEqual, "****")
		convey.So(out.GeminiAPIKey, convey.ShouldEqual, "****")
		convey.So(out.TelegramWebhookSecret, convey.ShouldBeEmpty)
		convey.So(cfg.TelegramToken, convey.ShouldEqual, "123:abc")
	})
}
