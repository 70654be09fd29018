package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/tutorbot/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TUTORBOT_CONFIG", "TUTORBOT_ADDR", "TUTORBOT_RATE_LIMIT_PER_USER", "TUTORBOT_TELEGRAM_TOKEN",
	"TUTORBOT_WORKER_COUNT", "TUTORBOT_TELEGRAM_MODE", "TUTORBOT_RNG_SEED",
	"TELEGRAM_BOT_TOKEN", "GEMINI_API_KEY", "PORT",
}

// isolate clears config variables and runs from an empty directory so no
// stray .env is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	t.Chdir(t.TempDir())
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		isolate(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":10000")
				convey.So(cfg.RateLimitPerUser, convey.ShouldEqual, 10)
				convey.So(cfg.TelegramToken, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TUTORBOT_ADDR", ":8080")
			_ = os.Setenv("TUTORBOT_RATE_LIMIT_PER_USER", "25")
			_ = os.Setenv("TUTORBOT_WORKER_COUNT", "3")
			_ = os.Setenv("TUTORBOT_RNG_SEED", "42")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RateLimitPerUser, convey.ShouldEqual, 25)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.RNGSeed, convey.ShouldEqual, uint64(42))
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nrate_limit_per_user: 5\nlibrary_catalog: lib.yaml\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)

			convey.Convey("Then file values apply and env still wins", func() {
				_ = os.Setenv("TUTORBOT_RATE_LIMIT_PER_USER", "6")
				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RateLimitPerUser, convey.ShouldEqual, 6)
				convey.So(cfg.LibraryCatalog, convey.ShouldEqual, "lib.yaml")
			})

			convey.Convey("Then TUTORBOT_CONFIG is used when no path is given", func() {
				_ = os.Setenv("TUTORBOT_CONFIG", path)
				cfg, err := config.Load(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When legacy variables are set", func() {
			_ = os.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
			_ = os.Setenv("GEMINI_API_KEY", "legacy-key")
			_ = os.Setenv("PORT", "9999")

			convey.Convey("Then they fill unset keys", func() {
				cfg, err := config.Load(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TelegramToken, convey.ShouldEqual, "legacy-token")
				convey.So(cfg.GeminiAPIKey, convey.ShouldEqual, "legacy-key")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
				convey.So(cfg.CheckCredentials(), convey.ShouldBeNil)
			})

			convey.Convey("Then prefixed keys take precedence", func() {
				_ = os.Setenv("TUTORBOT_TELEGRAM_TOKEN", "new-token")
				_ = os.Setenv("TUTORBOT_ADDR", ":1234")
				cfg, err := config.Load(ctx, "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TelegramToken, convey.ShouldEqual, "new-token")
				convey.So(cfg.Addr, convey.ShouldEqual, ":1234")
			})
		})

		convey.Convey("When a .env file is present", func() {
			convey.So(os.WriteFile(".env", []byte("TUTORBOT_RATE_LIMIT_PER_USER=33\n"), 0o600), convey.ShouldBeNil)
			defer func() { _ = os.Unsetenv("TUTORBOT_RATE_LIMIT_PER_USER") }()

			cfg, err := config.Load(ctx, "")
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.RateLimitPerUser, convey.ShouldEqual, 33)
		})

		convey.Convey("When the resulting config is invalid", func() {
			_ = os.Setenv("TUTORBOT_TELEGRAM_MODE", "smoke-signals")
			_, err := config.Load(ctx, "")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
