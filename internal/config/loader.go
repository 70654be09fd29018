package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names read outside the prefixed namespace.
const (
	EnvPrefix     = "TUTORBOT_"
	EnvConfigPath = "TUTORBOT_CONFIG"
	envDotFile    = ".env"
)

// Keys honoured for compatibility with existing deployments when the
// prefixed key is not set.
var fallbackEnv = map[string]string{
	"telegram_token": "TELEGRAM_BOT_TOKEN",
	"gemini_api_key": "GEMINI_API_KEY",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from path, or TUTORBOT_CONFIG when path is empty
//  3. env (prefix TUTORBOT_), after loading .env if present
//
// TELEGRAM_BOT_TOKEN, GEMINI_API_KEY and PORT fill in their keys when
// nothing above set them.
func Load(ctx context.Context, path string) (*Config, error) {
	if err := godotenv.Load(envDotFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, envDotFile, err)
	}

	base := New(ctx)
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TUTORBOT_RATE_LIMIT_PER_USER -> rate_limit_per_user (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	applyFallbacks(k, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFallbacks(k *koanf.Koanf, cfg *Config) {
	targets := map[string]*string{
		"telegram_token": &cfg.TelegramToken,
		"gemini_api_key": &cfg.GeminiAPIKey,
	}
	for key, name := range fallbackEnv {
		if k.Exists(key) {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*targets[key] = v
		}
	}
	if !k.Exists("addr") {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		}
	}
}
