package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/tutorbot/internal/adapters/completion/gemini"
	"github.com/okian/tutorbot/internal/adapters/repository"
	"github.com/okian/tutorbot/internal/adapters/transport/telegram"
	"github.com/okian/tutorbot/internal/config"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
	"github.com/okian/tutorbot/pkg/logger"
)

const redisPingTimeout = 10 * time.Second

// deps holds the collaborators built from configuration.
type deps struct {
	limiter  ratelimit.Limiter
	sessions *repository.Sessions
	catalog  *library.Catalog
	engine   *game.Engine
	provider *gemini.Provider
	client   *telegram.Client

	closers []func() error
}

// Close releases the external clients in reverse order of creation.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *deps, err error) {
	d := &deps{}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	if d.limiter, err = buildLimiter(ctx, cfg, log, d); err != nil {
		return nil, err
	}

	d.sessions = repository.NewSessions(repository.WithShards(cfg.ShardCount))

	if d.catalog, err = buildCatalog(cfg); err != nil {
		return nil, err
	}
	log.Info(ctx, "library loaded", logger.Int("shelves", len(d.catalog.Shelves)), logger.String("root", d.catalog.Root))

	d.engine = game.NewEngine(game.DefaultContent(), game.NewSampler(seed(cfg.RNGSeed)))

	d.provider, err = gemini.New(ctx, cfg.GeminiAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithTimeout(cfg.GeminiTimeout()),
		gemini.WithLogger(log.Named("gemini")),
	)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, d.provider.Close)

	d.client = telegram.New(cfg.TelegramToken,
		telegram.WithAPIURL(cfg.TelegramAPIURL),
		telegram.WithLogger(log.Named("telegram")),
	)
	return d, nil
}

func buildLimiter(ctx context.Context, cfg *config.Config, log logger.Logger, d *deps) (ratelimit.Limiter, error) {
	opts := []ratelimit.Option{
		ratelimit.WithCap(cfg.RateLimitPerUser),
		ratelimit.WithWindow(cfg.RateLimitWindow()),
		ratelimit.WithShards(cfg.ShardCount),
		ratelimit.WithLogger(log.Named("ratelimit")),
	}
	if cfg.RateLimitBackend != config.BackendRedis {
		return ratelimit.NewMemory(opts...), nil
	}

	client, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, client.Close)
	log.Info(ctx, "rate limiter using redis")
	return ratelimit.NewRedis(client, opts...), nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func buildCatalog(cfg *config.Config) (*library.Catalog, error) {
	if cfg.LibraryCatalog == "" {
		return library.Empty(), nil
	}
	c, err := library.Load(cfg.LibraryCatalog)
	if err != nil {
		return nil, fmt.Errorf("load library catalog: %w", err)
	}
	return c, nil
}

// seed returns configured, or a clock-derived seed when it is zero.
func seed(configured uint64) uint64 {
	if configured != 0 {
		return configured
	}
	return uint64(time.Now().UnixNano())
}
