package service

import (
	"time"

	"github.com/okian/tutorbot/internal/adapters/completion"
	"github.com/okian/tutorbot/internal/adapters/repository"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/library"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
	"github.com/okian/tutorbot/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransport sets the chat transport replies go out through.
func WithTransport(t Transport) Option {
	return func(s *Service) { s.transport = t }
}

// WithCompletion sets the provider answering free text.
func WithCompletion(p completion.Provider) Option {
	return func(s *Service) { s.provider = p }
}

// WithLimiter replaces the default in-memory rate limiter.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithSessions replaces the default in-memory session store.
func WithSessions(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithCatalog sets the library catalog shown in reading mode.
func WithCatalog(c *library.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithEngine replaces the mini-game engine.
func WithEngine(e *game.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithWorkerCount sets the number of queue lanes, one worker each.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the total capacity of the event queue. It is split
// evenly across lanes.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of delivery ids remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxMessageLength sets the longest reply sent, in characters.
func WithMaxMessageLength(n int) Option {
	return func(s *Service) {
		if n > len(ellipsis) {
			s.maxMessageLength = n
		}
	}
}

// WithHandlerTimeout bounds the handling of one event.
func WithHandlerTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.handlerTimeout = d
		}
	}
}

// WithSweepInterval sets how often idle rate records and sessions are
// removed. Zero disables the sweeper.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sweepInterval = d
		}
	}
}

// WithSessionIdleTTL sets how long a session may stay untouched before the
// sweeper drops it. Zero keeps sessions forever.
func WithSessionIdleTTL(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.sessionIdleTTL = d
		}
	}
}
