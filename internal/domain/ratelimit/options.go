package ratelimit

import (
	"time"

	"github.com/okian/tutorbot/pkg/logger"
)

type config struct {
	cap    int
	window time.Duration
	clock  Clock
	shards int
	prefix string
	log    logger.Logger
}

func defaultConfig() config {
	return config{
		cap:    DefaultCap,
		window: DefaultWindow,
		clock:  time.Now,
		prefix: "tutorbot:ratelimit:",
		log:    logger.Nop(),
	}
}

// Option configures a limiter backend.
type Option func(*config)

// WithCap sets the number of requests admitted per window. Negative values
// are treated as zero, which rejects everything.
func WithCap(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.cap = n
	}
}

// WithWindow sets the sliding window length.
func WithWindow(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithShards sets the shard count of the in-memory backend.
func WithShards(n int) Option {
	return func(c *config) { c.shards = n }
}

// WithKeyPrefix sets the key prefix of the Redis backend.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
