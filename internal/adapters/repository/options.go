package repository

import "time"

// Option applies a configuration option to Sessions.
type Option func(*Sessions)

// WithShards sets the number of lock shards.
func WithShards(n int) Option {
	return func(s *Sessions) {
		if n > 0 {
			s.shards = n
		}
	}
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}
