package ratelimit

import (
	"context"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/shardmap"
)

type record struct {
	stamps []time.Time // ascending
}

// prune drops every stamp with now-t >= window.
func (r *record) prune(now time.Time, window time.Duration) {
	i := 0
	for i < len(r.stamps) && now.Sub(r.stamps[i]) >= window {
		i++
	}
	if i > 0 {
		r.stamps = append(r.stamps[:0], r.stamps[i:]...)
	}
}

func (r *record) resetIn(now time.Time, window time.Duration) time.Duration {
	if len(r.stamps) == 0 {
		return 0
	}
	d := r.stamps[0].Add(window).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Memory is an in-process sliding-window limiter. Records live in a sharded
// map; each user's record is only touched under its shard lock.
type Memory struct {
	cfg     config
	records *shardmap.Map[model.UserID, *record]
}

// NewMemory returns an in-memory limiter.
func NewMemory(opts ...Option) *Memory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory{cfg: cfg, records: shardmap.New[model.UserID, *record](cfg.shards)}
}

// Admit implements Limiter.
func (m *Memory) Admit(_ context.Context, user model.UserID) (Decision, error) {
	now := m.cfg.clock()
	var d Decision

	m.records.Compute(user, func(r *record, loaded bool) (*record, bool) {
		if !loaded {
			r = &record{}
		}
		r.prune(now, m.cfg.window)

		if len(r.stamps) < m.cfg.cap {
			r.stamps = append(r.stamps, now)
			d.Allowed = true
		}
		d.Remaining = m.cfg.cap - len(r.stamps)
		if d.Remaining < 0 {
			d.Remaining = 0
		}
		d.RetryAfter = r.resetIn(now, m.cfg.window)
		return r, len(r.stamps) > 0
	})
	return d, nil
}

// Remaining implements Limiter.
func (m *Memory) Remaining(_ context.Context, user model.UserID) (int, error) {
	count := m.count(user, func(r *record, now time.Time) {})
	if n := m.cfg.cap - count; n > 0 {
		return n, nil
	}
	return 0, nil
}

// TimeUntilReset implements Limiter.
func (m *Memory) TimeUntilReset(_ context.Context, user model.UserID) (time.Duration, error) {
	var reset time.Duration
	m.count(user, func(r *record, now time.Time) {
		reset = r.resetIn(now, m.cfg.window)
	})
	return reset, nil
}

// count prunes the user's record, runs fn on it and returns the in-window
// count. No record is created for unseen users.
func (m *Memory) count(user model.UserID, fn func(r *record, now time.Time)) int {
	now := m.cfg.clock()
	n := 0
	m.records.Compute(user, func(r *record, loaded bool) (*record, bool) {
		if !loaded {
			return nil, false
		}
		r.prune(now, m.cfg.window)
		fn(r, now)
		n = len(r.stamps)
		return r, n > 0
	})
	return n
}

// Sweep removes records whose every stamp has expired and returns how many
// were removed. Removed users are indistinguishable from unseen ones.
func (m *Memory) Sweep(_ context.Context) int {
	now := m.cfg.clock()
	return m.records.DeleteFunc(func(_ model.UserID, r *record) bool {
		r.prune(now, m.cfg.window)
		return len(r.stamps) == 0
	})
}

// Len returns the number of users with a live record.
func (m *Memory) Len() int { return m.records.Len() }

// Cap implements Limiter.
func (m *Memory) Cap() int { return m.cfg.cap }

// Window implements Limiter.
func (m *Memory) Window() time.Duration { return m.cfg.window }
