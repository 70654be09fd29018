package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/metrics"
	"github.com/okian/tutorbot/pkg/shardmap"
)

// Sessions is the in-memory Store.
type Sessions struct {
	m      *shardmap.Map[model.UserID, *Session]
	shards int
	now    func() time.Time
}

var _ Store = (*Sessions)(nil)

// NewSessions returns an empty store.
func NewSessions(opts ...Option) *Sessions {
	s := &Sessions{shards: shardmap.DefaultShards, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.m = shardmap.New[model.UserID, *Session](s.shards)
	return s
}

func (s *Sessions) newSession(now time.Time) *Session {
	return &Session{
		Mode:      model.ModeGeneral,
		Player:    game.Player{Progress: game.NewProgress()},
		CreatedAt: now,
		LastSeen:  now,
	}
}

// Mode implements Store. The first access creates the session; every read
// refreshes its activity time.
func (s *Sessions) Mode(ctx context.Context, user model.UserID) (model.Mode, error) {
	mode := model.ModeGeneral
	err := s.Update(ctx, user, func(sess *Session) error {
		mode = sess.Mode
		return nil
	})
	return mode, err
}

// SetMode implements Store.
func (s *Sessions) SetMode(ctx context.Context, user model.UserID, mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return s.Update(ctx, user, func(sess *Session) error {
		sess.Mode = mode
		return nil
	})
}

// Reset implements Store.
func (s *Sessions) Reset(ctx context.Context, user model.UserID) error {
	return s.Update(ctx, user, func(sess *Session) error {
		sess.Mode = model.ModeGeneral
		sess.Player.Active = nil
		return nil
	})
}

// Update implements Store. The session is kept even when fn fails; fn is
// expected to leave it untouched in that case.
func (s *Sessions) Update(_ context.Context, user model.UserID, fn func(sess *Session) error) error {
	var err error
	now := s.now()
	s.m.Compute(user, func(cur *Session, loaded bool) (*Session, bool) {
		if !loaded {
			cur = s.newSession(now)
		}
		cur.LastSeen = now
		err = fn(cur)
		return cur, true
	})
	return err
}

// Progress implements Store.
func (s *Sessions) Progress(_ context.Context, user model.UserID) (game.Progress, error) {
	p := game.NewProgress()
	s.m.Compute(user, func(cur *Session, loaded bool) (*Session, bool) {
		if loaded {
			p = cur.Player.Progress
		}
		return cur, loaded
	})
	return p, nil
}

// Count implements Store.
func (s *Sessions) Count(_ context.Context) int { return s.m.Len() }

// Sweep deletes sessions idle for at least idle and returns how many were
// removed. A non-positive idle disables sweeping.
func (s *Sessions) Sweep(_ context.Context, idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	now := s.now()
	n := s.m.DeleteFunc(func(_ model.UserID, sess *Session) bool {
		return now.Sub(sess.LastSeen) >= idle
	})
	metrics.RecordSwept("sessions", n)
	metrics.UpdateActiveSessions(s.m.Len())
	return n
}
