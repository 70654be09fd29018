// Package ratelimit implements the per-user sliding-window request limiter.
//
// Each user owns an ordered list of admission timestamps. A timestamp t
// counts against the quota while now-t < window; it is pruned as soon as
// now-t >= window. A request is admitted only when fewer than cap
// timestamps remain, and only admitted requests are recorded.
package ratelimit

import (
	"context"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
)

// Defaults used when no option overrides them.
const (
	DefaultCap    = 10
	DefaultWindow = 60 * time.Second
)

// Decision is the outcome of a single Admit call.
type Decision struct {
	Allowed bool
	// Remaining quota after this decision.
	Remaining int
	// RetryAfter is how long until the oldest in-window request leaves the
	// window. Zero when nothing is recorded.
	RetryAfter time.Duration
}

// Limiter is the sliding-window contract shared by every backend.
type Limiter interface {
	// Admit prunes, checks and records in one atomic step per user.
	Admit(ctx context.Context, user model.UserID) (Decision, error)
	// Remaining returns cap minus the in-window count, never negative.
	Remaining(ctx context.Context, user model.UserID) (int, error)
	// TimeUntilReset returns the time until the oldest in-window request
	// expires, or zero when the user has none.
	TimeUntilReset(ctx context.Context, user model.UserID) (time.Duration, error)

	Cap() int
	Window() time.Duration
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

var (
	_ Limiter = (*Memory)(nil)
	_ Limiter = (*Redis)(nil)
)
