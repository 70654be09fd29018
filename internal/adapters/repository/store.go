// Package repository holds per-user session state: the conversation mode and
// the player's progress plus running game.
package repository

import (
	"context"
	"time"

	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/model"
)

// Session is everything the bot remembers about one user.
type Session struct {
	Mode      model.Mode
	Player    game.Player
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store provides per-user access to sessions. Every call on the same user
// is serialized; calls on different users proceed independently.
type Store interface {
	// Mode returns the user's mode, or general when unset. The session is
	// created on first access.
	Mode(ctx context.Context, user model.UserID) (model.Mode, error)
	// SetMode overwrites the mode. The running game is left alone.
	SetMode(ctx context.Context, user model.UserID, mode model.Mode) error
	// Reset returns the user to general mode and abandons the running game.
	// Progress is kept.
	Reset(ctx context.Context, user model.UserID) error
	// Update runs fn on the user's session under the user's lock, creating
	// the session first if needed.
	Update(ctx context.Context, user model.UserID, fn func(s *Session) error) error
	// Progress returns a copy of the user's progress.
	Progress(ctx context.Context, user model.UserID) (game.Progress, error)

	// Count returns the number of tracked sessions.
	Count(ctx context.Context) int
}
