package service

import (
	"errors"

	"github.com/okian/tutorbot/internal/adapters/completion"
	"github.com/okian/tutorbot/internal/domain/game"
	"github.com/okian/tutorbot/internal/domain/ratelimit"
)

// Error kinds the dispatcher turns into user messages. None of them stops
// the service.
var (
	ErrRateLimited      = ratelimit.ErrRateLimited
	ErrGameExpired      = game.ErrGameExpired
	ErrGeneration       = completion.ErrGeneration
	ErrInvalidSelection = game.ErrInvalidSelection

	// ErrUnknownAction means a button carried data no handler recognizes.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMissingDependency is returned by Start when the transport or the
	// completion provider is not configured.
	ErrMissingDependency = errors.New("missing dependency")
)
