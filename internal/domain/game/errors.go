package game

import "errors"

// Sentinel kinds for game errors. Neither mutates any state.
var (
	// ErrGameExpired means there is no running game of the requested kind.
	ErrGameExpired = errors.New("game session expired")
	// ErrInvalidSelection means the chosen option or tile does not exist
	// or is already matched.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNoContent means a pool needed to start a game is empty.
	ErrNoContent = errors.New("no game content")
)
