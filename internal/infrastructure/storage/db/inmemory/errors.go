package inmemory

import "errors"

// Game session errors
var (
	// ErrNilGameSession ...
	ErrNilGameSession = errors.New("game session must not be nil")
)
