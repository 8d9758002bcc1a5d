package dbbadger

import "errors"

var (
	// ErrNilGameSession ...
	ErrNilGameSession = errors.New("game session must not be nil")
)
