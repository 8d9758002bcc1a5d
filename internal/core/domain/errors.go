package domain

import "errors"

var (
	// ErrNodeNotFound is returned when no node with the given name exists in
	// the directory namespace.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownNodeState ...
	ErrUnknownNodeState = errors.New("unknown node state")
	// ErrUnknownGameState ...
	ErrUnknownGameState = errors.New("unknown game state")
	// ErrSessionNotFound ...
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionAlreadyExists ...
	ErrSessionAlreadyExists = errors.New("game session already exists")
	// ErrInvalidSessionTransition is returned when a step is applied to a
	// session in a status that does not allow it.
	ErrInvalidSessionTransition = errors.New("invalid game session transition")
)
