package domain

import "context"

// GameSessionRepository is the abstraction for any kind of database intended
// to persist game sessions.
type GameSessionRepository interface {
	// AddGameSession stores a new session. It fails with
	// ErrSessionAlreadyExists if a session with the same id exists.
	AddGameSession(ctx context.Context, session *GameSession) error
	// GetGameSession returns the session with the given id.
	GetGameSession(ctx context.Context, id string) (*GameSession, error)
	// GetOpenGameSessionForNode returns the newest session hosted on the
	// given node that is neither cleaned nor failed.
	GetOpenGameSessionForNode(ctx context.Context, nodeName string) (*GameSession, error)
	// GetAllGameSessions returns all the sessions stored in the repository.
	GetAllGameSessions(ctx context.Context) ([]*GameSession, error)
	// UpdateGameSession allows to commit multiple changes to the same session
	// in a transactional way.
	UpdateGameSession(
		ctx context.Context,
		id string,
		updateFn func(s *GameSession) (*GameSession, error),
	) error
}
