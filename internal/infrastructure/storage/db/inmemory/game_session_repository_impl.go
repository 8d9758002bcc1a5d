package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

type gameSessionInmemoryStore struct {
	sessions map[string]domain.GameSession
	locker   *sync.Mutex
}

type gameSessionRepositoryImpl struct {
	store *gameSessionInmemoryStore
}

// NewGameSessionRepositoryImpl returns a new inmemory GameSessionRepository
// implementation.
func NewGameSessionRepositoryImpl() domain.GameSessionRepository {
	return &gameSessionRepositoryImpl{
		store: &gameSessionInmemoryStore{
			sessions: make(map[string]domain.GameSession),
			locker:   &sync.Mutex{},
		},
	}
}

func (r gameSessionRepositoryImpl) AddGameSession(
	_ context.Context, session *domain.GameSession,
) error {
	if session == nil {
		return ErrNilGameSession
	}

	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.sessions[session.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionAlreadyExists, session.ID)
	}
	r.store.sessions[session.ID] = copySession(*session)
	return nil
}

func (r gameSessionRepositoryImpl) GetGameSession(
	_ context.Context, id string,
) (*domain.GameSession, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getGameSession(id)
}

func (r gameSessionRepositoryImpl) GetOpenGameSessionForNode(
	_ context.Context, nodeName string,
) (*domain.GameSession, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	var open []domain.GameSession
	for _, s := range r.store.sessions {
		if s.NodeName == nodeName && !s.Status.IsClosed() {
			open = append(open, s)
		}
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: no open session on node %s", domain.ErrSessionNotFound, nodeName)
	}
	sortSessions(open)
	session := copySession(open[len(open)-1])
	return &session, nil
}

func (r gameSessionRepositoryImpl) GetAllGameSessions(
	_ context.Context,
) ([]*domain.GameSession, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	sessions := make([]domain.GameSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		sessions = append(sessions, s)
	}
	sortSessions(sessions)

	res := make([]*domain.GameSession, 0, len(sessions))
	for i := range sessions {
		session := copySession(sessions[i])
		res = append(res, &session)
	}
	return res, nil
}

func (r gameSessionRepositoryImpl) UpdateGameSession(
	_ context.Context,
	id string,
	updateFn func(s *domain.GameSession) (*domain.GameSession, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	session, err := r.getGameSession(id)
	if err != nil {
		return err
	}

	updatedSession, err := updateFn(session)
	if err != nil {
		return err
	}
	if updatedSession == nil {
		return ErrNilGameSession
	}

	r.store.sessions[id] = copySession(*updatedSession)
	return nil
}

func (r gameSessionRepositoryImpl) getGameSession(id string) (*domain.GameSession, error) {
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	session := copySession(s)
	return &session, nil
}

func copySession(s domain.GameSession) domain.GameSession {
	s.Players = append([]string(nil), s.Players...)
	s.AddPlayerTxID = append([]string(nil), s.AddPlayerTxID...)
	return s
}

func sortSessions(sessions []domain.GameSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt != sessions[j].CreatedAt {
			return sessions[i].CreatedAt < sessions[j].CreatedAt
		}
		return sessions[i].ID < sessions[j].ID
	})
}
