package dbbadger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

type gameSessionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewGameSessionRepositoryImpl returns a GameSessionRepository backed by the
// given badgerhold store.
func NewGameSessionRepositoryImpl(store *badgerhold.Store) domain.GameSessionRepository {
	return &gameSessionRepositoryImpl{store}
}

func (r *gameSessionRepositoryImpl) AddGameSession(
	_ context.Context, session *domain.GameSession,
) error {
	if session == nil {
		return ErrNilGameSession
	}
	if err := r.store.Insert(session.ID, *session); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrSessionAlreadyExists, session.ID)
		}
		return err
	}
	return nil
}

func (r *gameSessionRepositoryImpl) GetGameSession(
	_ context.Context, id string,
) (*domain.GameSession, error) {
	var session domain.GameSession
	if err := r.store.Get(id, &session); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, err
	}
	return &session, nil
}

func (r *gameSessionRepositoryImpl) GetOpenGameSessionForNode(
	_ context.Context, nodeName string,
) (*domain.GameSession, error) {
	query := badgerhold.Where("NodeName").Eq(nodeName).
		And("Status").In(
		domain.GameSessionCreated, domain.GameSessionLobby, domain.GameSessionRunning,
	).
		SortBy("CreatedAt", "ID").Reverse().Limit(1)

	sessions, err := r.findGameSessions(query)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: no open session on node %s", domain.ErrSessionNotFound, nodeName)
	}
	return sessions[0], nil
}

func (r *gameSessionRepositoryImpl) GetAllGameSessions(
	_ context.Context,
) ([]*domain.GameSession, error) {
	return r.findGameSessions((&badgerhold.Query{}).SortBy("CreatedAt", "ID"))
}

func (r *gameSessionRepositoryImpl) UpdateGameSession(
	_ context.Context,
	id string,
	updateFn func(s *domain.GameSession) (*domain.GameSession, error),
) error {
	return r.store.Badger().Update(func(txn *badger.Txn) error {
		var session domain.GameSession
		if err := r.store.TxGet(txn, id, &session); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
			}
			return err
		}

		updatedSession, err := updateFn(&session)
		if err != nil {
			return err
		}
		if updatedSession == nil {
			return ErrNilGameSession
		}
		return r.store.TxUpdate(txn, id, *updatedSession)
	})
}

func (r *gameSessionRepositoryImpl) findGameSessions(
	query *badgerhold.Query,
) ([]*domain.GameSession, error) {
	var sessions []domain.GameSession
	if err := r.store.Find(&sessions, query); err != nil {
		return nil, err
	}

	res := make([]*domain.GameSession, 0, len(sessions))
	for i := range sessions {
		res = append(res, &sessions[i])
	}
	return res, nil
}
