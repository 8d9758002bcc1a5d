package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	dbbadger "github.com/hydra-arena/hydra-control-plane/internal/infrastructure/storage/db/badger"
	"github.com/hydra-arena/hydra-control-plane/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

func TestGameSessionRepositoryImplementations(t *testing.T) {
	repositories := createGameSessionRepositories(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAddAndGetGameSession", func(t *testing.T) {
				t.Parallel()
				testAddAndGetGameSession(t, repo)
			})

			t.Run("testGetOpenGameSessionForNode", func(t *testing.T) {
				t.Parallel()
				testGetOpenGameSessionForNode(t, repo)
			})

			t.Run("testUpdateGameSession", func(t *testing.T) {
				t.Parallel()
				testUpdateGameSession(t, repo)
			})

			t.Run("testUpdateGameSession_rollback", func(t *testing.T) {
				t.Parallel()
				testUpdateGameSessionRollback(t, repo)
			})
		})
	}
}

func testAddAndGetGameSession(t *testing.T, repo gameSessionRepository) {
	session := domain.NewGameSession(uuid.New().String(), randomNodeName())
	require.NoError(t, session.Open(randomHex(32), "addr_test1player"))

	err := repo.Repository.AddGameSession(ctx, session)
	require.NoError(t, err)

	err = repo.Repository.AddGameSession(ctx, session)
	require.ErrorIs(t, err, domain.ErrSessionAlreadyExists)

	got, err := repo.Repository.GetGameSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, *session, *got)

	_, err = repo.Repository.GetGameSession(ctx, uuid.New().String())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	all, err := repo.Repository.GetAllGameSessions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
}

func testGetOpenGameSessionForNode(t *testing.T, repo gameSessionRepository) {
	nodeName := randomNodeName()

	_, err := repo.Repository.GetOpenGameSessionForNode(ctx, nodeName)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	closed := domain.NewGameSession(uuid.New().String(), nodeName)
	closed.CreatedAt = 100
	closed.Fail("node went offline")
	older := domain.NewGameSession(uuid.New().String(), nodeName)
	older.CreatedAt = 200
	newer := domain.NewGameSession(uuid.New().String(), nodeName)
	newer.CreatedAt = 300
	closedNewest := domain.NewGameSession(uuid.New().String(), nodeName)
	closedNewest.CreatedAt = 400
	require.NoError(t, closedNewest.Cleanup(randomHex(32)))
	other := domain.NewGameSession(uuid.New().String(), randomNodeName())
	other.CreatedAt = 500

	for _, s := range []*domain.GameSession{closed, older, newer, closedNewest, other} {
		require.NoError(t, repo.Repository.AddGameSession(ctx, s))
	}

	got, err := repo.Repository.GetOpenGameSessionForNode(ctx, nodeName)
	require.NoError(t, err)
	require.Equal(t, newer.ID, got.ID)
}

func testUpdateGameSession(t *testing.T, repo gameSessionRepository) {
	session := domain.NewGameSession(uuid.New().String(), randomNodeName())
	require.NoError(t, repo.Repository.AddGameSession(ctx, session))

	newGameTx, startTx := randomHex(32), randomHex(32)
	err := repo.Repository.UpdateGameSession(
		ctx, session.ID, func(s *domain.GameSession) (*domain.GameSession, error) {
			if err := s.Open(newGameTx, ""); err != nil {
				return nil, err
			}
			if err := s.Start(startTx); err != nil {
				return nil, err
			}
			return s, nil
		},
	)
	require.NoError(t, err)

	got, err := repo.Repository.GetGameSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GameSessionRunning, got.Status)
	require.Equal(t, newGameTx, got.NewGameTxID)
	require.Equal(t, startTx, got.StartTxID)

	err = repo.Repository.UpdateGameSession(
		ctx, uuid.New().String(), func(s *domain.GameSession) (*domain.GameSession, error) {
			return s, nil
		},
	)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func testUpdateGameSessionRollback(t *testing.T, repo gameSessionRepository) {
	session := domain.NewGameSession(uuid.New().String(), randomNodeName())
	require.NoError(t, repo.Repository.AddGameSession(ctx, session))

	errUpdate := errors.New("update failed")
	err := repo.Repository.UpdateGameSession(
		ctx, session.ID, func(s *domain.GameSession) (*domain.GameSession, error) {
			s.Players = append(s.Players, "addr_test1player")
			return nil, errUpdate
		},
	)
	require.ErrorIs(t, err, errUpdate)

	got, err := repo.Repository.GetGameSession(ctx, session.ID)
	require.NoError(t, err)
	require.Empty(t, got.Players)
	require.Equal(t, domain.GameSessionCreated, got.Status)
}

type gameSessionRepository struct {
	Name       string
	DBManager  ports.RepoManager
	Repository domain.GameSessionRepository
}

func createGameSessionRepositories(t *testing.T) []gameSessionRepository {
	inmemoryDBManager := inmemory.NewRepoManager()
	badgerDBManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerDBManager.Close)

	return []gameSessionRepository{
		{
			Name:       "badger",
			DBManager:  badgerDBManager,
			Repository: badgerDBManager.GameSessionRepository(),
		},
		{
			Name:       "inmemory",
			DBManager:  inmemoryDBManager,
			Repository: inmemoryDBManager.GameSessionRepository(),
		},
	}
}
