package inmemory

import (
	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
)

type RepoManager struct {
	gameSessionRepository domain.GameSessionRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		gameSessionRepository: NewGameSessionRepositoryImpl(),
	}
}

func (d *RepoManager) GameSessionRepository() domain.GameSessionRepository {
	return d.gameSessionRepository
}

func (d *RepoManager) Close() {}
