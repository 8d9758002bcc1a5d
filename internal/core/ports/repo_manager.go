package ports

import "github.com/hydra-arena/hydra-control-plane/internal/core/domain"

// RepoManager gives access to the repositories of the service.
type RepoManager interface {
	GameSessionRepository() domain.GameSessionRepository
	Close()
}
