package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
)

const gcInterval = 30 * time.Minute

type repoManager struct {
	store                 *badgerhold.Store
	gameSessionRepository domain.GameSessionRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// An empty base dir opens an in-memory store.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var sessionsDir string
	if len(baseDbDir) > 0 {
		sessionsDir = filepath.Join(baseDbDir, "sessions")
	}

	store, err := createDb(sessionsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening sessions db: %w", err)
	}

	return &repoManager{
		store:                 store,
		gameSessionRepository: NewGameSessionRepositoryImpl(store),
	}, nil
}

func (r *repoManager) GameSessionRepository() domain.GameSessionRepository {
	return r.gameSessionRepository
}

func (r *repoManager) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close sessions db")
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(gcInterval)

		go func() {
			for range ticker.C {
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
