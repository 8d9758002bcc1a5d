package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/txbuilder"
)

const (
	// DefaultConfirmTimeout bounds the wait for a submitted transaction.
	DefaultConfirmTimeout = 10 * time.Second

	lovelacePrecision = 6
)

// NewGameRequest describes the game to open on the next available node.
type NewGameRequest struct {
	// Player is the optional bech32 address of the first player.
	Player      string
	PlayerCount uint64
	BotCount    uint64
}

// NewGameResult ...
type NewGameResult struct {
	Node      domain.Node
	SessionID string
	TxID      string
}

// AdminBalance is the admin holding on a node head.
type AdminBalance struct {
	Address  string
	Lovelace uint64
	ADA      decimal.Decimal
	Assets   map[string]uint64
}

// GameService drives the game transactions of the admin on the nodes of
// the directory.
type GameService struct {
	directory      *NodeDirectory
	clients        ports.NodeClientFactory
	repoManager    ports.RepoManager
	adminKey       cardano.SigningKey
	validator      txbuilder.Validator
	confirmTimeout time.Duration
}

func NewGameService(
	directory *NodeDirectory,
	clients ports.NodeClientFactory,
	repoManager ports.RepoManager,
	adminKey cardano.SigningKey,
	validator txbuilder.Validator,
	confirmTimeout time.Duration,
) *GameService {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &GameService{
		directory:      directory,
		clients:        clients,
		repoManager:    repoManager,
		adminKey:       adminKey,
		validator:      validator,
		confirmTimeout: confirmTimeout,
	}
}

// ListNodes ...
func (s *GameService) ListNodes() []domain.Node {
	return s.directory.ListNodes()
}

// GetNode ...
func (s *GameService) GetNode(name string) (*domain.Node, error) {
	node, ok := s.directory.GetNode(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, name)
	}
	return node, nil
}

// NewGame claims a node, opens the game on it and records a new session.
// The claim is released on any failure; on success it is dropped once the
// node reports the game left Waiting.
func (s *GameService) NewGame(
	ctx context.Context, req NewGameRequest,
) (res *NewGameResult, err error) {
	params := txbuilder.NewGameParams{
		PlayerCount: req.PlayerCount,
		BotCount:    req.BotCount,
	}
	if req.Player != "" {
		player, err := parsePlayer(req.Player)
		if err != nil {
			return nil, err
		}
		params.Player = &player
	}

	node, err := s.directory.SelectNodeForNewGame()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			s.directory.Release(node.Name)
		}
	}()

	client, err := s.clientFor(*node)
	if err != nil {
		return nil, err
	}
	utxos, err := client.FetchUTxOs(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.builderFor(*node, nil).NewGame(params, utxos)
	if err != nil {
		return nil, err
	}
	if err := s.submit(ctx, client, *node, tx); err != nil {
		return nil, err
	}

	session := domain.NewGameSession(uuid.New().String(), node.Name)
	if err := session.Open(tx.Hash, req.Player); err != nil {
		return nil, err
	}
	if err := s.repoManager.GameSessionRepository().AddGameSession(
		ctx, session,
	); err != nil {
		return nil, err
	}

	log.WithField("node", node.Name).Infof(
		"new game %s opened with tx %s", session.ID, tx.Hash,
	)
	return &NewGameResult{Node: *node, SessionID: session.ID, TxID: tx.Hash}, nil
}

// AddPlayer funds the outbound address of player on the given node.
func (s *GameService) AddPlayer(
	ctx context.Context, nodeName, playerAddress string,
) (string, error) {
	player, err := parsePlayer(playerAddress)
	if err != nil {
		return "", err
	}
	node, client, utxos, err := s.nodeSnapshot(ctx, nodeName)
	if err != nil {
		return "", err
	}

	tx, err := s.builderFor(*node, nil).AddPlayer(player, utxos)
	if err != nil {
		return "", err
	}
	if err := s.submit(ctx, client, *node, tx); err != nil {
		return "", err
	}

	s.updateSession(ctx, nodeName, func(session *domain.GameSession) error {
		return session.AddPlayer(tx.Hash, playerAddress)
	})
	return tx.Hash, nil
}

// StartGame moves the game on the given node from Lobby to Running.
func (s *GameService) StartGame(ctx context.Context, nodeName string) (string, error) {
	node, client, utxos, err := s.nodeSnapshot(ctx, nodeName)
	if err != nil {
		return "", err
	}
	costModel, err := fetchCostModel(ctx, client)
	if err != nil {
		return "", err
	}

	tx, err := s.builderFor(*node, costModel).StartGame(utxos)
	if err != nil {
		return "", err
	}
	if err := s.submit(ctx, client, *node, tx); err != nil {
		return "", err
	}

	s.updateSession(ctx, nodeName, func(session *domain.GameSession) error {
		return session.Start(tx.Hash)
	})
	return tx.Hash, nil
}

// CleanupGame returns the funds of a finished game to the admin. It refuses
// to touch a game that is still in progress.
func (s *GameService) CleanupGame(ctx context.Context, nodeName string) (string, error) {
	node, client, utxos, err := s.nodeSnapshot(ctx, nodeName)
	if err != nil {
		return "", err
	}

	builder := s.builderFor(*node, nil)
	if games := builder.GameUTxOs(utxos); len(games) > 0 {
		state, err := txbuilder.GameStateOf(games[0])
		if err != nil {
			return "", err
		}
		if !state.State.IsTerminal() {
			return "", fmt.Errorf("%w: game on %s is %s", ErrGameNotTerminal, nodeName, state.State)
		}
		if builder.CostModel, err = fetchCostModel(ctx, client); err != nil {
			return "", err
		}
	}

	tx, err := builder.CleanupGame(utxos)
	if err != nil {
		return "", err
	}
	if err := s.submit(ctx, client, *node, tx); err != nil {
		return "", err
	}

	s.updateSession(ctx, nodeName, func(session *domain.GameSession) error {
		return session.Cleanup(tx.Hash)
	})
	return tx.Hash, nil
}

// CommitFunds commits the given layer one outputs of the admin into the head
// of a node that is still initializing, and returns the id of the commit
// transaction.
func (s *GameService) CommitFunds(
	ctx context.Context, nodeName string, utxos cardano.UTxOs,
) (string, error) {
	node, err := s.GetNode(nodeName)
	if err != nil {
		return "", err
	}
	if node.Status.NodeState != domain.NodeStateHeadIsInitializing {
		return "", fmt.Errorf(
			"%w: node %s is %s", ErrHeadNotInitializing, node.Name, node.Status.NodeState,
		)
	}
	client, err := s.clientFor(*node)
	if err != nil {
		return "", err
	}

	builder := s.builderFor(*node, nil)
	blueprint, err := builder.Commit(utxos)
	if err != nil {
		return "", err
	}
	draft, err := client.Commit(ctx, blueprint.CBOR, utxos)
	if err != nil {
		return "", fmt.Errorf("failed to draft commit on node %s: %w", node.Name, err)
	}
	tx, err := builder.SignDraft(draft)
	if err != nil {
		return "", err
	}
	if err := client.SubmitCardanoTransaction(ctx, tx.CBOR); err != nil {
		return "", fmt.Errorf("failed to submit commit %s on node %s: %w", tx.Hash, node.Name, err)
	}

	log.WithField("node", node.Name).Infof("committed %d outputs in tx %s", len(utxos), tx.Hash)
	return tx.Hash, nil
}

// AdminBalance sums the admin outputs on the given node.
func (s *GameService) AdminBalance(ctx context.Context, nodeName string) (*AdminBalance, error) {
	node, _, utxos, err := s.nodeSnapshot(ctx, nodeName)
	if err != nil {
		return nil, err
	}

	builder := s.builderFor(*node, nil)
	total := builder.FindAdminUTxOs(utxos).Total()
	assets := make(map[string]uint64)
	for _, asset := range total.Assets() {
		assets[asset] = total[asset]
	}
	lovelace := total.Coin()
	return &AdminBalance{
		Address:  builder.AdminAddress().String(),
		Lovelace: lovelace,
		ADA:      decimal.NewFromInt(int64(lovelace)).Shift(-lovelacePrecision),
		Assets:   assets,
	}, nil
}

func (s *GameService) nodeSnapshot(
	ctx context.Context, nodeName string,
) (*domain.Node, ports.NodeClient, cardano.UTxOs, error) {
	node, err := s.GetNode(nodeName)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := s.clientFor(*node)
	if err != nil {
		return nil, nil, nil, err
	}
	utxos, err := client.FetchUTxOs(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return node, client, utxos, nil
}

func (s *GameService) clientFor(node domain.Node) (ports.NodeClient, error) {
	if node.Status.LocalURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotReachable, node.Name)
	}
	return s.clients.NewNodeClient(node.Status.LocalURL)
}

func (s *GameService) builderFor(node domain.Node, costModel []int64) *txbuilder.Builder {
	return txbuilder.NewBuilder(s.adminKey, node.Spec.NetworkID, s.validator, costModel)
}

func (s *GameService) submit(
	ctx context.Context, client ports.NodeClient, node domain.Node, tx *txbuilder.Tx,
) error {
	if err := client.SubmitAndConfirm(ctx, tx.Hash, tx.CBOR, s.confirmTimeout); err != nil {
		return fmt.Errorf("failed to submit tx %s to node %s: %w", tx.Hash, node.Name, err)
	}
	return nil
}

// updateSession applies a step to the open session of the node. The
// transaction is already confirmed at this point, so failures are logged.
func (s *GameService) updateSession(
	ctx context.Context, nodeName string, step func(*domain.GameSession) error,
) {
	repo := s.repoManager.GameSessionRepository()
	session, err := repo.GetOpenGameSessionForNode(ctx, nodeName)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.WithError(err).WithField("node", nodeName).Warn("failed to get game session")
		}
		return
	}
	if err := repo.UpdateGameSession(
		ctx, session.ID, func(s *domain.GameSession) (*domain.GameSession, error) {
			if err := step(s); err != nil {
				return nil, err
			}
			return s, nil
		},
	); err != nil {
		log.WithError(err).WithField("node", nodeName).Warnf(
			"failed to update game session %s", session.ID,
		)
	}
}

func fetchCostModel(ctx context.Context, client ports.NodeClient) ([]int64, error) {
	params, err := client.FetchProtocolParameters(ctx)
	if err != nil {
		return nil, err
	}
	return params.PlutusV2CostModel()
}

func parsePlayer(address string) (cardano.Address, error) {
	player, err := cardano.ParseAddress(address)
	if err != nil {
		return cardano.Address{}, fmt.Errorf("%w: %w", ErrInvalidPlayerAddress, err)
	}
	return player, nil
}
