package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

// **** Node client ****

type mockNodeClient struct {
	mock.Mock
}

func (m *mockNodeClient) FetchUTxOs(ctx context.Context) (cardano.UTxOs, error) {
	args := m.Called(ctx)

	var res cardano.UTxOs
	if a := args.Get(0); a != nil {
		res = a.(cardano.UTxOs)
	}
	return res, args.Error(1)
}

func (m *mockNodeClient) FetchProtocolParameters(
	ctx context.Context,
) (*hydra.ProtocolParameters, error) {
	args := m.Called(ctx)

	var res *hydra.ProtocolParameters
	if a := args.Get(0); a != nil {
		res = a.(*hydra.ProtocolParameters)
	}
	return res, args.Error(1)
}

func (m *mockNodeClient) SubmitAndConfirm(
	ctx context.Context, txID string, tx []byte, timeout time.Duration,
) error {
	args := m.Called(ctx, txID, tx, timeout)
	return args.Error(0)
}

func (m *mockNodeClient) Commit(
	ctx context.Context, blueprint []byte, utxos cardano.UTxOs,
) ([]byte, error) {
	args := m.Called(ctx, blueprint, utxos)

	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

func (m *mockNodeClient) SubmitCardanoTransaction(ctx context.Context, tx []byte) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

type mockNodeClientFactory struct {
	mock.Mock
}

func (m *mockNodeClientFactory) NewNodeClient(url string) (ports.NodeClient, error) {
	args := m.Called(url)

	var res ports.NodeClient
	if a := args.Get(0); a != nil {
		res = a.(ports.NodeClient)
	}
	return res, args.Error(1)
}

// **** Node status ****

type mockStatusReader struct {
	mock.Mock
}

func (m *mockStatusReader) ReadNodeMetrics(
	ctx context.Context, url string,
) (*ports.NodeMetrics, error) {
	args := m.Called(ctx, url)

	var res *ports.NodeMetrics
	if a := args.Get(0); a != nil {
		res = a.(*ports.NodeMetrics)
	}
	return res, args.Error(1)
}

type mockStatusWriter struct {
	mock.Mock
}

func (m *mockStatusWriter) PatchNodeStatus(
	ctx context.Context, name string, status domain.NodeStatus,
) error {
	args := m.Called(ctx, name, status)
	return args.Error(0)
}

// **** Metrics ****

type recordingPublisher struct {
	lock         sync.Mutex
	nodeState    domain.NodeState
	gameState    domain.GameState
	transactions int
}

func (p *recordingPublisher) SetNodeState(state domain.NodeState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.nodeState = state
}

func (p *recordingPublisher) SetGameState(state domain.GameState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.gameState = state
}

func (p *recordingPublisher) AddTransactions(n int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.transactions += n
}

func (p *recordingPublisher) snapshot() (domain.NodeState, domain.GameState, int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.nodeState, p.gameState, p.transactions
}

// **** Event source ****

type fakeEventSource struct {
	events chan hydra.Event
	online bool
}

func (s *fakeEventSource) Events() <-chan hydra.Event {
	return s.events
}

func (s *fakeEventSource) Online() bool {
	return s.online
}
