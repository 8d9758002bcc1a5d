package httpinterface_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
)

type mockGameService struct {
	mock.Mock
}

func (m *mockGameService) ListNodes() []domain.Node {
	args := m.Called()
	return args.Get(0).([]domain.Node)
}

func (m *mockGameService) GetNode(name string) (*domain.Node, error) {
	args := m.Called(name)

	var res *domain.Node
	if a := args.Get(0); a != nil {
		res = a.(*domain.Node)
	}
	return res, args.Error(1)
}

func (m *mockGameService) NewGame(
	ctx context.Context, req application.NewGameRequest,
) (*application.NewGameResult, error) {
	args := m.Called(ctx, req)

	var res *application.NewGameResult
	if a := args.Get(0); a != nil {
		res = a.(*application.NewGameResult)
	}
	return res, args.Error(1)
}

func (m *mockGameService) AddPlayer(
	ctx context.Context, nodeName, player string,
) (string, error) {
	args := m.Called(ctx, nodeName, player)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) StartGame(ctx context.Context, nodeName string) (string, error) {
	args := m.Called(ctx, nodeName)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) CleanupGame(ctx context.Context, nodeName string) (string, error) {
	args := m.Called(ctx, nodeName)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) CommitFunds(
	ctx context.Context, nodeName string, utxos cardano.UTxOs,
) (string, error) {
	args := m.Called(ctx, nodeName, utxos)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) AdminBalance(
	ctx context.Context, nodeName string,
) (*application.AdminBalance, error) {
	args := m.Called(ctx, nodeName)

	var res *application.AdminBalance
	if a := args.Get(0); a != nil {
		res = a.(*application.AdminBalance)
	}
	return res, args.Error(1)
}
