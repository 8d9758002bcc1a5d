package nodeclient_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	nodeclient "github.com/hydra-arena/hydra-control-plane/internal/infrastructure/node-client"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

func TestFactory(t *testing.T) {
	t.Parallel()

	factory := nodeclient.NewFactory()

	a, err := factory.NewNodeClient("ws://node-a.hydra-doom.svc.cluster.local:4001")
	require.NoError(t, err)
	again, err := factory.NewNodeClient("ws://node-a.hydra-doom.svc.cluster.local:4001")
	require.NoError(t, err)
	require.Same(t, a, again)

	client, ok := a.(*hydra.Client)
	require.True(t, ok)
	require.Equal(t, "http://node-a.hydra-doom.svc.cluster.local:4001", client.Info().HTTPURL())

	_, err = factory.NewNodeClient("ftp://node-b")
	require.ErrorIs(t, err, hydra.ErrInvalidURL)
}
