package ports

import (
	"context"
	"time"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

// NodeClient talks to the API of a single hydra node.
type NodeClient interface {
	// FetchUTxOs returns the UTxO set of the latest confirmed snapshot.
	FetchUTxOs(ctx context.Context) (cardano.UTxOs, error)
	// FetchProtocolParameters returns the protocol parameters of the head.
	FetchProtocolParameters(ctx context.Context) (*hydra.ProtocolParameters, error)
	// SubmitAndConfirm submits a signed transaction and waits until the
	// node accepts or rejects it, or until timeout expires.
	SubmitAndConfirm(ctx context.Context, txID string, tx []byte, timeout time.Duration) error
	// Commit has the node draft a commit transaction from a blueprint
	// spending the given layer one outputs.
	Commit(ctx context.Context, blueprint []byte, utxos cardano.UTxOs) ([]byte, error)
	// SubmitCardanoTransaction submits a signed layer one transaction.
	SubmitCardanoTransaction(ctx context.Context, tx []byte) error
}

// NodeClientFactory returns a client for the node reachable at url.
type NodeClientFactory interface {
	NewNodeClient(url string) (NodeClient, error)
}
