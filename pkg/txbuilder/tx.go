package txbuilder

import (
	"encoding/hex"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
)

// Tx is a built transaction. CBOR holds the signed encoding, except for
// commit blueprints which are left unsigned.
type Tx struct {
	Hash      string
	CBOR      []byte
	Inputs    []cardano.Input
	Outputs   []cardano.Output
	Fee       uint64
	NetworkID uint8
}

// CBORHex returns the hex encoding of the transaction.
func (t *Tx) CBORHex() string {
	return hex.EncodeToString(t.CBOR)
}
