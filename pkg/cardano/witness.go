package cardano

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const vkeyWitnessKey = 0

// AddWitness signs an already serialized transaction, for instance a draft
// returned by a node, and returns the re-encoded transaction with its id.
// The body bytes are kept untouched so the id does not change.
func AddWitness(raw []byte, key SigningKey) ([]byte, string, error) {
	var parts []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &parts); err != nil {
		return nil, "", fmt.Errorf("decode transaction: %w", err)
	}
	if len(parts) != 4 {
		return nil, "", fmt.Errorf("decode transaction: expected 4 items, got %d", len(parts))
	}

	witnesses := make(map[uint64]cbor.RawMessage)
	if err := cbor.Unmarshal(parts[1], &witnesses); err != nil {
		return nil, "", fmt.Errorf("decode witness set: %w", err)
	}

	var vkeys []VKeyWitness
	if existing, ok := witnesses[vkeyWitnessKey]; ok {
		if err := cbor.Unmarshal(existing, &vkeys); err != nil {
			return nil, "", fmt.Errorf("decode vkey witnesses: %w", err)
		}
	}

	h := Blake2b256(parts[0])
	vkeys = append(vkeys, VKeyWitness{VKey: key.PublicKey(), Signature: key.Sign(h[:])})
	buf, err := encMode.Marshal(vkeys)
	if err != nil {
		return nil, "", err
	}
	witnesses[vkeyWitnessKey] = buf

	if parts[1], err = encMode.Marshal(witnesses); err != nil {
		return nil, "", err
	}
	signed, err := encMode.Marshal(parts)
	if err != nil {
		return nil, "", err
	}
	return signed, hex.EncodeToString(h[:]), nil
}
