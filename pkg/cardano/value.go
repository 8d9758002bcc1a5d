package cardano

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Lovelace is the asset id of the native currency.
const Lovelace = "lovelace"

const policyIDHexLen = 2 * HashSize

// Value maps asset ids to amounts. An asset id is either Lovelace or the hex
// policy id immediately followed by the hex asset name.
type Value map[string]uint64

// NewValue returns a value holding only lovelace.
func NewValue(lovelace uint64) Value {
	return Value{Lovelace: lovelace}
}

// Coin returns the lovelace amount.
func (v Value) Coin() uint64 {
	return v[Lovelace]
}

// Clone returns a copy of v.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for k, amount := range v {
		out[k] = amount
	}
	return out
}

// Add returns v + other.
func (v Value) Add(other Value) Value {
	out := v.Clone()
	for k, amount := range other {
		out[k] += amount
	}
	return out
}

// Sub returns v - other, failing if any asset would go negative. Assets left
// with a zero amount are dropped, except lovelace.
func (v Value) Sub(other Value) (Value, error) {
	out := v.Clone()
	for k, amount := range other {
		if out[k] < amount {
			return nil, fmt.Errorf(
				"%w: %s has %d, need %d", ErrInsufficientValue, k, out[k], amount,
			)
		}
		out[k] -= amount
		if out[k] == 0 && k != Lovelace {
			delete(out, k)
		}
	}
	return out, nil
}

// Assets returns the asset ids other than lovelace, sorted.
func (v Value) Assets() []string {
	ids := make([]string, 0, len(v))
	for k, amount := range v {
		if k != Lovelace && amount > 0 {
			ids = append(ids, k)
		}
	}
	sort.Strings(ids)
	return ids
}

// SplitAssetID returns the policy id and asset name bytes of an asset id.
func SplitAssetID(id string) ([]byte, []byte, error) {
	if len(id) < policyIDHexLen {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidAssetID, id)
	}
	policy, err := hex.DecodeString(id[:policyIDHexLen])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidAssetID, err)
	}
	name, err := hex.DecodeString(id[policyIDHexLen:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidAssetID, err)
	}
	return policy, name, nil
}

// MarshalCBOR encodes a plain coin when v holds lovelace only, and
// [coin, multiasset] otherwise.
func (v Value) MarshalCBOR() ([]byte, error) {
	assets := v.Assets()
	if len(assets) == 0 {
		return encMode.Marshal(v.Coin())
	}

	multiasset := make(map[cbor.ByteString]map[cbor.ByteString]uint64)
	for _, id := range assets {
		policy, name, err := SplitAssetID(id)
		if err != nil {
			return nil, err
		}
		byName, ok := multiasset[cbor.ByteString(policy)]
		if !ok {
			byName = make(map[cbor.ByteString]uint64)
			multiasset[cbor.ByteString(policy)] = byName
		}
		byName[cbor.ByteString(name)] = v[id]
	}
	return encMode.Marshal([]interface{}{v.Coin(), multiasset})
}
