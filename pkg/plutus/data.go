// Package plutus implements the Plutus data model used for on-chain datums
// and redeemers, together with its CBOR wire encoding.
package plutus

import (
	"fmt"
	"math/big"
)

// Data is one of Constr, Int, Bytes, List or Map.
type Data interface {
	isData()
}

// Constr is a constructor application: an alternative index plus its fields.
type Constr struct {
	Index  uint64
	Fields []Data
}

// Int is an arbitrary precision integer.
type Int struct {
	Value *big.Int
}

// Bytes is a byte string.
type Bytes []byte

// List is an ordered sequence of data.
type List []Data

// Map is an ordered sequence of key/value pairs. Order is preserved on the
// wire so it is kept as a slice rather than a Go map.
type Map []Pair

// Pair is a single Map entry.
type Pair struct {
	Key   Data
	Value Data
}

func (Constr) isData() {}
func (Int) isData()    {}
func (Bytes) isData()  {}
func (List) isData()   {}
func (Map) isData()    {}

// NewConstr returns a constructor with the given index and fields.
func NewConstr(index uint64, fields ...Data) Constr {
	if fields == nil {
		fields = []Data{}
	}
	return Constr{Index: index, Fields: fields}
}

// NewInt returns an Int holding v.
func NewInt(v int64) Int {
	return Int{big.NewInt(v)}
}

// NewUint returns an Int holding v.
func NewUint(v uint64) Int {
	return Int{new(big.Int).SetUint64(v)}
}

// Uint64 returns the integer value if it fits in an uint64.
func (i Int) Uint64() (uint64, error) {
	if i.Value == nil {
		return 0, nil
	}
	if !i.Value.IsUint64() {
		return 0, fmt.Errorf("%w: %s does not fit in uint64", ErrIntegerRange, i.Value)
	}
	return i.Value.Uint64(), nil
}

// Equal reports whether two data values are structurally identical.
func Equal(a, b Data) bool {
	switch x := a.(type) {
	case Constr:
		y, ok := b.(Constr)
		if !ok || x.Index != y.Index || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case Int:
		y, ok := b.(Int)
		if !ok {
			return false
		}
		xv, yv := x.Value, y.Value
		if xv == nil {
			xv = new(big.Int)
		}
		if yv == nil {
			yv = new(big.Int)
		}
		return xv.Cmp(yv) == 0
	case Bytes:
		y, ok := b.(Bytes)
		return ok && string(x) == string(y)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Key, y[i].Key) || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
