package cardano

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

// Input references a transaction output.
type Input struct {
	TxHash string
	Index  uint32
}

// ParseInput parses the "txhash#index" form.
func ParseInput(s string) (Input, error) {
	parts := strings.Split(s, "#")
	if len(parts) != 2 {
		return Input{}, fmt.Errorf("%w: %q", ErrInvalidInput, s)
	}
	hash, err := hex.DecodeString(parts[0])
	if err != nil || len(hash) != 32 {
		return Input{}, fmt.Errorf("%w: bad tx hash in %q", ErrInvalidInput, s)
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Input{}, fmt.Errorf("%w: bad index in %q", ErrInvalidInput, s)
	}
	return Input{TxHash: strings.ToLower(parts[0]), Index: uint32(index)}, nil
}

func (i Input) String() string {
	return fmt.Sprintf("%s#%d", i.TxHash, i.Index)
}

func (i Input) hashBytes() []byte {
	// Inputs are built through ParseInput or from a computed tx hash.
	b, _ := hex.DecodeString(i.TxHash)
	return b
}

func compareInputs(a, b Input) int {
	if c := bytes.Compare(a.hashBytes(), b.hashBytes()); c != 0 {
		return c
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	}
	return 0
}

// SortInputs sorts inputs the way the ledger orders the input set: by tx
// hash bytes, then by index.
func SortInputs(inputs []Input) {
	sort.Slice(inputs, func(a, b int) bool {
		return compareInputs(inputs[a], inputs[b]) < 0
	})
}

// IndexOf returns the position of in within inputs, or -1.
func IndexOf(inputs []Input, in Input) int {
	for i, candidate := range inputs {
		if candidate == in {
			return i
		}
	}
	return -1
}

// Datum is the datum attached to an output: either a hash or inline data.
type Datum struct {
	Hash   []byte
	Inline plutus.Data
}

// InlineDatum attaches d inline.
func InlineDatum(d plutus.Data) *Datum {
	return &Datum{Inline: d}
}

func (d *Datum) optionCBOR() ([]byte, error) {
	if d.Inline != nil {
		buf, err := plutus.Encode(d.Inline)
		if err != nil {
			return nil, err
		}
		return encMode.Marshal([]interface{}{1, cborInCBOR(buf)})
	}
	return encMode.Marshal([]interface{}{0, d.Hash})
}

// UTxO is an unspent output together with its reference.
type UTxO struct {
	Input
	Address         Address
	Value           Value
	Datum           *Datum
	ReferenceScript *Script
}

// UTxOs filters and aggregates unspent outputs.
type UTxOs []UTxO

// AtAddress returns the outputs locked at addr.
func (u UTxOs) AtAddress(addr Address) UTxOs {
	out := make(UTxOs, 0)
	for _, utxo := range u {
		if utxo.Address.Equal(addr) {
			out = append(out, utxo)
		}
	}
	return out
}

// WithPaymentHash returns the outputs whose address payment credential
// hash, key or script, equals h.
func (u UTxOs) WithPaymentHash(h Hash28) UTxOs {
	out := make(UTxOs, 0)
	for _, utxo := range u {
		cred, err := utxo.Address.PaymentCredential()
		if err != nil {
			continue
		}
		if cred.Hash == h {
			out = append(out, utxo)
		}
	}
	return out
}

// Total sums the values.
func (u UTxOs) Total() Value {
	total := Value{}
	for _, utxo := range u {
		total = total.Add(utxo.Value)
	}
	return total
}

// Inputs returns the references of the outputs.
func (u UTxOs) Inputs() []Input {
	inputs := make([]Input, 0, len(u))
	for _, utxo := range u {
		inputs = append(inputs, utxo.Input)
	}
	return inputs
}

// Sorted returns a copy of the outputs in input order.
func (u UTxOs) Sorted() UTxOs {
	out := make(UTxOs, len(u))
	copy(out, u)
	sort.SliceStable(out, func(i, j int) bool {
		return compareInputs(out[i].Input, out[j].Input) < 0
	})
	return out
}
