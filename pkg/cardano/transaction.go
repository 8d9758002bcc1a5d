package cardano

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

// RedeemerTag tells which part of the transaction a redeemer applies to.
type RedeemerTag uint8

const (
	RedeemerSpend RedeemerTag = iota
	RedeemerMint
	RedeemerCert
	RedeemerReward
)

// ExUnits is an execution budget.
type ExUnits struct {
	_     struct{} `cbor:",toarray"`
	Mem   uint64
	Steps uint64
}

// Redeemer is the argument passed to a validator for the input (or policy)
// at Index.
type Redeemer struct {
	Tag     RedeemerTag
	Index   uint32
	Data    plutus.Data
	ExUnits ExUnits
}

// Output is a transaction output.
type Output struct {
	Address   Address
	Value     Value
	Datum     *Datum
	ScriptRef *Script
}

// TxBody holds the fields of a transaction that are covered by signatures.
type TxBody struct {
	Inputs          []Input
	Outputs         []Output
	Fee             uint64
	TTL             uint64
	ScriptDataHash  []byte
	Collateral      []Input
	RequiredSigners []Hash28
	NetworkID       *uint8
	ReferenceInputs []Input
}

// WitnessSet holds signatures, scripts, datums and redeemers.
type WitnessSet struct {
	VKeys           []VKeyWitness
	NativeScripts   []NativeScript
	PlutusV2Scripts [][]byte
	PlutusData      []plutus.Data
	Redeemers       []Redeemer
}

// VKeyWitness is a signature of the body hash.
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// Transaction is a Babbage era transaction.
type Transaction struct {
	Body      TxBody
	Witnesses WitnessSet
}

type wireInput struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

type wireOutput struct {
	Address   []byte          `cbor:"0,keyasint"`
	Value     Value           `cbor:"1,keyasint"`
	Datum     cbor.RawMessage `cbor:"2,keyasint,omitempty"`
	ScriptRef cbor.RawMessage `cbor:"3,keyasint,omitempty"`
}

type wireBody struct {
	Inputs          []wireInput  `cbor:"0,keyasint"`
	Outputs         []wireOutput `cbor:"1,keyasint"`
	Fee             uint64       `cbor:"2,keyasint"`
	TTL             uint64       `cbor:"3,keyasint,omitempty"`
	ScriptDataHash  []byte       `cbor:"11,keyasint,omitempty"`
	Collateral      []wireInput  `cbor:"13,keyasint,omitempty"`
	RequiredSigners [][]byte     `cbor:"14,keyasint,omitempty"`
	NetworkID       *uint8       `cbor:"15,keyasint,omitempty"`
	ReferenceInputs []wireInput  `cbor:"18,keyasint,omitempty"`
}

type wireRedeemer struct {
	_       struct{} `cbor:",toarray"`
	Tag     uint8
	Index   uint32
	Data    cbor.RawMessage
	ExUnits ExUnits
}

type wireWitnessSet struct {
	VKeys           []VKeyWitness   `cbor:"0,keyasint,omitempty"`
	NativeScripts   []NativeScript  `cbor:"1,keyasint,omitempty"`
	PlutusData      cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Redeemers       cbor.RawMessage `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts [][]byte        `cbor:"6,keyasint,omitempty"`
}

type wireTx struct {
	_         struct{} `cbor:",toarray"`
	Body      cbor.RawMessage
	Witnesses cbor.RawMessage
	Valid     bool
	Auxiliary cbor.RawMessage
}

// plutusV2LanguageID is the ledger language id of PlutusV2 in cost model
// maps. It differs from the script type tag used in hashing.
const plutusV2LanguageID uint8 = 1

// cborNull is the encoding of an absent auxiliary data.
var cborNull = []byte{0xf6}

func cborInCBOR(buf []byte) cbor.Tag {
	return cbor.Tag{Number: 24, Content: buf}
}

func toWireInputs(inputs []Input) []wireInput {
	if len(inputs) == 0 {
		return nil
	}
	sorted := append([]Input(nil), inputs...)
	SortInputs(sorted)
	wire := make([]wireInput, 0, len(sorted))
	for _, in := range sorted {
		wire = append(wire, wireInput{TxHash: in.hashBytes(), Index: in.Index})
	}
	return wire
}

// Bytes returns the CBOR encoding of the body. Inputs, collateral and
// reference inputs are encoded in ledger order.
func (b TxBody) Bytes() ([]byte, error) {
	outputs := make([]wireOutput, 0, len(b.Outputs))
	for i, out := range b.Outputs {
		w := wireOutput{Address: out.Address.Bytes(), Value: out.Value}
		if w.Value == nil {
			w.Value = NewValue(0)
		}
		if out.Datum != nil {
			datum, err := out.Datum.optionCBOR()
			if err != nil {
				return nil, fmt.Errorf("output %d datum: %w", i, err)
			}
			w.Datum = datum
		}
		if out.ScriptRef != nil {
			ref, err := out.ScriptRef.refCBOR()
			if err != nil {
				return nil, fmt.Errorf("output %d script ref: %w", i, err)
			}
			w.ScriptRef = ref
		}
		outputs = append(outputs, w)
	}

	var signers [][]byte
	for _, s := range b.RequiredSigners {
		signer := s
		signers = append(signers, signer[:])
	}

	inputs := toWireInputs(b.Inputs)
	if inputs == nil {
		inputs = []wireInput{}
	}

	return encMode.Marshal(wireBody{
		Inputs:          inputs,
		Outputs:         outputs,
		Fee:             b.Fee,
		TTL:             b.TTL,
		ScriptDataHash:  b.ScriptDataHash,
		Collateral:      toWireInputs(b.Collateral),
		RequiredSigners: signers,
		NetworkID:       b.NetworkID,
		ReferenceInputs: toWireInputs(b.ReferenceInputs),
	})
}

// Hash returns the body hash, which is the transaction id.
func (b TxBody) Hash() ([32]byte, error) {
	buf, err := b.Bytes()
	if err != nil {
		return [32]byte{}, err
	}
	return Blake2b256(buf), nil
}

// EncodeRedeemers returns the redeemers in the array form used both in the
// witness set and in the script data hash.
func EncodeRedeemers(redeemers []Redeemer) ([]byte, error) {
	wire := make([]wireRedeemer, 0, len(redeemers))
	for i, r := range redeemers {
		data, err := plutus.Encode(r.Data)
		if err != nil {
			return nil, fmt.Errorf("redeemer %d: %w", i, err)
		}
		wire = append(wire, wireRedeemer{
			Tag: uint8(r.Tag), Index: r.Index, Data: data, ExUnits: r.ExUnits,
		})
	}
	return encMode.Marshal(wire)
}

func encodeDataList(list []plutus.Data) ([]byte, error) {
	items := make([]cbor.RawMessage, 0, len(list))
	for i, d := range list {
		buf, err := plutus.Encode(d)
		if err != nil {
			return nil, fmt.Errorf("datum %d: %w", i, err)
		}
		items = append(items, buf)
	}
	return encMode.Marshal(items)
}

// ScriptDataHash computes the hash binding redeemers, witness datums and the
// PlutusV2 cost model to the body.
func ScriptDataHash(redeemers []Redeemer, datums []plutus.Data, costModel []int64) ([]byte, error) {
	redeemersCBOR, err := EncodeRedeemers(redeemers)
	if err != nil {
		return nil, err
	}
	var datumsCBOR []byte
	if len(datums) > 0 {
		if datumsCBOR, err = encodeDataList(datums); err != nil {
			return nil, err
		}
	}
	if costModel == nil {
		costModel = []int64{}
	}
	views, err := encMode.Marshal(map[uint8][]int64{plutusV2LanguageID: costModel})
	if err != nil {
		return nil, err
	}
	h := Blake2b256(redeemersCBOR, datumsCBOR, views)
	return h[:], nil
}

func (w WitnessSet) bytes() ([]byte, error) {
	wire := wireWitnessSet{
		VKeys:           w.VKeys,
		NativeScripts:   w.NativeScripts,
		PlutusV2Scripts: w.PlutusV2Scripts,
	}
	if len(w.PlutusData) > 0 {
		buf, err := encodeDataList(w.PlutusData)
		if err != nil {
			return nil, err
		}
		wire.PlutusData = buf
	}
	if len(w.Redeemers) > 0 {
		buf, err := EncodeRedeemers(w.Redeemers)
		if err != nil {
			return nil, err
		}
		wire.Redeemers = buf
	}
	return encMode.Marshal(wire)
}

// Sign adds a vkey witness of key over the current body hash.
func (t *Transaction) Sign(key SigningKey) error {
	h, err := t.Body.Hash()
	if err != nil {
		return err
	}
	t.Witnesses.VKeys = append(t.Witnesses.VKeys, VKeyWitness{
		VKey:      key.PublicKey(),
		Signature: key.Sign(h[:]),
	})
	return nil
}

// ID returns the hex transaction id.
func (t *Transaction) ID() (string, error) {
	h, err := t.Body.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h[:]), nil
}

// Bytes returns the full CBOR encoding of the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	body, err := t.Body.Bytes()
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	witnesses, err := t.Witnesses.bytes()
	if err != nil {
		return nil, fmt.Errorf("witnesses: %w", err)
	}
	return encMode.Marshal(wireTx{
		Body:      body,
		Witnesses: witnesses,
		Valid:     true,
		Auxiliary: cborNull,
	})
}
