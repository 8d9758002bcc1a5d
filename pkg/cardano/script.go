package cardano

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ScriptType is the language tag used in reference scripts and in script
// hashing.
type ScriptType uint8

const (
	NativeScriptType ScriptType = iota
	PlutusV1ScriptType
	PlutusV2ScriptType
	PlutusV3ScriptType
)

// Script is a script in serialized form: the CBOR of a native script, or the
// compiled code of a Plutus script.
type Script struct {
	Type  ScriptType
	Bytes []byte
}

// Hash returns the script hash, blake2b-224 of the language tag followed by
// the script bytes.
func (s Script) Hash() Hash28 {
	return Blake2b224([]byte{byte(s.Type)}, s.Bytes)
}

// Address returns the enterprise address locked by the script.
func (s Script) Address(network uint8) Address {
	return NewEnterpriseAddress(network, ScriptCredential(s.Hash()))
}

// refCBOR returns the script_ref encoding: tag 24 wrapping [type, script].
func (s Script) refCBOR() ([]byte, error) {
	var body []byte
	var err error
	if s.Type == NativeScriptType {
		body, err = encMode.Marshal([]interface{}{
			uint8(s.Type), cbor.RawMessage(s.Bytes),
		})
	} else {
		body, err = encMode.Marshal([]interface{}{uint8(s.Type), s.Bytes})
	}
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(cbor.Tag{Number: 24, Content: body})
}

// NativeScriptKind enumerates the native script constructors used here.
type NativeScriptKind uint8

const (
	ScriptPubkey NativeScriptKind = 0
	ScriptAll    NativeScriptKind = 1
	ScriptAny    NativeScriptKind = 2
)

// NativeScript is a multi-signature script.
type NativeScript struct {
	Kind    NativeScriptKind
	KeyHash Hash28
	Scripts []NativeScript
}

// RequireSignature returns a script satisfied by a signature of keyHash.
func RequireSignature(keyHash Hash28) NativeScript {
	return NativeScript{Kind: ScriptPubkey, KeyHash: keyHash}
}

// RequireAnyOf returns a script satisfied by any of the given scripts.
func RequireAnyOf(scripts ...NativeScript) NativeScript {
	return NativeScript{Kind: ScriptAny, Scripts: scripts}
}

// MarshalCBOR implements cbor.Marshaler.
func (n NativeScript) MarshalCBOR() ([]byte, error) {
	switch n.Kind {
	case ScriptPubkey:
		return encMode.Marshal([]interface{}{uint8(n.Kind), n.KeyHash[:]})
	case ScriptAll, ScriptAny:
		scripts := n.Scripts
		if scripts == nil {
			scripts = []NativeScript{}
		}
		return encMode.Marshal([]interface{}{uint8(n.Kind), scripts})
	default:
		return nil, fmt.Errorf("unsupported native script kind %d", n.Kind)
	}
}

// Script returns the serialized form of the native script.
func (n NativeScript) Script() (Script, error) {
	buf, err := n.MarshalCBOR()
	if err != nil {
		return Script{}, err
	}
	return Script{Type: NativeScriptType, Bytes: buf}, nil
}

// NormalizePlutusScript returns the script bytes in the form used for
// hashing and witnessing. Text envelopes and node APIs wrap the compiled
// code in an extra CBOR byte string; blueprints do not.
func NormalizePlutusScript(b []byte) []byte {
	var once []byte
	if err := cbor.Unmarshal(b, &once); err != nil {
		return b
	}
	var twice []byte
	if err := cbor.Unmarshal(once, &twice); err != nil {
		return b
	}
	return once
}
