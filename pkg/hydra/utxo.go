package hydra

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

const (
	scriptTypeNative   = "SimpleScript"
	scriptTypePlutusV1 = "PlutusScriptV1"
	scriptTypePlutusV2 = "PlutusScriptV2"
	scriptTypePlutusV3 = "PlutusScriptV3"
)

type scriptEnvelope struct {
	CBORHex     string `json:"cborHex"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type referenceScriptJSON struct {
	ScriptLanguage string         `json:"scriptLanguage,omitempty"`
	Script         scriptEnvelope `json:"script"`
}

// utxoJSON is a UTxO entry of the node API. Field matching is case
// insensitive, so both datumhash and datumHash are accepted.
type utxoJSON struct {
	Address         string                     `json:"address"`
	Value           map[string]json.RawMessage `json:"value"`
	Datumhash       *string                    `json:"datumhash,omitempty"`
	InlineDatum     json.RawMessage            `json:"inlineDatum,omitempty"`
	InlineDatumRaw  *string                    `json:"inlineDatumRaw,omitempty"`
	InlineDatumhash *string                    `json:"inlineDatumhash,omitempty"`
	ReferenceScript *referenceScriptJSON       `json:"referenceScript,omitempty"`
}

// DecodeUTxOs decodes a UTxO set keyed by "txhash#index". Any malformed
// entry fails the whole set. The result is sorted by reference.
func DecodeUTxOs(buf []byte) (cardano.UTxOs, error) {
	var entries map[string]utxoJSON
	if err := json.Unmarshal(buf, &entries); err != nil {
		return nil, fmt.Errorf("%w: utxo set: %s", ErrDecode, err)
	}
	return decodeUTxOEntries(entries)
}

func decodeUTxOEntries(entries map[string]utxoJSON) (cardano.UTxOs, error) {
	utxos := make(cardano.UTxOs, 0, len(entries))
	for key, entry := range entries {
		utxo, err := entry.toUTxO(key)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo %s: %s", ErrDecode, key, err)
		}
		utxos = append(utxos, utxo)
	}

	return utxos.Sorted(), nil
}

func (e utxoJSON) toUTxO(key string) (cardano.UTxO, error) {
	in, err := cardano.ParseInput(key)
	if err != nil {
		return cardano.UTxO{}, err
	}
	addr, err := cardano.ParseAddress(e.Address)
	if err != nil {
		return cardano.UTxO{}, err
	}
	value, err := decodeValue(e.Value)
	if err != nil {
		return cardano.UTxO{}, err
	}
	datum, err := e.datum()
	if err != nil {
		return cardano.UTxO{}, err
	}

	utxo := cardano.UTxO{Input: in, Address: addr, Value: value, Datum: datum}
	if e.ReferenceScript != nil {
		script, err := e.ReferenceScript.Script.toScript()
		if err != nil {
			return cardano.UTxO{}, err
		}
		utxo.ReferenceScript = &script
	}
	return utxo, nil
}

func (e utxoJSON) datum() (*cardano.Datum, error) {
	if e.InlineDatumRaw != nil {
		buf, err := hex.DecodeString(*e.InlineDatumRaw)
		if err != nil {
			return nil, fmt.Errorf("inline datum: %w", err)
		}
		d, err := plutus.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("inline datum: %w", err)
		}
		return cardano.InlineDatum(d), nil
	}
	if len(e.InlineDatum) > 0 && !bytes.Equal(e.InlineDatum, []byte("null")) {
		d, err := plutus.FromJSON(e.InlineDatum)
		if err != nil {
			return nil, fmt.Errorf("inline datum: %w", err)
		}
		return cardano.InlineDatum(d), nil
	}
	if e.Datumhash != nil {
		h, err := hex.DecodeString(*e.Datumhash)
		if err != nil || len(h) != 32 {
			return nil, fmt.Errorf("bad datum hash %q", *e.Datumhash)
		}
		return &cardano.Datum{Hash: h}, nil
	}
	return nil, nil
}

// decodeValue accepts both the nested {policy: {name: amount}} form and
// flat policy+name asset ids.
func decodeValue(raw map[string]json.RawMessage) (cardano.Value, error) {
	value := cardano.Value{}
	for key, amount := range raw {
		if key == cardano.Lovelace {
			var n uint64
			if err := json.Unmarshal(amount, &n); err != nil {
				return nil, fmt.Errorf("lovelace: %w", err)
			}
			value[cardano.Lovelace] = n
			continue
		}

		var n uint64
		if err := json.Unmarshal(amount, &n); err == nil {
			id := strings.ReplaceAll(key, ".", "")
			if _, _, err := cardano.SplitAssetID(id); err != nil {
				return nil, err
			}
			value[id] += n
			continue
		}

		var byName map[string]uint64
		if err := json.Unmarshal(amount, &byName); err != nil {
			return nil, fmt.Errorf("asset %s: %w", key, err)
		}
		for name, n := range byName {
			id := key + name
			if _, _, err := cardano.SplitAssetID(id); err != nil {
				return nil, err
			}
			value[id] += n
		}
	}
	return value, nil
}

func (s scriptEnvelope) toScript() (cardano.Script, error) {
	buf, err := hex.DecodeString(s.CBORHex)
	if err != nil {
		return cardano.Script{}, fmt.Errorf("reference script: %w", err)
	}
	switch s.Type {
	case scriptTypeNative:
		return cardano.Script{Type: cardano.NativeScriptType, Bytes: buf}, nil
	case scriptTypePlutusV1:
		return cardano.Script{Type: cardano.PlutusV1ScriptType, Bytes: cardano.NormalizePlutusScript(buf)}, nil
	case scriptTypePlutusV2:
		return cardano.Script{Type: cardano.PlutusV2ScriptType, Bytes: cardano.NormalizePlutusScript(buf)}, nil
	case scriptTypePlutusV3:
		return cardano.Script{Type: cardano.PlutusV3ScriptType, Bytes: cardano.NormalizePlutusScript(buf)}, nil
	default:
		return cardano.Script{}, fmt.Errorf("reference script: unknown type %q", s.Type)
	}
}

// EncodeUTxOs encodes a UTxO set in the node API form.
func EncodeUTxOs(utxos cardano.UTxOs) ([]byte, error) {
	entries := make(map[string]utxoJSON, len(utxos))
	for _, utxo := range utxos {
		entry, err := encodeUTxO(utxo)
		if err != nil {
			return nil, fmt.Errorf("utxo %s: %w", utxo.Input, err)
		}
		entries[utxo.Input.String()] = entry
	}
	return json.Marshal(entries)
}

func encodeUTxO(utxo cardano.UTxO) (utxoJSON, error) {
	entry := utxoJSON{
		Address: utxo.Address.String(),
		Value:   make(map[string]json.RawMessage),
	}

	value := utxo.Value
	if value == nil {
		value = cardano.NewValue(0)
	}
	entry.Value[cardano.Lovelace] = json.RawMessage(fmt.Sprintf("%d", value.Coin()))
	byPolicy := make(map[string]map[string]uint64)
	for _, id := range value.Assets() {
		policy, name := id[:2*cardano.HashSize], id[2*cardano.HashSize:]
		if byPolicy[policy] == nil {
			byPolicy[policy] = make(map[string]uint64)
		}
		byPolicy[policy][name] = value[id]
	}
	for policy, byName := range byPolicy {
		buf, err := json.Marshal(byName)
		if err != nil {
			return utxoJSON{}, err
		}
		entry.Value[policy] = buf
	}

	if utxo.Datum != nil {
		if utxo.Datum.Inline != nil {
			raw, err := plutus.Encode(utxo.Datum.Inline)
			if err != nil {
				return utxoJSON{}, err
			}
			detailed, err := plutus.ToJSON(utxo.Datum.Inline)
			if err != nil {
				return utxoJSON{}, err
			}
			rawHex := hex.EncodeToString(raw)
			h := cardano.Blake2b256(raw)
			hashHex := hex.EncodeToString(h[:])
			entry.InlineDatum = detailed
			entry.InlineDatumRaw = &rawHex
			entry.InlineDatumhash = &hashHex
		} else {
			hashHex := hex.EncodeToString(utxo.Datum.Hash)
			entry.Datumhash = &hashHex
		}
	}

	if s := utxo.ReferenceScript; s != nil {
		envelope, err := scriptToEnvelope(*s)
		if err != nil {
			return utxoJSON{}, err
		}
		entry.ReferenceScript = &referenceScriptJSON{Script: envelope}
	}
	return entry, nil
}

func scriptToEnvelope(s cardano.Script) (scriptEnvelope, error) {
	switch s.Type {
	case cardano.NativeScriptType:
		return scriptEnvelope{CBORHex: hex.EncodeToString(s.Bytes), Type: scriptTypeNative}, nil
	case cardano.PlutusV1ScriptType, cardano.PlutusV2ScriptType, cardano.PlutusV3ScriptType:
		wrapped, err := wrapBytes(s.Bytes)
		if err != nil {
			return scriptEnvelope{}, err
		}
		types := map[cardano.ScriptType]string{
			cardano.PlutusV1ScriptType: scriptTypePlutusV1,
			cardano.PlutusV2ScriptType: scriptTypePlutusV2,
			cardano.PlutusV3ScriptType: scriptTypePlutusV3,
		}
		return scriptEnvelope{CBORHex: hex.EncodeToString(wrapped), Type: types[s.Type]}, nil
	default:
		return scriptEnvelope{}, fmt.Errorf("unknown script type %d", s.Type)
	}
}

func wrapBytes(b []byte) ([]byte, error) {
	return cbor.Marshal(b)
}
