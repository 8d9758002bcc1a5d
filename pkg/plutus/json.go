package plutus

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
)

// jsonPair is a map entry of the detailed JSON schema of Plutus data, as
// served by cardano node tooling and Hydra nodes.
type jsonPair struct {
	K json.RawMessage `json:"k"`
	V json.RawMessage `json:"v"`
}

// FromJSON decodes data from the detailed JSON schema.
func FromJSON(buf []byte) (Data, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
	}

	switch {
	case fields["constructor"] != nil:
		var index uint64
		if err := json.Unmarshal(fields["constructor"], &index); err != nil {
			return nil, fmt.Errorf("%w: constructor: %s", ErrMalformedData, err)
		}
		var raw []json.RawMessage
		if f, ok := fields["fields"]; ok {
			if err := json.Unmarshal(f, &raw); err != nil {
				return nil, fmt.Errorf("%w: fields: %s", ErrMalformedData, err)
			}
		}
		items, err := fromJSONList(raw)
		if err != nil {
			return nil, err
		}
		return NewConstr(index, items...), nil

	case fields["int"] != nil:
		v, ok := new(big.Int).SetString(string(bytes.TrimSpace(fields["int"])), 10)
		if !ok {
			return nil, fmt.Errorf("%w: bad int %s", ErrMalformedData, fields["int"])
		}
		return Int{v}, nil

	case fields["bytes"] != nil:
		var s string
		if err := json.Unmarshal(fields["bytes"], &s); err != nil {
			return nil, fmt.Errorf("%w: bytes: %s", ErrMalformedData, err)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bytes: %s", ErrMalformedData, err)
		}
		return Bytes(b), nil

	case fields["list"] != nil:
		var raw []json.RawMessage
		if err := json.Unmarshal(fields["list"], &raw); err != nil {
			return nil, fmt.Errorf("%w: list: %s", ErrMalformedData, err)
		}
		items, err := fromJSONList(raw)
		if err != nil {
			return nil, err
		}
		return List(items), nil

	case fields["map"] != nil:
		var raw []jsonPair
		if err := json.Unmarshal(fields["map"], &raw); err != nil {
			return nil, fmt.Errorf("%w: map: %s", ErrMalformedData, err)
		}
		pairs := make(Map, 0, len(raw))
		for _, p := range raw {
			k, err := FromJSON(p.K)
			if err != nil {
				return nil, err
			}
			v, err := FromJSON(p.V)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{k, v})
		}
		return pairs, nil
	}
	return nil, fmt.Errorf("%w: unknown json form %s", ErrMalformedData, buf)
}

func fromJSONList(raw []json.RawMessage) ([]Data, error) {
	items := make([]Data, 0, len(raw))
	for _, r := range raw {
		d, err := FromJSON(r)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

// ToJSON encodes data in the detailed JSON schema.
func ToJSON(d Data) ([]byte, error) {
	v, err := toJSONValue(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func toJSONValue(d Data) (interface{}, error) {
	switch x := d.(type) {
	case Constr:
		fields, err := toJSONList(x.Fields)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"constructor": x.Index, "fields": fields}, nil
	case Int:
		v := x.Value
		if v == nil {
			v = new(big.Int)
		}
		return map[string]interface{}{"int": json.RawMessage(v.String())}, nil
	case Bytes:
		return map[string]interface{}{"bytes": hex.EncodeToString(x)}, nil
	case List:
		items, err := toJSONList(x)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"list": items}, nil
	case Map:
		pairs := make([]map[string]interface{}, 0, len(x))
		for _, p := range x {
			k, err := toJSONValue(p.Key)
			if err != nil {
				return nil, err
			}
			v, err := toJSONValue(p.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, map[string]interface{}{"k": k, "v": v})
		}
		return map[string]interface{}{"map": pairs}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedData, d)
	}
}

func toJSONList(list []Data) ([]interface{}, error) {
	items := make([]interface{}, 0, len(list))
	for _, d := range list {
		v, err := toJSONValue(d)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
