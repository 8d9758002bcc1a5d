package plutus

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

const (
	majorUint     = 0
	majorNegInt   = 1
	majorTag      = 6
	tagPosBignum  = 2
	tagNegBignum  = 3
	breakByte     = 0xff
	indefiniteLen = 31
)

// Decode parses a single CBOR encoded Plutus data item. Trailing bytes are
// rejected.
func Decode(buf []byte) (Data, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedData)
	}
	var raw cbor.RawMessage
	rest, err := cbor.UnmarshalFirst(buf, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedData, len(rest))
	}
	return decodeItem(raw)
}

func decodeItem(raw cbor.RawMessage) (Data, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty item", ErrMalformedData)
	}

	switch raw[0] >> 5 {
	case majorUint, majorNegInt:
		return decodeInt(raw)
	case majorBytes:
		var b []byte
		if err := cbor.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
		}
		return Bytes(b), nil
	case majorArray:
		items, err := decodeArray(raw)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case majorMap:
		return decodeMap(raw)
	case majorTag:
		return decodeTagged(raw)
	default:
		return nil, fmt.Errorf(
			"%w: unexpected cbor major type %d", ErrMalformedData, raw[0]>>5,
		)
	}
}

func decodeInt(raw cbor.RawMessage) (Data, error) {
	v := new(big.Int)
	if err := cbor.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
	}
	return Int{v}, nil
}

func decodeTagged(raw cbor.RawMessage) (Data, error) {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
	}

	switch n := tag.Number; {
	case n == tagPosBignum || n == tagNegBignum:
		return decodeInt(raw)
	case n >= constrTagBase && n < constrTagBase+constrCompactLimit:
		return decodeConstr(n-constrTagBase, tag.Content)
	case n >= constrTagExtBase && n < constrTagExtBase+constrExtLimit-constrCompactLimit:
		return decodeConstr(n-constrTagExtBase+constrCompactLimit, tag.Content)
	case n == constrTagGeneral:
		var items []cbor.RawMessage
		if err := cbor.Unmarshal(tag.Content, &items); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
		}
		if len(items) != 2 {
			return nil, fmt.Errorf(
				"%w: general constructor must have 2 items, got %d",
				ErrMalformedData, len(items),
			)
		}
		var index uint64
		if err := cbor.Unmarshal(items[0], &index); err != nil {
			return nil, fmt.Errorf("%w: constructor index: %s", ErrMalformedData, err)
		}
		return decodeConstr(index, items[1])
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, n)
	}
}

func decodeConstr(index uint64, content cbor.RawMessage) (Data, error) {
	if len(content) == 0 || content[0]>>5 != majorArray {
		return nil, fmt.Errorf(
			"%w: constructor %d fields must be an array", ErrMalformedData, index,
		)
	}
	fields, err := decodeArray(content)
	if err != nil {
		return nil, err
	}
	return Constr{Index: index, Fields: fields}, nil
}

func decodeArray(raw cbor.RawMessage) ([]Data, error) {
	var items []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedData, err)
	}
	list := make([]Data, 0, len(items))
	for i, item := range items {
		d, err := decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		list = append(list, d)
	}
	return list, nil
}

func decodeMap(raw cbor.RawMessage) (Data, error) {
	count, rest, indefinite, err := readHeader(raw)
	if err != nil {
		return nil, err
	}

	pairs := make(Map, 0)
	for i := uint64(0); indefinite || i < count; i++ {
		if indefinite {
			if len(rest) == 0 {
				return nil, fmt.Errorf("%w: unterminated map", ErrMalformedData)
			}
			if rest[0] == breakByte {
				break
			}
		}

		var k, v cbor.RawMessage
		if rest, err = cbor.UnmarshalFirst(rest, &k); err != nil {
			return nil, fmt.Errorf("%w: map key %d: %s", ErrMalformedData, i, err)
		}
		if rest, err = cbor.UnmarshalFirst(rest, &v); err != nil {
			return nil, fmt.Errorf("%w: map value %d: %s", ErrMalformedData, i, err)
		}
		key, err := decodeItem(k)
		if err != nil {
			return nil, fmt.Errorf("map key %d: %w", i, err)
		}
		value, err := decodeItem(v)
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", i, err)
		}
		pairs = append(pairs, Pair{key, value})
	}
	return pairs, nil
}

// readHeader parses the initial byte(s) of a definite or indefinite length
// item and returns the announced count together with the remaining bytes.
func readHeader(raw []byte) (uint64, []byte, bool, error) {
	if len(raw) == 0 {
		return 0, nil, false, fmt.Errorf("%w: missing header", ErrMalformedData)
	}
	info := raw[0] & 0x1f
	switch {
	case info < 24:
		return uint64(info), raw[1:], false, nil
	case info == 24 && len(raw) >= 2:
		return uint64(raw[1]), raw[2:], false, nil
	case info == 25 && len(raw) >= 3:
		return uint64(binary.BigEndian.Uint16(raw[1:3])), raw[3:], false, nil
	case info == 26 && len(raw) >= 5:
		return uint64(binary.BigEndian.Uint32(raw[1:5])), raw[5:], false, nil
	case info == 27 && len(raw) >= 9:
		return binary.BigEndian.Uint64(raw[1:9]), raw[9:], false, nil
	case info == indefiniteLen:
		return 0, raw[1:], true, nil
	default:
		return 0, nil, false, fmt.Errorf("%w: invalid header 0x%x", ErrMalformedData, raw[0])
	}
}
