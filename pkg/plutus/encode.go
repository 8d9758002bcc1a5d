package plutus

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	// bytes longer than this are split into an indefinite length byte string.
	maxBytesChunk = 64

	constrTagBase      = 121
	constrTagExtBase   = 1280
	constrTagGeneral   = 102
	constrCompactLimit = 7
	constrExtLimit     = 128

	majorBytes = 2
	majorArray = 4
	majorMap   = 5
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		BigIntConvert: cbor.BigIntConvertShortest,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// Encode serializes d into its CBOR representation.
func Encode(d Data) ([]byte, error) {
	switch v := d.(type) {
	case Constr:
		return encodeConstr(v)
	case Int:
		if v.Value == nil {
			return encMode.Marshal(0)
		}
		return encMode.Marshal(v.Value)
	case Bytes:
		return encodeBytes(v)
	case List:
		items, err := encodeAll(v)
		if err != nil {
			return nil, err
		}
		return joinWithHeader(majorArray, items), nil
	case Map:
		items := make([][]byte, 0, 2*len(v))
		for _, p := range v {
			k, err := Encode(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := Encode(p.Value)
			if err != nil {
				return nil, err
			}
			items = append(items, k, val)
		}
		return joinWithHeader(majorMap, items, len(v)), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedData, d)
	}
}

// MustEncode is like Encode but panics on error. It is meant for values
// built from compiled-in constants only.
func MustEncode(d Data) []byte {
	buf, err := Encode(d)
	if err != nil {
		panic(err)
	}
	return buf
}

func encodeConstr(c Constr) ([]byte, error) {
	items, err := encodeAll(c.Fields)
	if err != nil {
		return nil, err
	}
	fields := joinWithHeader(majorArray, items)

	switch {
	case c.Index < constrCompactLimit:
		return encMode.Marshal(cbor.Tag{
			Number:  constrTagBase + c.Index,
			Content: cbor.RawMessage(fields),
		})
	case c.Index < constrExtLimit:
		return encMode.Marshal(cbor.Tag{
			Number:  constrTagExtBase + c.Index - constrCompactLimit,
			Content: cbor.RawMessage(fields),
		})
	default:
		index, err := encMode.Marshal(c.Index)
		if err != nil {
			return nil, err
		}
		return encMode.Marshal(cbor.Tag{
			Number:  constrTagGeneral,
			Content: cbor.RawMessage(joinWithHeader(majorArray, [][]byte{index, fields})),
		})
	}
}

func encodeBytes(b Bytes) ([]byte, error) {
	if len(b) <= maxBytesChunk {
		return encMode.Marshal([]byte(b))
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(majorBytes<<5 | 31)
	for start := 0; start < len(b); start += maxBytesChunk {
		end := start + maxBytesChunk
		if end > len(b) {
			end = len(b)
		}
		chunk, err := encMode.Marshal([]byte(b[start:end]))
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}
	buf.WriteByte(0xff)
	return buf.Bytes(), nil
}

func encodeAll(list []Data) ([][]byte, error) {
	items := make([][]byte, 0, len(list))
	for i, d := range list {
		buf, err := Encode(d)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, buf)
	}
	return items, nil
}

// joinWithHeader prefixes the concatenation of items with a definite length
// header of the given major type. Maps pass their pair count explicitly.
func joinWithHeader(major byte, items [][]byte, count ...int) []byte {
	n := len(items)
	if len(count) > 0 {
		n = count[0]
	}
	buf := &bytes.Buffer{}
	buf.Write(header(major, uint64(n)))
	for _, item := range items {
		buf.Write(item)
	}
	return buf.Bytes()
}

func header(major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return []byte{m | byte(n)}
	case n <= 0xff:
		return []byte{m | 24, byte(n)}
	case n <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = m | 25
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = m | 26
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = m | 27
		binary.BigEndian.PutUint64(buf[1:], n)
		return buf
	}
}
