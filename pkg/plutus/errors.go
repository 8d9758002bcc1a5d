package plutus

import "errors"

var (
	// ErrMalformedData is returned when the CBOR input is not valid Plutus data.
	ErrMalformedData = errors.New("malformed plutus data")
	// ErrUnknownTag is returned for CBOR tags that carry no Plutus meaning.
	ErrUnknownTag = errors.New("unknown cbor tag for plutus data")
	// ErrIntegerRange ...
	ErrIntegerRange = errors.New("integer out of range")
	// ErrUnsupportedData is returned when encoding a value that is not one of
	// the known Data variants.
	ErrUnsupportedData = errors.New("unsupported plutus data type")
)
