package hydra

import "errors"

var (
	// ErrInvalidURL is returned when a node url cannot be parsed.
	ErrInvalidURL = errors.New("invalid node url")
	// ErrDecode is returned when a node response is malformed. Decoding is
	// all or nothing: no partial result is ever returned with it.
	ErrDecode = errors.New("failed to decode node response")
	// ErrUnexpectedStatus is returned for non 2xx http responses.
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrTxTimeout is returned when no confirmation arrived in time. The
	// transaction may still be applied later.
	ErrTxTimeout = errors.New("timed out waiting for transaction confirmation")
	// ErrTxRejected is returned when the node reports the transaction invalid.
	ErrTxRejected = errors.New("transaction rejected by node")
	// ErrNoCostModel is returned when the protocol parameters carry no
	// PlutusV2 cost model.
	ErrNoCostModel = errors.New("protocol parameters have no PlutusV2 cost model")
)
