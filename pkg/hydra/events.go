package hydra

import (
	"encoding/json"
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
)

// Server output tags.
const (
	TagGreetings          = "Greetings"
	TagPeerConnected      = "PeerConnected"
	TagPeerDisconnected   = "PeerDisconnected"
	TagHeadIsInitializing = "HeadIsInitializing"
	TagCommitted          = "Committed"
	TagHeadIsOpen         = "HeadIsOpen"
	TagSnapshotConfirmed  = "SnapshotConfirmed"
	TagTxValid            = "TxValid"
	TagTxInvalid          = "TxInvalid"
	TagCommandFailed      = "CommandFailed"
	TagInvalidInput       = "InvalidInput"
)

// Event is a message received from the node websocket.
type Event interface {
	Tag() string
}

// Party identifies a head participant by its hydra verification key.
type Party struct {
	VKey string `json:"vkey"`
}

// Greetings is sent by the node on every new connection.
type Greetings struct {
	Me               Party
	HeadStatus       string
	HydraNodeVersion string
	SnapshotUTxOs    cardano.UTxOs
}

type PeerConnected struct {
	Peer      string
	Seq       uint64
	Timestamp string
}

type PeerDisconnected struct {
	Peer      string
	Seq       uint64
	Timestamp string
}

type HeadIsInitializing struct {
	HeadID    string
	Parties   []Party
	Seq       uint64
	Timestamp string
}

type Committed struct {
	HeadID    string
	Party     Party
	UTxOs     cardano.UTxOs
	Seq       uint64
	Timestamp string
}

type HeadIsOpen struct {
	HeadID    string
	UTxOs     cardano.UTxOs
	Seq       uint64
	Timestamp string
}

// SnapshotConfirmed carries the whole UTxO set of the head after the
// confirmed transactions.
type SnapshotConfirmed struct {
	HeadID                string
	SnapshotNumber        uint64
	UTxOs                 cardano.UTxOs
	ConfirmedTransactions []string
	Seq                   uint64
	Timestamp             string
}

type TxValid struct {
	HeadID    string
	TxID      string
	Seq       uint64
	Timestamp string
}

type TxInvalid struct {
	HeadID    string
	TxID      string
	Reason    string
	Seq       uint64
	Timestamp string
}

type CommandFailed struct {
	ClientInput json.RawMessage
	Seq         uint64
	Timestamp   string
}

type InvalidInput struct {
	Reason string
	Input  string
}

// Unimplemented is any message with a tag this package does not know. The
// node protocol evolves independently, so these are passed through.
type Unimplemented struct {
	Type string
	Raw  json.RawMessage
}

func (Greetings) Tag() string          { return TagGreetings }
func (PeerConnected) Tag() string      { return TagPeerConnected }
func (PeerDisconnected) Tag() string   { return TagPeerDisconnected }
func (HeadIsInitializing) Tag() string { return TagHeadIsInitializing }
func (Committed) Tag() string          { return TagCommitted }
func (HeadIsOpen) Tag() string         { return TagHeadIsOpen }
func (SnapshotConfirmed) Tag() string  { return TagSnapshotConfirmed }
func (TxValid) Tag() string            { return TagTxValid }
func (TxInvalid) Tag() string          { return TagTxInvalid }
func (CommandFailed) Tag() string      { return TagCommandFailed }
func (InvalidInput) Tag() string       { return TagInvalidInput }
func (u Unimplemented) Tag() string    { return u.Type }

// wireEvent is the union of the fields of all server outputs.
type wireEvent struct {
	Tag              string              `json:"tag"`
	Seq              uint64              `json:"seq"`
	Timestamp        string              `json:"timestamp"`
	HeadID           string              `json:"headId"`
	Me               Party               `json:"me"`
	HeadStatus       string              `json:"headStatus"`
	HydraNodeVersion string              `json:"hydraNodeVersion"`
	SnapshotUTxO     map[string]utxoJSON `json:"snapshotUtxo"`
	Peer             json.RawMessage     `json:"peer"`
	Parties          []Party             `json:"parties"`
	Party            Party               `json:"party"`
	UTxO             map[string]utxoJSON `json:"utxo"`
	Snapshot         *wireSnapshot       `json:"snapshot"`
	TransactionID    string              `json:"transactionId"`
	Transaction      *wireTransaction    `json:"transaction"`
	ValidationError  *struct {
		Reason string `json:"reason"`
	} `json:"validationError"`
	ClientInput json.RawMessage `json:"clientInput"`
	Reason      string          `json:"reason"`
	Input       string          `json:"input"`
}

type wireSnapshot struct {
	HeadID                string              `json:"headId"`
	Number                uint64              `json:"number"`
	SnapshotNumber        uint64              `json:"snapshotNumber"`
	UTxO                  map[string]utxoJSON `json:"utxo"`
	Confirmed             []json.RawMessage   `json:"confirmed"`
	ConfirmedTransactions []json.RawMessage   `json:"confirmedTransactions"`
}

type wireTransaction struct {
	TxID string `json:"txId"`
	ID   string `json:"id"`
}

func (t *wireTransaction) id() string {
	if t == nil {
		return ""
	}
	if t.TxID != "" {
		return t.TxID
	}
	return t.ID
}

// DecodeEvent decodes a websocket frame. Unknown tags yield Unimplemented
// without error; known tags with malformed content fail with ErrDecode.
func DecodeEvent(raw []byte) (Event, error) {
	var head struct {
		Tag string `json:"tag"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: event: %s", ErrDecode, err)
	}

	switch head.Tag {
	case TagGreetings, TagPeerConnected, TagPeerDisconnected, TagHeadIsInitializing,
		TagCommitted, TagHeadIsOpen, TagSnapshotConfirmed, TagTxValid, TagTxInvalid,
		TagCommandFailed, TagInvalidInput:
	default:
		return Unimplemented{Type: head.Tag, Raw: append(json.RawMessage(nil), raw...)}, nil
	}

	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, head.Tag, err)
	}
	event, err := w.toEvent()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, head.Tag, err)
	}
	return event, nil
}

func (w wireEvent) toEvent() (Event, error) {
	switch w.Tag {
	case TagGreetings:
		utxos, err := decodeUTxOEntries(w.SnapshotUTxO)
		if err != nil {
			return nil, err
		}
		return Greetings{
			Me:               w.Me,
			HeadStatus:       w.HeadStatus,
			HydraNodeVersion: w.HydraNodeVersion,
			SnapshotUTxOs:    utxos,
		}, nil

	case TagPeerConnected:
		return PeerConnected{Peer: peerName(w.Peer), Seq: w.Seq, Timestamp: w.Timestamp}, nil

	case TagPeerDisconnected:
		return PeerDisconnected{Peer: peerName(w.Peer), Seq: w.Seq, Timestamp: w.Timestamp}, nil

	case TagHeadIsInitializing:
		return HeadIsInitializing{
			HeadID: w.HeadID, Parties: w.Parties, Seq: w.Seq, Timestamp: w.Timestamp,
		}, nil

	case TagCommitted:
		utxos, err := decodeUTxOEntries(w.UTxO)
		if err != nil {
			return nil, err
		}
		return Committed{
			HeadID: w.HeadID, Party: w.Party, UTxOs: utxos, Seq: w.Seq, Timestamp: w.Timestamp,
		}, nil

	case TagHeadIsOpen:
		utxos, err := decodeUTxOEntries(w.UTxO)
		if err != nil {
			return nil, err
		}
		return HeadIsOpen{HeadID: w.HeadID, UTxOs: utxos, Seq: w.Seq, Timestamp: w.Timestamp}, nil

	case TagSnapshotConfirmed:
		if w.Snapshot == nil {
			return nil, fmt.Errorf("missing snapshot")
		}
		utxos, err := decodeUTxOEntries(w.Snapshot.UTxO)
		if err != nil {
			return nil, err
		}
		confirmed := append(w.Snapshot.Confirmed, w.Snapshot.ConfirmedTransactions...)
		ids := make([]string, 0, len(confirmed))
		for _, c := range confirmed {
			id, err := confirmedTxID(c)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		number := w.Snapshot.SnapshotNumber
		if number == 0 {
			number = w.Snapshot.Number
		}
		headID := w.HeadID
		if headID == "" {
			headID = w.Snapshot.HeadID
		}
		return SnapshotConfirmed{
			HeadID:                headID,
			SnapshotNumber:        number,
			UTxOs:                 utxos,
			ConfirmedTransactions: ids,
			Seq:                   w.Seq,
			Timestamp:             w.Timestamp,
		}, nil

	case TagTxValid:
		id := w.TransactionID
		if id == "" {
			id = w.Transaction.id()
		}
		if id == "" {
			return nil, fmt.Errorf("missing transaction id")
		}
		return TxValid{HeadID: w.HeadID, TxID: id, Seq: w.Seq, Timestamp: w.Timestamp}, nil

	case TagTxInvalid:
		id := w.Transaction.id()
		if id == "" {
			id = w.TransactionID
		}
		var reason string
		if w.ValidationError != nil {
			reason = w.ValidationError.Reason
		}
		return TxInvalid{
			HeadID: w.HeadID, TxID: id, Reason: reason, Seq: w.Seq, Timestamp: w.Timestamp,
		}, nil

	case TagCommandFailed:
		return CommandFailed{ClientInput: w.ClientInput, Seq: w.Seq, Timestamp: w.Timestamp}, nil

	case TagInvalidInput:
		return InvalidInput{Reason: w.Reason, Input: w.Input}, nil
	}
	return nil, fmt.Errorf("unhandled tag %q", w.Tag)
}

// peerName accepts both the plain node id and the older host/port object.
func peerName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	return string(raw)
}

// confirmedTxID accepts either a bare id or a transaction object.
func confirmedTxID(raw json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var tx wireTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return "", fmt.Errorf("confirmed transaction: %w", err)
	}
	if tx.id() == "" {
		return "", fmt.Errorf("confirmed transaction without id")
	}
	return tx.id(), nil
}
