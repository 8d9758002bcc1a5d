package hydra_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeadIsOpen(t *testing.T) {
	t.Parallel()

	raw := `{"tag":"HeadIsOpen","headId":"ab12","seq":3,"utxo":{},"timestamp":"2024-01-01T00:00:00Z"}`

	event, err := hydra.DecodeEvent([]byte(raw))
	require.NoError(t, err)

	open, ok := event.(hydra.HeadIsOpen)
	require.True(t, ok)
	require.Equal(t, "ab12", open.HeadID)
	require.Equal(t, uint64(3), open.Seq)
	require.Empty(t, open.UTxOs)
	require.Equal(t, "2024-01-01T00:00:00Z", open.Timestamp)
	require.Equal(t, hydra.TagHeadIsOpen, event.Tag())
}

func TestDecodeUnknownTag(t *testing.T) {
	t.Parallel()

	raw := `{"tag":"SomethingNew","payload":{"a":1}}`

	event, err := hydra.DecodeEvent([]byte(raw))
	require.NoError(t, err)

	unimplemented, ok := event.(hydra.Unimplemented)
	require.True(t, ok)
	require.Equal(t, "SomethingNew", unimplemented.Tag())
	require.JSONEq(t, raw, string(unimplemented.Raw))
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	addr := testAddress(t).String()
	utxo := fmt.Sprintf(`{"%s#0": {"address": "%s", "value": {"lovelace": 42}}}`, txHash(5), addr)

	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, event hydra.Event)
	}{
		{
			name: "greetings",
			raw:  fmt.Sprintf(`{"tag":"Greetings","me":{"vkey":"aa"},"headStatus":"Open","hydraNodeVersion":"0.19.0","snapshotUtxo":%s}`, utxo),
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.Greetings)
				require.Equal(t, "aa", e.Me.VKey)
				require.Equal(t, "Open", e.HeadStatus)
				require.Len(t, e.SnapshotUTxOs, 1)
			},
		},
		{
			name: "peer_connected",
			raw:  `{"tag":"PeerConnected","peer":"bob","seq":1,"timestamp":"t"}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, hydra.PeerConnected{Peer: "bob", Seq: 1, Timestamp: "t"}, event)
			},
		},
		{
			name: "peer_disconnected",
			raw:  `{"tag":"PeerDisconnected","peer":"bob","seq":2,"timestamp":"t"}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, hydra.PeerDisconnected{Peer: "bob", Seq: 2, Timestamp: "t"}, event)
			},
		},
		{
			name: "head_is_initializing",
			raw:  `{"tag":"HeadIsInitializing","headId":"h","parties":[{"vkey":"a"},{"vkey":"b"}],"seq":4,"timestamp":"t"}`,
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.HeadIsInitializing)
				require.Equal(t, "h", e.HeadID)
				require.Equal(t, []hydra.Party{{VKey: "a"}, {VKey: "b"}}, e.Parties)
			},
		},
		{
			name: "committed",
			raw:  fmt.Sprintf(`{"tag":"Committed","headId":"h","party":{"vkey":"a"},"utxo":%s,"seq":5}`, utxo),
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.Committed)
				require.Equal(t, "a", e.Party.VKey)
				require.Equal(t, uint64(42), e.UTxOs[0].Value.Coin())
			},
		},
		{
			name: "snapshot_confirmed_with_ids",
			raw:  fmt.Sprintf(`{"tag":"SnapshotConfirmed","headId":"h","snapshot":{"snapshotNumber":7,"utxo":%s,"confirmedTransactions":["t1","t2"]},"seq":6}`, utxo),
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.SnapshotConfirmed)
				require.Equal(t, uint64(7), e.SnapshotNumber)
				require.Equal(t, []string{"t1", "t2"}, e.ConfirmedTransactions)
				require.Len(t, e.UTxOs, 1)
			},
		},
		{
			name: "snapshot_confirmed_with_transactions",
			raw:  `{"tag":"SnapshotConfirmed","snapshot":{"headId":"h","number":8,"utxo":{},"confirmed":[{"txId":"t3","cborHex":"00"}]}}`,
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.SnapshotConfirmed)
				require.Equal(t, "h", e.HeadID)
				require.Equal(t, uint64(8), e.SnapshotNumber)
				require.Equal(t, []string{"t3"}, e.ConfirmedTransactions)
			},
		},
		{
			name: "tx_valid_with_id",
			raw:  `{"tag":"TxValid","headId":"h","transactionId":"abc","seq":9}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, hydra.TxValid{HeadID: "h", TxID: "abc", Seq: 9}, event)
			},
		},
		{
			name: "tx_valid_with_transaction",
			raw:  `{"tag":"TxValid","headId":"h","transaction":{"txId":"def"}}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, "def", event.(hydra.TxValid).TxID)
			},
		},
		{
			name: "tx_invalid",
			raw:  `{"tag":"TxInvalid","headId":"h","transaction":{"txId":"abc"},"validationError":{"reason":"bad"}}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, hydra.TxInvalid{HeadID: "h", TxID: "abc", Reason: "bad"}, event)
			},
		},
		{
			name: "command_failed",
			raw:  `{"tag":"CommandFailed","clientInput":{"tag":"Close"},"seq":10}`,
			check: func(t *testing.T, event hydra.Event) {
				e := event.(hydra.CommandFailed)
				require.JSONEq(t, `{"tag":"Close"}`, string(e.ClientInput))
			},
		},
		{
			name: "invalid_input",
			raw:  `{"tag":"InvalidInput","reason":"parse error","input":"{"}`,
			check: func(t *testing.T, event hydra.Event) {
				require.Equal(t, hydra.InvalidInput{Reason: "parse error", Input: "{"}, event)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := hydra.DecodeEvent([]byte(tt.raw))
			require.NoError(t, err)
			tt.check(t, event)
		})
	}
}

func TestFailingDecodeEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not_json", raw: `{"tag":`},
		{name: "snapshot_without_body", raw: `{"tag":"SnapshotConfirmed"}`},
		{name: "tx_valid_without_id", raw: `{"tag":"TxValid","headId":"h"}`},
		{name: "head_is_open_with_bad_utxo", raw: `{"tag":"HeadIsOpen","utxo":{"x#0":{}}}`},
		{name: "wrong_field_type", raw: `{"tag":"HeadIsOpen","seq":"three"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := hydra.DecodeEvent([]byte(tt.raw))
			require.ErrorIs(t, err, hydra.ErrDecode)
			require.Nil(t, event)
		})
	}
}

func TestUnimplementedKeepsPayload(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"tag":"DecommitRequested","utxoToDecommit":{}}`)
	event, err := hydra.DecodeEvent(raw)
	require.NoError(t, err)
	require.Equal(t, hydra.Unimplemented{Type: "DecommitRequested", Raw: raw}, event)
}
