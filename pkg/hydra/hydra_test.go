package hydra_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
	"github.com/stretchr/testify/require"
)

func txHash(b byte) string {
	return strings.Repeat(fmt.Sprintf("%02x", b), 32)
}

func testAddress(t *testing.T) cardano.Address {
	key, err := cardano.NewSigningKey(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	return key.Address(cardano.TestnetNetworkID)
}

func TestParseConnectionInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		expected      hydra.ConnectionInfo
		websocketURL  string
		httpURL       string
		expectedError error
	}{
		{
			name:         "secure_default_port",
			url:          "wss://node-1.hydra.example.com",
			expected:     hydra.ConnectionInfo{Host: "node-1.hydra.example.com", Port: 443, Secure: true},
			websocketURL: "wss://node-1.hydra.example.com:443",
			httpURL:      "https://node-1.hydra.example.com:443",
		},
		{
			name:         "insecure_default_port",
			url:          "http://node-1.default.svc",
			expected:     hydra.ConnectionInfo{Host: "node-1.default.svc", Port: 80},
			websocketURL: "ws://node-1.default.svc:80",
			httpURL:      "http://node-1.default.svc:80",
		},
		{
			name:         "explicit_port",
			url:          "ws://127.0.0.1:4001",
			expected:     hydra.ConnectionInfo{Host: "127.0.0.1", Port: 4001},
			websocketURL: "ws://127.0.0.1:4001",
			httpURL:      "http://127.0.0.1:4001",
		},
		{
			name:         "no_scheme",
			url:          "localhost:4001",
			expected:     hydra.ConnectionInfo{Host: "localhost", Port: 4001},
			websocketURL: "ws://localhost:4001",
			httpURL:      "http://localhost:4001",
		},
		{
			name:          "unsupported_scheme",
			url:           "ftp://localhost",
			expectedError: hydra.ErrInvalidURL,
		},
		{
			name:          "bad_port",
			url:           "ws://localhost:99999",
			expectedError: hydra.ErrInvalidURL,
		},
		{
			name:          "missing_host",
			url:           "wss://",
			expectedError: hydra.ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, err := hydra.ParseConnectionInfo(tt.url)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, info)
			require.Equal(t, tt.websocketURL, info.WebsocketURL())
			require.Equal(t, tt.httpURL, info.HTTPURL())
		})
	}
}

func TestDecodeUTxOs(t *testing.T) {
	t.Parallel()

	addr := testAddress(t)
	referee := gamestate.PaymentCredential{1}
	datum := gamestate.New(referee, 2, 1)
	raw, err := datum.Encode()
	require.NoError(t, err)
	detailed, err := plutus.ToJSON(datum.ToData())
	require.NoError(t, err)
	policy := strings.Repeat("ab", cardano.HashSize)

	body := fmt.Sprintf(`{
		"%[1]s#1": {"address": "%[2]s", "value": {"lovelace": 5000000, "%[3]s": {"cafe": 2}}},
		"%[1]s#0": {"address": "%[2]s", "value": {"lovelace": 1}, "inlineDatumRaw": "%[4]x", "inlineDatum": {"int": 0}},
		"%[5]s#3": {"address": "%[2]s", "value": {"lovelace": 2}, "inlineDatum": %[6]s},
		"%[5]s#4": {"address": "%[2]s", "value": {"lovelace": 3}, "datumHash": "%[7]s",
			"referenceScript": {"scriptLanguage": "PlutusScriptLanguage PlutusScriptV2",
				"script": {"cborHex": "49480100002221200101", "description": "", "type": "PlutusScriptV2"}}}
	}`, txHash(1), addr, policy, raw, txHash(2), detailed, txHash(9))

	utxos, err := hydra.DecodeUTxOs([]byte(body))
	require.NoError(t, err)
	require.Len(t, utxos, 4)

	require.Equal(t, cardano.Input{TxHash: txHash(1), Index: 0}, utxos[0].Input)
	require.Equal(t, cardano.Input{TxHash: txHash(1), Index: 1}, utxos[1].Input)
	require.True(t, utxos[0].Address.Equal(addr))

	decoded, err := gamestate.FromData(utxos[0].Datum.Inline)
	require.NoError(t, err)
	require.Equal(t, datum, decoded)

	require.Equal(t, uint64(2), utxos[1].Value[policy+"cafe"])
	require.Equal(t, uint64(5000000), utxos[1].Value.Coin())
	require.Nil(t, utxos[1].Datum)

	decoded, err = gamestate.FromData(utxos[2].Datum.Inline)
	require.NoError(t, err)
	require.Equal(t, datum, decoded)

	require.Len(t, utxos[3].Datum.Hash, 32)
	require.NotNil(t, utxos[3].ReferenceScript)
	require.Equal(t, cardano.PlutusV2ScriptType, utxos[3].ReferenceScript.Type)
	require.Equal(t, []byte{0x48, 0x01, 0x00, 0x00, 0x22, 0x21, 0x20, 0x01, 0x01}, utxos[3].ReferenceScript.Bytes)
}

func TestUTxOsRoundTrip(t *testing.T) {
	t.Parallel()

	addr := testAddress(t)
	policy := strings.Repeat("cd", cardano.HashSize)
	script := cardano.Script{Type: cardano.PlutusV2ScriptType, Bytes: []byte{0x48, 1, 2, 3, 4, 5, 6, 7, 8}}
	utxos := cardano.UTxOs{
		{
			Input:   cardano.Input{TxHash: txHash(3), Index: 0},
			Address: addr,
			Value:   cardano.Value{cardano.Lovelace: 10, policy + "00": 1},
			Datum:   cardano.InlineDatum(plutus.NewConstr(2, plutus.NewInt(-4))),
		},
		{
			Input:           cardano.Input{TxHash: txHash(4), Index: 2},
			Address:         addr,
			Value:           cardano.NewValue(20),
			ReferenceScript: &script,
		},
	}

	buf, err := hydra.EncodeUTxOs(utxos)
	require.NoError(t, err)

	decoded, err := hydra.DecodeUTxOs(buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, utxos[0].Value, decoded[0].Value)
	require.True(t, plutus.Equal(utxos[0].Datum.Inline, decoded[0].Datum.Inline))
	require.Equal(t, script, *decoded[1].ReferenceScript)
}

func TestFailingDecodeUTxOs(t *testing.T) {
	t.Parallel()

	addr := testAddress(t).String()
	good := fmt.Sprintf(`"%s#0": {"address": "%s", "value": {"lovelace": 1}}`, txHash(1), addr)

	tests := []struct {
		name string
		body string
	}{
		{name: "not_an_object", body: `[]`},
		{name: "bad_key", body: fmt.Sprintf(`{%s, "nohash": {"address": "%s", "value": {}}}`, good, addr)},
		{name: "bad_address", body: fmt.Sprintf(`{%s, "%s#1": {"address": "addr_test1xyz", "value": {}}}`, good, txHash(2))},
		{name: "bad_lovelace", body: fmt.Sprintf(`{%s, "%s#1": {"address": "%s", "value": {"lovelace": -1}}}`, good, txHash(2), addr)},
		{name: "bad_asset", body: fmt.Sprintf(`{%s, "%s#1": {"address": "%s", "value": {"abcd": {"00": 1}}}}`, good, txHash(2), addr)},
		{name: "bad_datum", body: fmt.Sprintf(`{%s, "%s#1": {"address": "%s", "value": {}, "inlineDatumRaw": "ff"}}`, good, txHash(2), addr)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			utxos, err := hydra.DecodeUTxOs([]byte(tt.body))
			require.ErrorIs(t, err, hydra.ErrDecode)
			require.Nil(t, utxos)
		})
	}
}

func TestPlutusV2CostModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		expected      []int64
		expectedError error
	}{
		{
			name:     "array_form",
			body:     `{"costModels": {"PlutusV1": [9], "PlutusV2": [3, -1, 2]}}`,
			expected: []int64{3, -1, 2},
		},
		{
			name:     "named_form",
			body:     `{"costModels": {"PlutusV2": {"b-cpu": 2, "a-mem": 1, "c": 3}}}`,
			expected: []int64{1, 2, 3},
		},
		{
			name:          "missing",
			body:          `{"costModels": {"PlutusV1": [1]}}`,
			expectedError: hydra.ErrNoCostModel,
		},
		{
			name:          "malformed",
			body:          `{"costModels": {"PlutusV2": "nope"}}`,
			expectedError: hydra.ErrDecode,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var params hydra.ProtocolParameters
			require.NoError(t, json.Unmarshal([]byte(tt.body), &params))

			costModel, err := params.PlutusV2CostModel()
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, costModel)
		})
	}
}
