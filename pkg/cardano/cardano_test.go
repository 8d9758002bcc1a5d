package cardano_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
	"github.com/stretchr/testify/require"
)

const (
	testSeedHex = "9b2a2dd0d6d1ec7a2a7f3d7c1f1e8b9d0a4c5e6f708192a3b4c5d6e7f8091a2b"
	testTxHash  = "0000000000000000000000000000000000000000000000000000000000000001"
)

func hash28(b byte) cardano.Hash28 {
	var h cardano.Hash28
	copy(h[:], bytes.Repeat([]byte{b}, cardano.HashSize))
	return h
}

func testKey(t *testing.T) cardano.SigningKey {
	key, err := cardano.ParseSigningKey("5820" + testSeedHex)
	require.NoError(t, err)
	return key
}

func TestParseSigningKey(t *testing.T) {
	t.Parallel()

	bare, err := cardano.ParseSigningKey(testSeedHex)
	require.NoError(t, err)

	envelope := `{"type":"PaymentSigningKeyShelley_ed25519","description":"","cborHex":"5820` + testSeedHex + `"}`
	wrapped, err := cardano.ParseSigningKey(envelope)
	require.NoError(t, err)
	require.Equal(t, bare.PublicKey(), wrapped.PublicKey())
	require.Equal(t, bare.Hash(), wrapped.Hash())

	_, err = cardano.ParseSigningKey("abcd")
	require.ErrorIs(t, err, cardano.ErrInvalidSigningKey)
}

func TestAddressRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		addr   cardano.Address
		prefix string
	}{
		{
			name:   "testnet_enterprise_key",
			addr:   cardano.NewEnterpriseAddress(cardano.TestnetNetworkID, cardano.KeyCredential(hash28(1))),
			prefix: "addr_test1v",
		},
		{
			name:   "mainnet_enterprise_script",
			addr:   cardano.NewEnterpriseAddress(cardano.MainnetNetworkID, cardano.ScriptCredential(hash28(2))),
			prefix: "addr1w",
		},
		{
			name: "testnet_base_key_key",
			addr: cardano.Address{
				Type:       cardano.BaseKeyKey,
				Network:    cardano.TestnetNetworkID,
				Payment:    cardano.KeyCredential(hash28(3)),
				Delegation: bytes.Repeat([]byte{4}, cardano.HashSize),
			},
			prefix: "addr_test1q",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := tt.addr.String()
			require.True(t, strings.HasPrefix(s, tt.prefix), s)

			parsed, err := cardano.ParseAddress(s)
			require.NoError(t, err)
			require.True(t, parsed.Equal(tt.addr))
			require.Equal(t, tt.addr.Payment, parsed.Payment)
		})
	}
}

func TestFailingParseAddress(t *testing.T) {
	t.Parallel()

	_, err := cardano.ParseAddress("not-an-address")
	require.ErrorIs(t, err, cardano.ErrInvalidAddress)

	_, err = cardano.AddressFromBytes([]byte{0x60, 0x01})
	require.ErrorIs(t, err, cardano.ErrInvalidAddress)

	// enterprise address with a trailing delegation part
	raw := append([]byte{0x60}, bytes.Repeat([]byte{1}, 2*cardano.HashSize)...)
	_, err = cardano.AddressFromBytes(raw)
	require.ErrorIs(t, err, cardano.ErrInvalidAddress)
}

func TestWithPaymentHash(t *testing.T) {
	t.Parallel()

	admin := hash28(0xaa)
	other := hash28(0xbb)

	utxos := cardano.UTxOs{
		{
			Input:   cardano.Input{TxHash: testTxHash, Index: 0},
			Address: cardano.NewEnterpriseAddress(0, cardano.KeyCredential(admin)),
			Value:   cardano.NewValue(1),
		},
		{
			Input:   cardano.Input{TxHash: testTxHash, Index: 1},
			Address: cardano.NewEnterpriseAddress(0, cardano.ScriptCredential(admin)),
			Value:   cardano.NewValue(2),
		},
		{
			Input: cardano.Input{TxHash: testTxHash, Index: 2},
			Address: cardano.Address{
				Type:       cardano.BaseKeyKey,
				Payment:    cardano.KeyCredential(admin),
				Delegation: other[:],
			},
			Value: cardano.NewValue(3),
		},
		{
			Input:   cardano.Input{TxHash: testTxHash, Index: 3},
			Address: cardano.NewEnterpriseAddress(0, cardano.KeyCredential(other)),
			Value:   cardano.NewValue(4),
		},
		{
			Input:   cardano.Input{TxHash: testTxHash, Index: 4},
			Address: cardano.Address{Type: cardano.RewardKey, Payment: cardano.KeyCredential(admin)},
			Value:   cardano.NewValue(5),
		},
	}

	found := utxos.WithPaymentHash(admin)
	require.Len(t, found, 3)
	require.Equal(t, uint64(6), found.Total().Coin())
}

func TestValueArithmetic(t *testing.T) {
	t.Parallel()

	asset := strings.Repeat("ab", cardano.HashSize) + "746f6b656e"
	v := cardano.Value{cardano.Lovelace: 10, asset: 5}

	rest, err := v.Sub(cardano.Value{cardano.Lovelace: 4, asset: 5})
	require.NoError(t, err)
	require.Equal(t, cardano.Value{cardano.Lovelace: 6}, rest)

	_, err = v.Sub(cardano.NewValue(11))
	require.ErrorIs(t, err, cardano.ErrInsufficientValue)

	policy, name, err := cardano.SplitAssetID(asset)
	require.NoError(t, err)
	require.Len(t, policy, cardano.HashSize)
	require.Equal(t, "token", string(name))

	coinOnly, err := cardano.NewValue(1_000_000).MarshalCBOR()
	require.NoError(t, err)
	require.Equal(t, "1a000f4240", hex.EncodeToString(coinOnly))

	multi, err := v.MarshalCBOR()
	require.NoError(t, err)
	var decoded []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(multi, &decoded))
	require.Len(t, decoded, 2)
}

func TestNativeScriptEncoding(t *testing.T) {
	t.Parallel()

	script, err := cardano.RequireAnyOf(
		cardano.RequireSignature(hash28(1)),
		cardano.RequireSignature(hash28(2)),
	).Script()
	require.NoError(t, err)

	expected := "82028282" + "00581c" + strings.Repeat("01", 28) + "8200581c" + strings.Repeat("02", 28)
	require.Equal(t, expected, hex.EncodeToString(script.Bytes))
	require.Equal(t, cardano.Blake2b224([]byte{0}, script.Bytes), script.Hash())
}

func TestSortInputs(t *testing.T) {
	t.Parallel()

	a := cardano.Input{TxHash: strings.Repeat("00", 31) + "02", Index: 0}
	b := cardano.Input{TxHash: strings.Repeat("00", 31) + "01", Index: 1}
	c := cardano.Input{TxHash: strings.Repeat("00", 31) + "01", Index: 0}

	inputs := []cardano.Input{a, b, c}
	cardano.SortInputs(inputs)
	require.Equal(t, []cardano.Input{c, b, a}, inputs)
	require.Equal(t, 2, cardano.IndexOf(inputs, a))
	require.Equal(t, 1, cardano.IndexOf(inputs, b))
	require.Equal(t, -1, cardano.IndexOf(inputs, cardano.Input{TxHash: a.TxHash, Index: 1}))
	require.Equal(t, -1, cardano.IndexOf(inputs, cardano.Input{TxHash: strings.Repeat("00", 31) + "03"}))
}

func TestParseInput(t *testing.T) {
	t.Parallel()

	in, err := cardano.ParseInput(testTxHash + "#3")
	require.NoError(t, err)
	require.Equal(t, uint32(3), in.Index)
	require.Equal(t, testTxHash+"#3", in.String())

	for _, bad := range []string{"", "abcd#0", testTxHash, testTxHash + "#x"} {
		_, err := cardano.ParseInput(bad)
		require.ErrorIs(t, err, cardano.ErrInvalidInput)
	}
}

func TestTransactionSign(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	addr := key.Address(cardano.TestnetNetworkID)

	tx := &cardano.Transaction{
		Body: cardano.TxBody{
			Inputs: []cardano.Input{{TxHash: testTxHash, Index: 0}},
			Outputs: []cardano.Output{
				{Address: addr, Value: cardano.NewValue(10), Datum: cardano.InlineDatum(plutus.NewConstr(0))},
			},
		},
	}
	require.NoError(t, tx.Sign(key))

	h, err := tx.Body.Hash()
	require.NoError(t, err)
	require.Len(t, tx.Witnesses.VKeys, 1)
	require.True(t, cardano.Verify(key.PublicKey(), h[:], tx.Witnesses.VKeys[0].Signature))

	raw, err := tx.Bytes()
	require.NoError(t, err)

	var parts []cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(raw, &parts))
	require.Len(t, parts, 4)

	var body map[uint64]cbor.RawMessage
	require.NoError(t, cbor.Unmarshal(parts[0], &body))
	require.Contains(t, body, uint64(0))
	require.Contains(t, body, uint64(1))
	require.Contains(t, body, uint64(2))
	require.NotContains(t, body, uint64(3))
	require.Equal(t, h, cardano.Blake2b256(parts[0]))
}

func TestScriptDataHashDependsOnCostModel(t *testing.T) {
	t.Parallel()

	redeemers := []cardano.Redeemer{{
		Tag:     cardano.RedeemerSpend,
		Data:    plutus.NewConstr(1),
		ExUnits: cardano.ExUnits{Mem: 1, Steps: 2},
	}}

	h1, err := cardano.ScriptDataHash(redeemers, nil, []int64{1, 2, 3})
	require.NoError(t, err)
	h2, err := cardano.ScriptDataHash(redeemers, nil, []int64{1, 2, 4})
	require.NoError(t, err)
	require.Len(t, h1, 32)
	require.NotEqual(t, h1, h2)
}
