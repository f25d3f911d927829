package pst

import (
	"bytes"
	"math"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategory(seed byte) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = seed
	}
	return h
}

func TestTokenDataRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token TokenData
	}{
		{"fungible only", TokenData{Category: testCategory(0x01), Amount: 1000}},
		{"max amount", TokenData{Category: testCategory(0x02), Amount: math.MaxInt64}},
		{"plain nft", TokenData{Category: testCategory(0x03), HasNFT: true}},
		{"mutable nft", TokenData{Category: testCategory(0x04), HasNFT: true, Capability: CapabilityMutable}},
		{"minting nft", TokenData{Category: testCategory(0x05), HasNFT: true, Capability: CapabilityMinting}},
		{"nft with commitment", TokenData{
			Category: testCategory(0x06), HasNFT: true,
			Commitment: []byte{0xde, 0xad, 0xbe, 0xef},
		}},
		{"nft and amount", TokenData{
			Category: testCategory(0x07), HasNFT: true,
			Capability: CapabilityMinting, Commitment: []byte{0x01}, Amount: 42,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.token.encodedBytes()
			require.NoError(t, err)

			got, err := decodeTokenData(bytes.NewReader(encoded))
			require.NoError(t, err)
			assert.Equal(t, &tt.token, got)

			again, err := got.encodedBytes()
			require.NoError(t, err)
			assert.Equal(t, encoded, again)
		})
	}
}

func TestTokenDataValidate(t *testing.T) {
	tests := []struct {
		name  string
		token TokenData
	}{
		{"empty", TokenData{Category: testCategory(0x01)}},
		{"negative amount", TokenData{Category: testCategory(0x01), Amount: -1}},
		{"capability without nft", TokenData{Category: testCategory(0x01), Amount: 1, Capability: CapabilityMutable}},
		{"commitment without nft", TokenData{Category: testCategory(0x01), Amount: 1, Commitment: []byte{0x01}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.token.encodedBytes()
			assert.ErrorIs(t, err, ErrMalformedTokenPayload)
		})
	}
}

// rawToken assembles token wire bytes by hand so the decoder can be probed
// with combinations the encoder refuses to produce.
func rawToken(bitfield byte, extra ...byte) []byte {
	category := testCategory(0xaa)
	out := make([]byte, 0, 33+len(extra))
	out = append(out, category[:]...)
	out = append(out, bitfield)
	return append(out, extra...)
}

func TestDecodeTokenDataRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"reserved bit set", rawToken(0x80|tokenHasAmount, 0x01)},
		{"no nft and no amount", rawToken(0x00)},
		{"capability without nft", rawToken(tokenHasAmount|byte(CapabilityMutable), 0x01)},
		{"unknown capability", rawToken(tokenHasNFT | 0x03)},
		{"commitment without nft", rawToken(tokenHasAmount|tokenHasCommitment, 0x01, 0xab, 0x01)},
		{"empty commitment with bit set", rawToken(tokenHasNFT|tokenHasCommitment, 0x00)},
		{"zero amount with bit set", rawToken(tokenHasAmount, 0x00)},
		{"amount above int64", rawToken(tokenHasAmount,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)},
		{"truncated category", rawToken(0x00)[:16]},
		{"missing amount", rawToken(tokenHasAmount)},
		{"truncated commitment", rawToken(tokenHasNFT|tokenHasCommitment, 0x05, 0x01)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTokenData(bytes.NewReader(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestTokenBitfield(t *testing.T) {
	tok := TokenData{Category: testCategory(0x01), HasNFT: true, Capability: CapabilityMinting, Amount: 5}
	assert.Equal(t, byte(tokenHasAmount|tokenHasNFT)|byte(CapabilityMinting), tok.bitfield())

	tok = TokenData{Category: testCategory(0x01), HasNFT: true, Commitment: []byte{0x01}}
	assert.Equal(t, byte(tokenHasNFT|tokenHasCommitment), tok.bitfield())
}
