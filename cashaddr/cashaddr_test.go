package cashaddr

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test vectors for the 20-byte hash
// F5BF48B397DAE70BE82B3CCA4793F8EB2B6CDAC9.
const (
	knownHashHex   = "f5bf48b397dae70be82b3cca4793f8eb2b6cdac9"
	knownP2PKHAddr = "bitcoincash:qr6m7j9njldwwzlg9v7v53unlr4jkmx6eylep8ekg2"
	knownP2SHAddr  = "bitcoincash:pr6m7j9njldwwzlg9v7v53unlr4jkmx6ey65nvtks5"
)

func knownHash(t *testing.T) []byte {
	t.Helper()
	h, err := hex.DecodeString(knownHashHex)
	require.NoError(t, err)
	return h
}

func TestEncodeKnownVectors(t *testing.T) {
	hash := knownHash(t)

	addr, err := Encode(MainnetPrefix, TypeP2PKH, hash)
	require.NoError(t, err)
	assert.Equal(t, knownP2PKHAddr, addr)

	addr, err = Encode(MainnetPrefix, TypeP2SH, hash)
	require.NoError(t, err)
	assert.Equal(t, knownP2SHAddr, addr)
}

func TestDecodeKnownVectors(t *testing.T) {
	prefix, typ, hash, err := Decode(knownP2PKHAddr)
	require.NoError(t, err)
	assert.Equal(t, MainnetPrefix, prefix)
	assert.Equal(t, TypeP2PKH, typ)
	assert.Equal(t, knownHash(t), hash)

	prefix, typ, hash, err = Decode(knownP2SHAddr)
	require.NoError(t, err)
	assert.Equal(t, MainnetPrefix, prefix)
	assert.Equal(t, TypeP2SH, typ)
	assert.Equal(t, knownHash(t), hash)
}

func TestDecodeWithoutPrefix(t *testing.T) {
	body := strings.TrimPrefix(knownP2PKHAddr, "bitcoincash:")
	prefix, typ, hash, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, MainnetPrefix, prefix)
	assert.Equal(t, TypeP2PKH, typ)
	assert.Equal(t, knownHash(t), hash)
}

func TestDecodeCase(t *testing.T) {
	// Whole-string uppercase is valid.
	_, _, hash, err := Decode(strings.ToUpper(knownP2PKHAddr))
	require.NoError(t, err)
	assert.Equal(t, knownHash(t), hash)

	// Mixed case is not.
	mixed := knownP2PKHAddr[:len(knownP2PKHAddr)-1] +
		strings.ToUpper(knownP2PKHAddr[len(knownP2PKHAddr)-1:])
	_, _, _, err = Decode(mixed)
	assert.ErrorIs(t, err, ErrMixedCase)
}

func TestDecodeRejects(t *testing.T) {
	corrupt := []byte(knownP2PKHAddr)
	// Flip one payload character to another charset character.
	if corrupt[20] == 'q' {
		corrupt[20] = 'p'
	} else {
		corrupt[20] = 'q'
	}

	tests := []struct {
		name string
		addr string
		want error
	}{
		{"corrupted payload", string(corrupt), ErrInvalidChecksum},
		{"invalid character", "bitcoincash:qr6m7j9njldwwzlg9v7v53unlr4jkmx6eylep8ekb2", ErrInvalidCharacter},
		{"empty body", "bitcoincash:", ErrInvalidLength},
		{"too short", "bitcoincash:qqqq", ErrInvalidLength},
		{"unknown prefix alone", "nonsense", ErrUnknownPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Decode(tt.addr)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// A valid address under an unexpected prefix decodes when the prefix is
	// explicit, since the checksum covers it.
	addr, err := Encode("bchtest", TypeP2PKH, knownHash(t))
	require.NoError(t, err)
	prefix, _, _, err := Decode(addr)
	require.NoError(t, err)
	assert.Equal(t, TestnetPrefix, prefix)
}

func TestRoundTripAllHashSizes(t *testing.T) {
	for _, size := range hashSizeCodes {
		hash := bytes.Repeat([]byte{0x3c}, size)
		for _, typ := range []AddressType{TypeP2PKH, TypeP2SH} {
			addr, err := Encode(MainnetPrefix, typ, hash)
			require.NoError(t, err)

			gotPrefix, gotType, gotHash, err := Decode(addr)
			require.NoError(t, err, "size %d", size)
			assert.Equal(t, MainnetPrefix, gotPrefix)
			assert.Equal(t, typ, gotType)
			assert.Equal(t, hash, gotHash)
		}
	}
}

func TestEncodeRejectsOddHashSize(t *testing.T) {
	_, err := Encode(MainnetPrefix, TypeP2PKH, bytes.Repeat([]byte{0x01}, 21))
	assert.ErrorIs(t, err, ErrInvalidLength)
}
