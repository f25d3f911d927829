// Package cashaddr implements the CashAddr address format: base32 text with a
// 40-bit BCH checksum and a network prefix, carrying a script-hash payload.
// The byte-level script shapes themselves live in addrscript; this package is
// only the text layer and the bridge between the two.
package cashaddr

import (
	"fmt"
	"strings"
)

// Network prefixes, matching the networks the wallet format targets.
const (
	MainnetPrefix = "bitcoincash"
	TestnetPrefix = "bchtest"
	RegtestPrefix = "bchreg"
)

// AddressType is the payload type encoded in the version byte.
type AddressType byte

const (
	// TypeP2PKH marks a public-key-hash payload.
	TypeP2PKH AddressType = 0
	// TypeP2SH marks a script-hash payload.
	TypeP2SH AddressType = 1
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var charsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range charset {
		rev[c] = int8(i)
	}
	return rev
}()

// hashSizeCodes maps the version byte's low three bits to the hash size.
var hashSizeCodes = [8]int{20, 24, 28, 32, 40, 48, 56, 64}

// polyMod is the BCH checksum function over 5-bit groups. A well-formed
// address has polyMod(expand(prefix) ++ payload ++ checksum) == 0.
func polyMod(v []byte) uint64 {
	c := uint64(1)
	for _, d := range v {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

// expandPrefix maps the prefix to its checksum contribution: the low five
// bits of each character, then a zero separator.
func expandPrefix(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

// convertBits regroups data between bit widths. Encoding pads the final
// group; decoding rejects both leftover nonzero bits and excess padding.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc, bits uint
	maxv := uint(1<<toBits) - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, b := range data {
		if uint(b)>>fromBits != 0 {
			return nil, fmt.Errorf("%w: value %d exceeds %d bits", ErrInvalidCharacter, b, fromBits)
		}
		acc = acc<<fromBits | uint(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, fmt.Errorf("%w: invalid padding", ErrInvalidLength)
	}
	return out, nil
}

func sizeCode(hashLen int) (byte, bool) {
	for code, size := range hashSizeCodes {
		if size == hashLen {
			return byte(code), true
		}
	}
	return 0, false
}

// Encode builds the canonical lowercase address for a hash payload.
func Encode(prefix string, typ AddressType, hash []byte) (string, error) {
	code, ok := sizeCode(len(hash))
	if !ok {
		return "", fmt.Errorf("%w: %d-byte hash", ErrInvalidLength, len(hash))
	}
	if typ > 0x0f {
		return "", fmt.Errorf("%w: type %d", ErrUnknownVersion, typ)
	}

	version := byte(typ)<<3 | code
	payload, err := convertBits(append([]byte{version}, hash...), 8, 5, true)
	if err != nil {
		return "", err
	}

	checksumInput := expandPrefix(prefix)
	checksumInput = append(checksumInput, payload...)
	checksumInput = append(checksumInput, make([]byte, 8)...)
	mod := polyMod(checksumInput)

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range payload {
		sb.WriteByte(charset[d])
	}
	for i := 0; i < 8; i++ {
		sb.WriteByte(charset[mod>>(5*(7-i))&0x1f])
	}
	return sb.String(), nil
}

// Decode parses an address into its prefix, type, and hash payload. Addresses
// without an explicit prefix are tried against the known network prefixes.
// Mixed-case input is rejected; uppercase input is accepted as a whole.
func Decode(addr string) (string, AddressType, []byte, error) {
	hasUpper := strings.ContainsAny(addr, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasLower := strings.ContainsAny(addr, "abcdefghijklmnopqrstuvwxyz")
	if hasUpper && hasLower {
		return "", 0, nil, ErrMixedCase
	}
	addr = strings.ToLower(addr)

	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return decodeWithPrefix(addr[:i], addr[i+1:])
	}
	for _, prefix := range []string{MainnetPrefix, TestnetPrefix, RegtestPrefix} {
		if prefix, typ, hash, err := decodeWithPrefix(prefix, addr); err == nil {
			return prefix, typ, hash, nil
		}
	}
	return "", 0, nil, ErrUnknownPrefix
}

func decodeWithPrefix(prefix, body string) (string, AddressType, []byte, error) {
	// 8 checksum groups plus at least one payload group.
	if len(body) < 9 || prefix == "" {
		return "", 0, nil, fmt.Errorf("%w: address too short", ErrInvalidLength)
	}

	data := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || charsetRev[c] < 0 {
			return "", 0, nil, fmt.Errorf("%w: %q", ErrInvalidCharacter, c)
		}
		data[i] = byte(charsetRev[c])
	}

	if polyMod(append(expandPrefix(prefix), data...)) != 0 {
		return "", 0, nil, ErrInvalidChecksum
	}

	payload, err := convertBits(data[:len(data)-8], 5, 8, false)
	if err != nil {
		return "", 0, nil, err
	}
	if len(payload) == 0 {
		return "", 0, nil, fmt.Errorf("%w: empty payload", ErrInvalidLength)
	}
	version := payload[0]
	if version&0x80 != 0 {
		return "", 0, nil, fmt.Errorf("%w: reserved bit set", ErrUnknownVersion)
	}
	hash := payload[1:]
	if len(hash) != hashSizeCodes[version&0x07] {
		return "", 0, nil, fmt.Errorf("%w: %d-byte hash for size code %d",
			ErrInvalidLength, len(hash), version&0x07)
	}
	return prefix, AddressType(version >> 3), hash, nil
}
