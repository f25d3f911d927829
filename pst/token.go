package pst

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// Capability is the permission class of an NFT: what its holder may do with
// the token beyond transferring it.
type Capability byte

const (
	// CapabilityNone marks an immutable NFT.
	CapabilityNone Capability = 0x00
	// CapabilityMutable allows the holder to change the NFT commitment.
	CapabilityMutable Capability = 0x01
	// CapabilityMinting allows the holder to mint new NFTs of the category.
	CapabilityMinting Capability = 0x02
)

// Token bitfield layout: the high nibble holds structure flags, the low
// nibble holds the NFT capability.
const (
	tokenHasAmount      = 0x10
	tokenHasNFT         = 0x20
	tokenHasCommitment  = 0x40
	tokenReservedBit    = 0x80
	tokenCapabilityMask = 0x0f
)

// tokenPrefixOp is the reserved opcode announcing serialized token data at the
// front of a wrapped locking script (PREFIX_TOKEN).
const tokenPrefixOp = 0xef

// TokenData is the optional CashToken payload attached to an output, or to the
// remembered previous output of an unsigned input.
//
// A zero Amount means no fungible amount is present; an empty Commitment means
// no commitment is present. The wire bitfield is always recomputed from these
// fields on encode, never stored.
type TokenData struct {
	// Category is the 32-byte token category id.
	Category chainhash.Hash
	// Amount is the fungible token amount. Zero when absent; never negative.
	Amount int64
	// HasNFT reports whether the payload carries an NFT.
	HasNFT bool
	// Capability is the NFT capability class. Must be CapabilityNone unless
	// HasNFT is set.
	Capability Capability
	// Commitment is the NFT commitment. Empty when absent; only valid with an
	// NFT present.
	Commitment []byte
}

// HasAmount reports whether a fungible amount is present.
func (t *TokenData) HasAmount() bool {
	return t.Amount != 0
}

// HasCommitment reports whether an NFT commitment is present.
func (t *TokenData) HasCommitment() bool {
	return len(t.Commitment) > 0
}

// bitfield recomputes the wire bitfield from the payload fields.
func (t *TokenData) bitfield() byte {
	var b byte
	if t.HasAmount() {
		b |= tokenHasAmount
	}
	if t.HasNFT {
		b |= tokenHasNFT
	}
	if t.HasCommitment() {
		b |= tokenHasCommitment
	}
	return b | byte(t.Capability)
}

// validate checks the structural invariants shared by encode and decode.
func (t *TokenData) validate() error {
	if t.Capability > CapabilityMinting {
		return fmt.Errorf("%w: capability 0x%02x", ErrMalformedTokenPayload, byte(t.Capability))
	}
	if t.Capability != CapabilityNone && !t.HasNFT {
		return fmt.Errorf("%w: capability without NFT", ErrMalformedTokenPayload)
	}
	if t.HasCommitment() && !t.HasNFT {
		return fmt.Errorf("%w: commitment without NFT", ErrMalformedTokenPayload)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrMalformedTokenPayload)
	}
	if !t.HasNFT && !t.HasAmount() {
		return fmt.Errorf("%w: neither NFT nor amount present", ErrMalformedTokenPayload)
	}
	return nil
}

// encode writes the payload as category(32) · bitfield(1) · commitment ·
// amount, the last two present only when their structure bits are set.
func (t *TokenData) encode(w io.Writer) error {
	if err := t.validate(); err != nil {
		return err
	}
	if _, err := w.Write(t.Category[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{t.bitfield()}); err != nil {
		return err
	}
	if t.HasCommitment() {
		if err := writeVarBytes(w, t.Commitment); err != nil {
			return err
		}
	}
	if t.HasAmount() {
		if err := writeVarInt(w, uint64(t.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TokenData) encodedBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeTokenData reads one token payload. The stored bitfield must agree
// exactly with the fields that follow; disagreement is a decode error, not a
// condition to repair.
func decodeTokenData(r io.Reader) (*TokenData, error) {
	t := &TokenData{}
	if _, err := io.ReadFull(r, t.Category[:]); err != nil {
		return nil, mapReadErr(err)
	}
	bitfield, err := readByte(r)
	if err != nil {
		return nil, err
	}

	if bitfield&tokenReservedBit != 0 {
		return nil, fmt.Errorf("%w: reserved bit set in bitfield 0x%02x", ErrMalformedTokenPayload, bitfield)
	}
	t.HasNFT = bitfield&tokenHasNFT != 0
	t.Capability = Capability(bitfield & tokenCapabilityMask)

	if bitfield&tokenHasCommitment != 0 {
		commitment, err := readVarBytes(r)
		if err != nil {
			return nil, err
		}
		if len(commitment) == 0 {
			return nil, fmt.Errorf("%w: empty commitment with length bit set", ErrMalformedTokenPayload)
		}
		t.Commitment = commitment
	}
	if bitfield&tokenHasAmount != 0 {
		amount, err := readVarInt(r)
		if err != nil {
			return nil, err
		}
		if amount == 0 || amount > math.MaxInt64 {
			return nil, fmt.Errorf("%w: amount %d out of range", ErrMalformedTokenPayload, amount)
		}
		t.Amount = int64(amount)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	// The recomputed bitfield must reproduce the stored one exactly.
	if t.bitfield() != bitfield {
		return nil, fmt.Errorf("%w: bitfield 0x%02x disagrees with fields", ErrMalformedTokenPayload, bitfield)
	}
	return t, nil
}
