// Package hdkey handles raw 78-byte BIP32 extended public key records:
// parsing, serialization, and non-hardened child derivation. It works on the
// binary record layout directly rather than the base58check text form, since
// that is how the partially-signed transaction format embeds keys.
package hdkey

import (
	"encoding/binary"
	"fmt"

	base58 "github.com/bsv-blockchain/go-sdk/compat/base58"
	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

const (
	// RecordSize is the serialized extended key length:
	// version(4) · depth(1) · parentFP(4) · childIndex(4) · chainCode(32) ·
	// pubKey(33).
	RecordSize = 78

	// HardenedOffset is the first hardened child index.
	HardenedOffset = 0x80000000
)

// ExtendedPublicKey is a parsed 78-byte extended public key record. Values
// are immutable; Child returns a fresh key.
type ExtendedPublicKey struct {
	raw [RecordSize]byte
}

// Parse decodes a raw 78-byte extended public key record. The key bytes must
// be a valid compressed curve point.
func Parse(data []byte) (*ExtendedPublicKey, error) {
	if len(data) != RecordSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidLength, len(data), RecordSize)
	}
	k := &ExtendedPublicKey{}
	copy(k.raw[:], data)

	keyBytes := k.raw[45:78]
	if keyBytes[0] != 0x02 && keyBytes[0] != 0x03 {
		return nil, fmt.Errorf("%w: prefix 0x%02x", ErrInvalidPublicKey, keyBytes[0])
	}
	if _, err := ec.PublicKeyFromBytes(keyBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return k, nil
}

// Serialize returns the raw 78-byte record.
func (k *ExtendedPublicKey) Serialize() []byte {
	out := make([]byte, RecordSize)
	copy(out, k.raw[:])
	return out
}

// Version returns the 4-byte version prefix.
func (k *ExtendedPublicKey) Version() []byte {
	out := make([]byte, 4)
	copy(out, k.raw[0:4])
	return out
}

// Depth returns the key's depth below the master key.
func (k *ExtendedPublicKey) Depth() byte {
	return k.raw[4]
}

// ParentFingerprint returns the 4-byte fingerprint of the parent key.
func (k *ExtendedPublicKey) ParentFingerprint() []byte {
	out := make([]byte, 4)
	copy(out, k.raw[5:9])
	return out
}

// ChildIndex returns the index this key was derived at.
func (k *ExtendedPublicKey) ChildIndex() uint32 {
	return binary.BigEndian.Uint32(k.raw[9:13])
}

// ChainCode returns the 32-byte chain code.
func (k *ExtendedPublicKey) ChainCode() []byte {
	out := make([]byte, 32)
	copy(out, k.raw[13:45])
	return out
}

// PublicKey returns the compressed 33-byte public key.
func (k *ExtendedPublicKey) PublicKey() []byte {
	out := make([]byte, 33)
	copy(out, k.raw[45:78])
	return out
}

// PublicKeyHash returns the HASH160 of the compressed public key.
func (k *ExtendedPublicKey) PublicKeyHash() []byte {
	return bsvhash.Hash160(k.raw[45:78])
}

// Fingerprint returns the first four bytes of the key's HASH160.
func (k *ExtendedPublicKey) Fingerprint() []byte {
	return k.PublicKeyHash()[:4]
}

// Child derives the non-hardened child key at index per BIP32 CKDpub,
// delegating the HMAC and point arithmetic to the go-sdk bip32 package.
// Hardened indices fail, and an unusable IL is ErrInvalidChild.
func (k *ExtendedPublicKey) Child(index uint32) (*ExtendedPublicKey, error) {
	if index >= HardenedOffset {
		return nil, fmt.Errorf("%w: index %d", ErrHardenedChild, index)
	}

	parent := bip32.NewExtendedKey(k.Version(), k.PublicKey(), k.ChainCode(),
		k.ParentFingerprint(), k.Depth(), k.ChildIndex(), false)
	child, err := parent.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChild, err)
	}

	// The base58 payload is version · depth · parentFP · childNum ·
	// chainCode · key, which is exactly the raw record layout, plus a 4-byte
	// checksum.
	decoded, err := base58.Decode(child.String())
	if err != nil || len(decoded) != RecordSize+4 {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidChild, index)
	}
	return Parse(decoded[:RecordSize])
}

// Derive walks a whole non-hardened path from this key.
func (k *ExtendedPublicKey) Derive(path []uint32) (*ExtendedPublicKey, error) {
	current := k
	for i, index := range path {
		child, err := current.Child(index)
		if err != nil {
			return nil, fmt.Errorf("path step %d: %w", i, err)
		}
		current = child
	}
	return current, nil
}
