package hdkey

import "errors"

var (
	// ErrInvalidLength indicates a record that is not exactly 78 bytes.
	ErrInvalidLength = errors.New("hdkey: invalid extended key length")

	// ErrInvalidPublicKey indicates key bytes that do not decode to a curve point.
	ErrInvalidPublicKey = errors.New("hdkey: invalid public key")

	// ErrHardenedChild indicates an attempt to derive a hardened child from a
	// public key, which is impossible without the private key.
	ErrHardenedChild = errors.New("hdkey: cannot derive hardened child from public key")

	// ErrInvalidChild indicates a child index whose derivation falls outside
	// the curve order. The BIP32 rule is to skip such an index.
	ErrInvalidChild = errors.New("hdkey: invalid child key")
)
