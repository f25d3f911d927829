package pst

// ExtendedPublicKey is a derivable public key handle supplied by a KeyContext.
// The codec walks derivation paths through it without touching curve
// arithmetic itself.
type ExtendedPublicKey interface {
	// Child derives the non-hardened child at index. Hardened indices fail.
	Child(index uint32) (ExtendedPublicKey, error)
	// PublicKey returns the compressed 33-byte public key.
	PublicKey() []byte
	// PublicKeyHash returns the HASH160 of the compressed public key.
	PublicKeyHash() []byte
}

// KeyContext supplies the elliptic-curve capability needed to recover a
// locking script from a key-bearing placeholder. Callers pass it explicitly
// into ScriptPubKey; the codec holds no ambient derivation state.
type KeyContext interface {
	// ParseExtendedPublicKey decodes a raw 78-byte BIP32 extended public key
	// record.
	ParseExtendedPublicKey(data []byte) (ExtendedPublicKey, error)
}
