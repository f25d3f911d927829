package hdkey

import "github.com/cashtxorg/libcashtx-go/pst"

// Context is the production pst.KeyContext: it parses raw extended key
// records and derives children with real curve arithmetic. The zero value is
// ready to use.
type Context struct{}

// ParseExtendedPublicKey implements pst.KeyContext.
func (Context) ParseExtendedPublicKey(data []byte) (pst.ExtendedPublicKey, error) {
	k, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return derivableKey{k}, nil
}

// derivableKey adapts *ExtendedPublicKey to pst.ExtendedPublicKey, whose
// Child returns the interface type.
type derivableKey struct {
	k *ExtendedPublicKey
}

func (d derivableKey) Child(index uint32) (pst.ExtendedPublicKey, error) {
	child, err := d.k.Child(index)
	if err != nil {
		return nil, err
	}
	return derivableKey{child}, nil
}

func (d derivableKey) PublicKey() []byte {
	return d.k.PublicKey()
}

func (d derivableKey) PublicKeyHash() []byte {
	return d.k.PublicKeyHash()
}
