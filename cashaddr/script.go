package cashaddr

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/cashtxorg/libcashtx-go/addrscript"
)

// EncodeLockingScript renders a standard-shape locking script as an address
// under the given network prefix. Non-standard scripts have no address form.
func EncodeLockingScript(prefix string, s *script.Script) (string, error) {
	kind, hash := addrscript.Hash(s)
	switch kind {
	case addrscript.KindP2PKH:
		return Encode(prefix, TypeP2PKH, hash)
	case addrscript.KindP2SH20, addrscript.KindP2SH32:
		return Encode(prefix, TypeP2SH, hash)
	default:
		return "", fmt.Errorf("%w: script has no address form", addrscript.ErrUnsupportedAddressType)
	}
}

// DecodeLockingScript parses an address and constructs the locking script it
// stands for. For script-hash payloads the hash length selects the 20- or
// 32-byte script shape.
func DecodeLockingScript(addr string) (string, *script.Script, error) {
	prefix, typ, hash, err := Decode(addr)
	if err != nil {
		return "", nil, err
	}

	var kind addrscript.Kind
	switch {
	case typ == TypeP2PKH && len(hash) == 20:
		kind = addrscript.KindP2PKH
	case typ == TypeP2SH && len(hash) == 20:
		kind = addrscript.KindP2SH20
	case typ == TypeP2SH && len(hash) == 32:
		kind = addrscript.KindP2SH32
	default:
		return "", nil, fmt.Errorf("%w: type %d with %d-byte hash",
			addrscript.ErrUnsupportedAddressType, typ, len(hash))
	}

	s, err := addrscript.NewLockingScript(kind, hash)
	if err != nil {
		return "", nil, err
	}
	return prefix, s, nil
}
