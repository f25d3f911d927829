// Package addrscript recognizes the standard locking-script shapes used by
// Bitcoin Cash addresses (P2PKH, P2SH with 20-byte hash, P2SH with 32-byte
// hash) and constructs them from decoded address payloads. Pure byte-level
// classification; the checksummed address text layer lives in cashaddr.
package addrscript

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Kind is the recognized shape of a locking script.
type Kind int

const (
	// KindUnknown is any script matching none of the standard templates.
	KindUnknown Kind = iota
	// KindP2PKH is OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG.
	KindP2PKH
	// KindP2SH20 is OP_HASH160 <20> OP_EQUAL.
	KindP2SH20
	// KindP2SH32 is OP_HASH256 <32> OP_EQUAL.
	KindP2SH32
)

// String returns the conventional name of the script shape.
func (k Kind) String() string {
	switch k {
	case KindP2PKH:
		return "p2pkh"
	case KindP2SH20:
		return "p2sh20"
	case KindP2SH32:
		return "p2sh32"
	default:
		return "unknown"
	}
}

// Exact encoded sizes of the recognized templates.
const (
	p2pkhScriptLen  = 25
	p2sh20ScriptLen = 23
	p2sh32ScriptLen = 35

	hash20Len = 20
	hash32Len = 32
)

// IsP2PKH reports whether the script is exactly the pay-to-public-key-hash
// template.
func IsP2PKH(s *script.Script) bool {
	if s == nil {
		return false
	}
	b := s.Bytes()
	return len(b) == p2pkhScriptLen &&
		b[0] == script.OpDUP &&
		b[1] == script.OpHASH160 &&
		b[2] == script.OpDATA20 &&
		b[23] == script.OpEQUALVERIFY &&
		b[24] == script.OpCHECKSIG
}

// IsP2SH20 reports whether the script is exactly the 20-byte-hash
// pay-to-script-hash template.
func IsP2SH20(s *script.Script) bool {
	if s == nil {
		return false
	}
	b := s.Bytes()
	return len(b) == p2sh20ScriptLen &&
		b[0] == script.OpHASH160 &&
		b[1] == script.OpDATA20 &&
		b[22] == script.OpEQUAL
}

// IsP2SH32 reports whether the script is exactly the 32-byte-hash
// pay-to-script-hash template: OP_HASH256 <32> OP_EQUAL, 35 bytes, nothing
// else.
func IsP2SH32(s *script.Script) bool {
	if s == nil {
		return false
	}
	b := s.Bytes()
	return len(b) == p2sh32ScriptLen &&
		b[0] == script.OpHASH256 &&
		b[1] == script.OpDATA32 &&
		b[34] == script.OpEQUAL
}

// Classify returns the shape of the script. Unrecognized shapes are
// KindUnknown; classification never fails.
func Classify(s *script.Script) Kind {
	switch {
	case IsP2PKH(s):
		return KindP2PKH
	case IsP2SH20(s):
		return KindP2SH20
	case IsP2SH32(s):
		return KindP2SH32
	default:
		return KindUnknown
	}
}

// Hash returns the script's shape together with the embedded hash payload.
// Unknown shapes return a nil hash.
func Hash(s *script.Script) (Kind, []byte) {
	kind := Classify(s)
	if kind == KindUnknown {
		return KindUnknown, nil
	}
	b := s.Bytes()
	switch kind {
	case KindP2PKH:
		return kind, b[3:23]
	case KindP2SH20:
		return kind, b[2:22]
	case KindP2SH32:
		return kind, b[2:34]
	default:
		return KindUnknown, nil
	}
}

// NewLockingScript constructs the locking script for a decoded address
// payload: its hash kind plus hash bytes.
func NewLockingScript(kind Kind, hash []byte) (*script.Script, error) {
	switch kind {
	case KindP2PKH:
		if len(hash) != hash20Len {
			return nil, fmt.Errorf("%w: %d bytes for p2pkh", ErrInvalidHashLength, len(hash))
		}
		b := make([]byte, 0, p2pkhScriptLen)
		b = append(b, script.OpDUP, script.OpHASH160, script.OpDATA20)
		b = append(b, hash...)
		b = append(b, script.OpEQUALVERIFY, script.OpCHECKSIG)
		return script.NewFromBytes(b), nil
	case KindP2SH20:
		if len(hash) != hash20Len {
			return nil, fmt.Errorf("%w: %d bytes for p2sh20", ErrInvalidHashLength, len(hash))
		}
		b := make([]byte, 0, p2sh20ScriptLen)
		b = append(b, script.OpHASH160, script.OpDATA20)
		b = append(b, hash...)
		b = append(b, script.OpEQUAL)
		return script.NewFromBytes(b), nil
	case KindP2SH32:
		if len(hash) != hash32Len {
			return nil, fmt.Errorf("%w: %d bytes for p2sh32", ErrInvalidHashLength, len(hash))
		}
		b := make([]byte, 0, p2sh32ScriptLen)
		b = append(b, script.OpHASH256, script.OpDATA32)
		b = append(b, hash...)
		b = append(b, script.OpEQUAL)
		return script.NewFromBytes(b), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAddressType, kind)
	}
}
