package addrscript

import "errors"

var (
	// ErrUnsupportedAddressType indicates a hash kind with no known script shape.
	ErrUnsupportedAddressType = errors.New("addrscript: unsupported address type")

	// ErrInvalidHashLength indicates a hash payload of the wrong size for its kind.
	ErrInvalidHashLength = errors.New("addrscript: invalid hash length")
)
