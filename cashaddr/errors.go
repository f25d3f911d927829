package cashaddr

import "errors"

var (
	// ErrInvalidChecksum indicates the address checksum does not verify.
	ErrInvalidChecksum = errors.New("cashaddr: invalid checksum")

	// ErrMixedCase indicates an address mixing upper- and lowercase letters.
	ErrMixedCase = errors.New("cashaddr: mixed case")

	// ErrInvalidCharacter indicates a character outside the base32 alphabet.
	ErrInvalidCharacter = errors.New("cashaddr: invalid character")

	// ErrInvalidLength indicates a hash or payload of unsupported size.
	ErrInvalidLength = errors.New("cashaddr: invalid length")

	// ErrUnknownVersion indicates an unrecognized version byte.
	ErrUnknownVersion = errors.New("cashaddr: unknown version byte")

	// ErrUnknownPrefix indicates an address without a prefix that matches no
	// known network.
	ErrUnknownPrefix = errors.New("cashaddr: unknown prefix")
)
