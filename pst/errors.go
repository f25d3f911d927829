package pst

import "errors"

var (
	// ErrTruncatedInput indicates the byte stream ended in the middle of a field.
	ErrTruncatedInput = errors.New("pst: truncated input")

	// ErrUnknownExtensionVersion indicates the extended-value sentinel carries an
	// unrecognized version nibble.
	ErrUnknownExtensionVersion = errors.New("pst: unknown extension version")

	// ErrMalformedTokenPayload indicates a token announcement with the wrong
	// prefix opcode, inconsistent bitfield, or trailing bytes after the payload.
	ErrMalformedTokenPayload = errors.New("pst: malformed token payload")

	// ErrUnrecoverable indicates a placeholder script sig that does not match any
	// recognized template, so no locking script can be recovered from it. This is
	// a legitimate state for an input whose key has not been derived yet, not a
	// decode failure.
	ErrUnrecoverable = errors.New("pst: script sig not recoverable")

	// ErrInvalidScriptStructure indicates an opcode or push-length mismatch.
	ErrInvalidScriptStructure = errors.New("pst: invalid script structure")

	// ErrNonMinimalVarInt indicates a compact-size integer encoded in more bytes
	// than necessary.
	ErrNonMinimalVarInt = errors.New("pst: non-minimal varint")

	// ErrTooLarge indicates a declared length above the maximum payload size.
	ErrTooLarge = errors.New("pst: declared length exceeds payload limit")

	// ErrTrailingData indicates extra bytes after a complete transaction.
	ErrTrailingData = errors.New("pst: trailing data after transaction")

	// ErrValueOverflow indicates a satoshi value at or above the extension
	// sentinel threshold, which the wire format cannot represent without token
	// data attached.
	ErrValueOverflow = errors.New("pst: satoshi value not representable")

	// ErrIncomplete indicates a transaction that still contains unsigned inputs.
	ErrIncomplete = errors.New("pst: transaction has unsigned inputs")
)
