package pst

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
)

const (
	// extendedValueThreshold is the lowest 8-byte value interpreted as the
	// extension sentinel. The low nibble of the raw value carries the
	// extension version; only version 0xF is defined.
	extendedValueThreshold uint64 = 0xfffffffffffffff0

	// extendedValueSentinel is what the encoder writes for version 0xF.
	extendedValueSentinel uint64 = 0xffffffffffffffff

	// minInputSize is the smallest possible encoded input:
	// outpoint(36) + empty script(1) + sequence(4).
	minInputSize = 41
)

// Outpoint identifies the previous output an input spends.
type Outpoint struct {
	// TxID is the previous transaction's id in wire byte order.
	TxID chainhash.Hash
	// Index is the output position within that transaction.
	Index uint32
}

func (o *Outpoint) encode(w io.Writer) error {
	if _, err := w.Write(o.TxID[:]); err != nil {
		return err
	}
	return writeUint32LE(w, o.Index)
}

func decodeOutpoint(r io.Reader) (Outpoint, error) {
	var o Outpoint
	if _, err := io.ReadFull(r, o.TxID[:]); err != nil {
		return o, mapReadErr(err)
	}
	index, err := readUint32LE(r)
	if err != nil {
		return o, err
	}
	o.Index = index
	return o, nil
}

// TxInput is the input sum type: exactly *SignedInput and *UnsignedInput
// implement it. The two variants have structurally different encodings, so
// they are distinct types rather than one struct with optional fields.
type TxInput interface {
	// PreviousOutpoint returns the output this input spends.
	PreviousOutpoint() Outpoint
	// Sequence returns the input's sequence number.
	Sequence() uint32

	encode(w io.Writer) error
	isTxInput()
}

// SignedInput is an ordinary transaction input carrying real unlocking-script
// bytes.
type SignedInput struct {
	PrevOut         Outpoint
	UnlockingScript *script.Script
	SequenceNumber  uint32
}

func (in *SignedInput) isTxInput() {}

// PreviousOutpoint returns the output this input spends.
func (in *SignedInput) PreviousOutpoint() Outpoint { return in.PrevOut }

// Sequence returns the input's sequence number.
func (in *SignedInput) Sequence() uint32 { return in.SequenceNumber }

func (in *SignedInput) encode(w io.Writer) error {
	if err := in.PrevOut.encode(w); err != nil {
		return err
	}
	var scriptBytes []byte
	if in.UnlockingScript != nil {
		scriptBytes = in.UnlockingScript.Bytes()
	}
	if err := writeVarBytes(w, scriptBytes); err != nil {
		return err
	}
	return writeUint32LE(w, in.SequenceNumber)
}

// UnsignedInput is a placeholder input awaiting a signature. Beyond the
// outpoint and sequence it remembers the spent output's satoshi value and,
// optionally, that output's token data, both for the signer's benefit.
type UnsignedInput struct {
	PrevOut        Outpoint
	ScriptSig      *UnsignedScriptSig
	SequenceNumber uint32
	// Value is the satoshi value of the output being spent.
	Value uint64
	// Token is the spent output's token data, if any.
	Token *TokenData
}

func (in *UnsignedInput) isTxInput() {}

// PreviousOutpoint returns the output this input spends.
func (in *UnsignedInput) PreviousOutpoint() Outpoint { return in.PrevOut }

// Sequence returns the input's sequence number.
func (in *UnsignedInput) Sequence() uint32 { return in.SequenceNumber }

// ScriptPubKey recovers the locking script of the output this input spends.
// See UnsignedScriptSig.ScriptPubKey.
func (in *UnsignedInput) ScriptPubKey(ctx KeyContext) (*script.Script, error) {
	if in.ScriptSig == nil {
		return nil, ErrUnrecoverable
	}
	return in.ScriptSig.ScriptPubKey(ctx)
}

func (in *UnsignedInput) encode(w io.Writer) error {
	if err := in.PrevOut.encode(w); err != nil {
		return err
	}
	var sigBytes []byte
	if in.ScriptSig != nil {
		sigBytes = in.ScriptSig.Bytes()
	}
	// The decoder picks the input variant by classifying these bytes. A
	// placeholder that does not classify as unsigned would flip the variant on
	// decode and desynchronize the framing at the value field, so such an
	// input has no valid encoding.
	if !IsUnsignedScriptSig(script.NewFromBytes(sigBytes)) {
		return fmt.Errorf("%w: unsigned input script sig does not match the placeholder form", ErrInvalidScriptStructure)
	}
	if err := writeVarBytes(w, sigBytes); err != nil {
		return err
	}
	if err := writeUint32LE(w, in.SequenceNumber); err != nil {
		return err
	}
	return in.encodeValue(w)
}

// encodeValue writes the value field, repurposing it as the extension
// sentinel when token data rides along. A plain value at or above the
// threshold has no representation without a token and is refused.
func (in *UnsignedInput) encodeValue(w io.Writer) error {
	if in.Token == nil {
		if in.Value >= extendedValueThreshold {
			return fmt.Errorf("%w: %d", ErrValueOverflow, in.Value)
		}
		return writeUint64LE(w, in.Value)
	}

	tokenBytes, err := in.Token.encodedBytes()
	if err != nil {
		return err
	}
	if err := writeUint64LE(w, extendedValueSentinel); err != nil {
		return err
	}
	if err := writeVarInt(w, in.Value); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(1+len(tokenBytes))); err != nil {
		return err
	}
	if _, err := w.Write([]byte{tokenPrefixOp}); err != nil {
		return err
	}
	_, err = w.Write(tokenBytes)
	return err
}

// readExtendedValue reads the unsigned input's value field: either a plain
// 8-byte integer below the sentinel threshold, or the extension carrying a
// varint value plus an announced token payload.
func readExtendedValue(r io.Reader) (uint64, *TokenData, error) {
	raw, err := readUint64LE(r)
	if err != nil {
		return 0, nil, err
	}
	if raw < extendedValueThreshold {
		return raw, nil, nil
	}
	if raw&0xf != 0xf {
		return 0, nil, fmt.Errorf("%w: 0x%x", ErrUnknownExtensionVersion, raw&0xf)
	}

	value, err := readVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	blob, err := readVarBytes(r)
	if err != nil {
		return 0, nil, err
	}
	if len(blob) == 0 || blob[0] != tokenPrefixOp {
		return 0, nil, fmt.Errorf("%w: expected token announcement", ErrMalformedTokenPayload)
	}
	br := bytes.NewReader(blob[1:])
	token, err := decodeTokenData(br)
	if err != nil {
		return 0, nil, err
	}
	if br.Len() != 0 {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes after token data", ErrMalformedTokenPayload, br.Len())
	}
	return value, token, nil
}

// decodeInput reads one input record. The unlocking-script bytes decide the
// variant: scripts matching the placeholder template decode as unsigned, with
// the extended value field following; everything else is a signed input and
// the record ends after the sequence number.
func decodeInput(r io.Reader) (TxInput, error) {
	prevOut, err := decodeOutpoint(r)
	if err != nil {
		return nil, err
	}
	sigBytes, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	sequence, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}

	s := script.NewFromBytes(sigBytes)
	if !IsUnsignedScriptSig(s) {
		return &SignedInput{
			PrevOut:         prevOut,
			UnlockingScript: s,
			SequenceNumber:  sequence,
		}, nil
	}

	value, token, err := readExtendedValue(r)
	if err != nil {
		return nil, err
	}
	return &UnsignedInput{
		PrevOut:        prevOut,
		ScriptSig:      &UnsignedScriptSig{s: s},
		SequenceNumber: sequence,
		Value:          value,
		Token:          token,
	}, nil
}

func decodeInputs(r io.Reader) ([]TxInput, error) {
	count, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	inputs := make([]TxInput, 0, preallocCount(count, minInputSize))
	for i := uint64(0); i < count; i++ {
		in, err := decodeInput(r)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
