// Package pst implements the binary codec for partially signed Bitcoin Cash
// transactions, byte-compatible with the Electron Cash wallet format.
//
// The format is the standard transaction framing with two twists. First,
// inputs are polymorphic: an input whose unlocking-script field matches the
// placeholder template decodes as unsigned and carries extra fields, while
// everything else decodes as an ordinary signed input. There is no version
// flag; the variant is decided by structurally classifying the script bytes.
// Second, an unsigned input smuggles the spent output's token data through
// its 8-byte value field via a reserved sentinel pattern.
package pst

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// Transaction is a partially signed transaction: an ordered mix of signed and
// unsigned inputs plus ordinary outputs. Input and output order is
// semantically significant and round-trips exactly.
type Transaction struct {
	// Version is the protocol version, currently 1 or 2.
	Version int32
	// LockTime is the block height or timestamp before which the transaction
	// cannot be mined.
	LockTime uint32
	Inputs   []TxInput
	Outputs  []*TxOutput
}

// DecodeTransaction reads one transaction from r. Bytes after the locktime
// are left unread; use NewTransactionFromBytes to reject trailing data.
func DecodeTransaction(r io.Reader) (*Transaction, error) {
	version, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	inputs, err := decodeInputs(r)
	if err != nil {
		return nil, err
	}
	outputs, err := decodeOutputs(r)
	if err != nil {
		return nil, err
	}
	lockTime, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Version:  int32(version),
		LockTime: lockTime,
		Inputs:   inputs,
		Outputs:  outputs,
	}, nil
}

// NewTransactionFromBytes decodes a transaction that must span the whole
// buffer. Leftover bytes are ErrTrailingData.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	r := bytes.NewReader(b)
	t, err := DecodeTransaction(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.Len())
	}
	return t, nil
}

// NewTransactionFromHex decodes a hex-encoded transaction.
func NewTransactionFromHex(s string) (*Transaction, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScriptStructure, err)
	}
	return NewTransactionFromBytes(b)
}

// EncodeTo writes the transaction as version · inputs · outputs · locktime.
func (t *Transaction) EncodeTo(w io.Writer) error {
	if err := writeUint32LE(w, uint32(t.Version)); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(len(t.Inputs))); err != nil {
		return err
	}
	for _, in := range t.Inputs {
		if err := in.encode(w); err != nil {
			return err
		}
	}
	if err := writeVarInt(w, uint64(len(t.Outputs))); err != nil {
		return err
	}
	for _, out := range t.Outputs {
		if err := out.encode(w); err != nil {
			return err
		}
	}
	return writeUint32LE(w, t.LockTime)
}

// Bytes returns the serialized transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.EncodeTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hex returns the serialized transaction as a hex string.
func (t *Transaction) Hex() (string, error) {
	b, err := t.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TxID returns the double-SHA256 of the serialized transaction. For a
// transaction with unsigned inputs this is a draft id that changes as inputs
// are signed, not the final network txid.
func (t *Transaction) TxID() (*chainhash.Hash, error) {
	b, err := t.Bytes()
	if err != nil {
		return nil, err
	}
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return chainhash.NewHash(second[:])
}

// IsFullySigned reports whether every input carries a real unlocking script.
func (t *Transaction) IsFullySigned() bool {
	for _, in := range t.Inputs {
		if _, ok := in.(*UnsignedInput); ok {
			return false
		}
	}
	return true
}

// Completed converts a fully signed transaction into an ordinary consensus
// transaction. Token-bearing outputs keep the token prefix inline in the
// locking-script bytes, matching the consensus layout. A transaction that
// still has unsigned inputs returns ErrIncomplete.
func (t *Transaction) Completed() (*transaction.Transaction, error) {
	tx := transaction.NewTransaction()
	tx.Version = uint32(t.Version)
	tx.LockTime = t.LockTime

	for i, in := range t.Inputs {
		signed, ok := in.(*SignedInput)
		if !ok {
			return nil, fmt.Errorf("%w: input %d", ErrIncomplete, i)
		}
		txid := signed.PrevOut.TxID
		tx.AddInput(&transaction.TransactionInput{
			SourceTXID:       &txid,
			SourceTxOutIndex: signed.PrevOut.Index,
			UnlockingScript:  signed.UnlockingScript,
			SequenceNumber:   signed.SequenceNumber,
		})
	}

	for _, out := range t.Outputs {
		lock := out.LockingScript
		if out.Token != nil {
			tokenBytes, err := out.Token.encodedBytes()
			if err != nil {
				return nil, err
			}
			wrapped := make([]byte, 0, 1+len(tokenBytes)+len(lock.Bytes()))
			wrapped = append(wrapped, tokenPrefixOp)
			wrapped = append(wrapped, tokenBytes...)
			wrapped = append(wrapped, lock.Bytes()...)
			lock = script.NewFromBytes(wrapped)
		}
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      out.Satoshis,
			LockingScript: lock,
		})
	}
	return tx, nil
}

// FromTransaction imports an ordinary consensus transaction as a fully signed
// partially-signed transaction, splitting any inline token prefixes out of the
// output scripts.
func FromTransaction(tx *transaction.Transaction) (*Transaction, error) {
	t := &Transaction{
		Version:  int32(tx.Version),
		LockTime: tx.LockTime,
	}

	for _, in := range tx.Inputs {
		var prevOut Outpoint
		if in.SourceTXID != nil {
			prevOut.TxID = *in.SourceTXID
		}
		prevOut.Index = in.SourceTxOutIndex
		unlocking := in.UnlockingScript
		if unlocking == nil {
			// Decoding always yields a non-nil script, so imports normalize
			// to the same representation.
			unlocking = &script.Script{}
		}
		t.Inputs = append(t.Inputs, &SignedInput{
			PrevOut:         prevOut,
			UnlockingScript: unlocking,
			SequenceNumber:  in.SequenceNumber,
		})
	}

	for _, out := range tx.Outputs {
		var scriptBytes []byte
		if out.LockingScript != nil {
			scriptBytes = out.LockingScript.Bytes()
		}
		pstOut := &TxOutput{Satoshis: out.Satoshis}
		if len(scriptBytes) > 0 && scriptBytes[0] == tokenPrefixOp {
			br := bytes.NewReader(scriptBytes[1:])
			token, err := decodeTokenData(br)
			if err != nil {
				return nil, err
			}
			pstOut.Token = token
			scriptBytes = scriptBytes[len(scriptBytes)-br.Len():]
		}
		pstOut.LockingScript = script.NewFromBytes(scriptBytes)
		t.Outputs = append(t.Outputs, pstOut)
	}
	return t, nil
}
