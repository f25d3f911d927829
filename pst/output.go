package pst

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bsv-blockchain/go-sdk/script"
)

// minOutputSize is the smallest possible encoded output:
// satoshis(8) + empty script(1).
const minOutputSize = 9

// TxOutput is a transaction output. Token data, when present, rides inline at
// the front of the wire script field behind the token prefix opcode; outputs
// never need the value-sentinel trick the unsigned inputs use.
type TxOutput struct {
	Satoshis      uint64
	LockingScript *script.Script
	Token         *TokenData
}

func (out *TxOutput) encode(w io.Writer) error {
	if err := writeUint64LE(w, out.Satoshis); err != nil {
		return err
	}
	var scriptBytes []byte
	if out.LockingScript != nil {
		scriptBytes = out.LockingScript.Bytes()
	}
	if out.Token == nil {
		return writeVarBytes(w, scriptBytes)
	}

	tokenBytes, err := out.Token.encodedBytes()
	if err != nil {
		return err
	}
	blob := make([]byte, 0, 1+len(tokenBytes)+len(scriptBytes))
	blob = append(blob, tokenPrefixOp)
	blob = append(blob, tokenBytes...)
	blob = append(blob, scriptBytes...)
	return writeVarBytes(w, blob)
}

func decodeOutput(r io.Reader) (*TxOutput, error) {
	satoshis, err := readUint64LE(r)
	if err != nil {
		return nil, err
	}
	blob, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}

	out := &TxOutput{Satoshis: satoshis}
	if len(blob) > 0 && blob[0] == tokenPrefixOp {
		br := bytes.NewReader(blob[1:])
		token, err := decodeTokenData(br)
		if err != nil {
			return nil, err
		}
		out.Token = token
		// Whatever follows the token payload is the locking script proper.
		blob = blob[len(blob)-br.Len():]
	}
	out.LockingScript = script.NewFromBytes(blob)
	return out, nil
}

func decodeOutputs(r io.Reader) ([]*TxOutput, error) {
	count, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	outputs := make([]*TxOutput, 0, preallocCount(count, minOutputSize))
	for i := uint64(0); i < count; i++ {
		out, err := decodeOutput(r)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
