package pst

import (
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func genOutpoint() *rapid.Generator[Outpoint] {
	return rapid.Custom(func(t *rapid.T) Outpoint {
		var txid chainhash.Hash
		copy(txid[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "txid"))
		return Outpoint{TxID: txid, Index: rapid.Uint32().Draw(t, "index")}
	})
}

func genToken() *rapid.Generator[*TokenData] {
	return rapid.Custom(func(t *rapid.T) *TokenData {
		tok := &TokenData{HasNFT: rapid.Bool().Draw(t, "hasNFT")}
		copy(tok.Category[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "category"))
		if tok.HasNFT {
			tok.Capability = Capability(rapid.IntRange(0, 2).Draw(t, "capability"))
			if rapid.Bool().Draw(t, "hasCommitment") {
				tok.Commitment = rapid.SliceOfN(rapid.Byte(), 1, 40).Draw(t, "commitment")
			}
			tok.Amount = rapid.Int64Range(0, 1<<62).Draw(t, "amount")
		} else {
			// A token without an NFT must carry an amount.
			tok.Amount = rapid.Int64Range(1, 1<<62).Draw(t, "amount")
		}
		return tok
	})
}

// genLockingScript draws a standard locking script. Standard forms never start
// with the token prefix opcode, so the output codec cannot misread them.
func genLockingScript() *rapid.Generator[*script.Script] {
	return rapid.Custom(func(t *rapid.T) *script.Script {
		hash := rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "hash")
		s := &script.Script{}
		if rapid.Bool().Draw(t, "p2pkh") {
			require.NoError(t, s.AppendOpcodes(script.OpDUP))
			require.NoError(t, s.AppendOpcodes(script.OpHASH160))
			require.NoError(t, s.AppendPushData(hash))
			require.NoError(t, s.AppendOpcodes(script.OpEQUALVERIFY))
			require.NoError(t, s.AppendOpcodes(script.OpCHECKSIG))
		} else {
			require.NoError(t, s.AppendOpcodes(script.OpHASH160))
			require.NoError(t, s.AppendPushData(hash))
			require.NoError(t, s.AppendOpcodes(script.OpEQUAL))
		}
		return s
	})
}

// genSignedScriptSig draws a signature-shaped unlocking script: push data that
// never collides with the placeholder templates.
func genSignedScriptSig() *rapid.Generator[*script.Script] {
	return rapid.Custom(func(t *rapid.T) *script.Script {
		s := &script.Script{}
		sig := rapid.SliceOfN(rapid.Byte(), 64, 72).Draw(t, "sig")
		sig[0] = 0x30 // DER sequence tag, as real signatures start
		require.NoError(t, s.AppendPushData(sig))
		if rapid.Bool().Draw(t, "withPubKey") {
			pub := rapid.SliceOfN(rapid.Byte(), 33, 33).Draw(t, "pubkey")
			pub[0] = 0x02
			require.NoError(t, s.AppendPushData(pub))
		}
		return s
	})
}

func genKeySource() *rapid.Generator[KeySource] {
	return rapid.Custom(func(t *rapid.T) KeySource {
		src := KeySource{
			ExtendedKey: rapid.SliceOfN(rapid.Byte(), extendedKeySize, extendedKeySize).Draw(t, "xpub"),
		}
		steps := rapid.IntRange(0, 4).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			src.DerivationPath = append(src.DerivationPath, rapid.Uint32().Draw(t, "step"))
		}
		return src
	})
}

func genUnsignedScriptSig() *rapid.Generator[*UnsignedScriptSig] {
	return rapid.Custom(func(t *rapid.T) *UnsignedScriptSig {
		switch rapid.IntRange(0, 2).Draw(t, "form") {
		case 0:
			sig, err := NewUnsignedScriptSigFromLockingScript(genLockingScript().Draw(t, "lock"))
			require.NoError(t, err)
			return sig
		case 1:
			sig, err := NewUnsignedScriptSigFromKeySource(genKeySource().Draw(t, "source"))
			require.NoError(t, err)
			return sig
		default:
			n := rapid.IntRange(1, 4).Draw(t, "n")
			m := rapid.IntRange(1, n).Draw(t, "m")
			sources := make([]KeySource, n)
			for i := range sources {
				sources[i] = genKeySource().Draw(t, "msource")
			}
			sig, err := NewMultisigUnsignedScriptSig(m, sources)
			require.NoError(t, err)
			return sig
		}
	})
}

func genInput() *rapid.Generator[TxInput] {
	return rapid.Custom(func(t *rapid.T) TxInput {
		if rapid.Bool().Draw(t, "signed") {
			return &SignedInput{
				PrevOut:         genOutpoint().Draw(t, "prevout"),
				UnlockingScript: genSignedScriptSig().Draw(t, "scriptSig"),
				SequenceNumber:  rapid.Uint32().Draw(t, "sequence"),
			}
		}
		in := &UnsignedInput{
			PrevOut:        genOutpoint().Draw(t, "prevout"),
			ScriptSig:      genUnsignedScriptSig().Draw(t, "scriptSig"),
			SequenceNumber: rapid.Uint32().Draw(t, "sequence"),
		}
		if rapid.Bool().Draw(t, "withToken") {
			in.Token = genToken().Draw(t, "token")
			in.Value = rapid.Uint64().Draw(t, "value")
		} else {
			in.Value = rapid.Uint64Range(0, extendedValueThreshold-1).Draw(t, "value")
		}
		return in
	})
}

func genOutput() *rapid.Generator[*TxOutput] {
	return rapid.Custom(func(t *rapid.T) *TxOutput {
		out := &TxOutput{
			Satoshis:      rapid.Uint64().Draw(t, "satoshis"),
			LockingScript: genLockingScript().Draw(t, "lock"),
		}
		if rapid.Bool().Draw(t, "withToken") {
			out.Token = genToken().Draw(t, "token")
		}
		return out
	})
}

// TestPropertyRoundTrip drives random transactions through encode and decode
// and requires the decoded structure to match the original exactly.
func TestPropertyRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tx := &Transaction{
			Version:  int32(rapid.Uint32().Draw(rt, "version")),
			LockTime: rapid.Uint32().Draw(rt, "locktime"),
			Inputs:   []TxInput{},
			Outputs:  []*TxOutput{},
		}
		for i := rapid.IntRange(0, 5).Draw(rt, "inputs"); i > 0; i-- {
			tx.Inputs = append(tx.Inputs, genInput().Draw(rt, "input"))
		}
		for i := rapid.IntRange(0, 5).Draw(rt, "outputs"); i > 0; i-- {
			tx.Outputs = append(tx.Outputs, genOutput().Draw(rt, "output"))
		}

		data, err := tx.Bytes()
		require.NoError(rt, err)

		got, err := NewTransactionFromBytes(data)
		require.NoError(rt, err)
		require.Equal(rt, tx, got)

		again, err := got.Bytes()
		require.NoError(rt, err)
		require.Equal(rt, data, again)
	})
}
