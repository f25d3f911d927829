package hdkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashtxorg/libcashtx-go/addrscript"
	"github.com/cashtxorg/libcashtx-go/pst"
)

// The zero-value Context must satisfy the codec's derivation interface.
var _ pst.KeyContext = Context{}

func TestContextRecoversSingleKeyScript(t *testing.T) {
	record := testRecord(t)
	src := pst.KeySource{ExtendedKey: record, DerivationPath: []uint32{1, 5630}}

	sig, err := pst.NewUnsignedScriptSigFromKeySource(src)
	require.NoError(t, err)

	lock, err := sig.ScriptPubKey(Context{})
	require.NoError(t, err)

	kind, hash := addrscript.Hash(lock)
	assert.Equal(t, addrscript.KindP2PKH, kind)

	// The hash must match an independent derivation of the same path.
	parent, err := Parse(record)
	require.NoError(t, err)
	derived, err := parent.Derive([]uint32{1, 5630})
	require.NoError(t, err)
	assert.Equal(t, derived.PublicKeyHash(), hash)

	// Recovery is deterministic.
	again, err := sig.ScriptPubKey(Context{})
	require.NoError(t, err)
	assert.Equal(t, lock.Bytes(), again.Bytes())
}

func TestContextRecoversMultisigScript(t *testing.T) {
	record := testRecord(t)
	sources := []pst.KeySource{
		{ExtendedKey: record, DerivationPath: []uint32{0, 1}},
		{ExtendedKey: record, DerivationPath: []uint32{0, 2}},
	}

	sig, err := pst.NewMultisigUnsignedScriptSig(2, sources)
	require.NoError(t, err)

	lock, err := sig.ScriptPubKey(Context{})
	require.NoError(t, err)

	kind, hash := addrscript.Hash(lock)
	assert.Equal(t, addrscript.KindP2SH20, kind)
	assert.Len(t, hash, 20)
}

func TestContextRejectsBadRecord(t *testing.T) {
	_, err := Context{}.ParseExtendedPublicKey(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidLength)
}
