package pst

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/cashtxorg/libcashtx-go/addrscript"
)

const (
	// singleKeyMarker is the one-byte push opening the single-key placeholder
	// form.
	singleKeyMarker = 0xff

	// Payload type markers inside the single-key form.
	payloadLockingScript = 0xfd // raw locking script follows
	payloadExtendedKey   = 0xff // 78-byte xpub record + derivation path follows

	// extendedKeySize is the raw BIP32 extended-public-key record length.
	extendedKeySize = 78

	// pathStepSentinel marks a path step too large for the compact 16-bit
	// form; the true 32-bit index follows.
	pathStepSentinel = 0xffff

	// maxMultisigKeys bounds n in the multisig template; push-number opcodes
	// only reach sixteen.
	maxMultisigKeys = 16
)

// KeySource names one key of an unsigned input: a raw extended public key
// record plus the non-hardened derivation path leading to the spending key.
type KeySource struct {
	// ExtendedKey is the 78-byte serialized extended public key.
	ExtendedKey []byte
	// DerivationPath is the ordered list of child indices to derive.
	DerivationPath []uint32
}

// UnsignedScriptSig is the synthetic placeholder carried in the unlocking
// script position of an unsigned input. It is not an executable script: it
// records either the locking script being spent or the key material from
// which that script can be recovered after external derivation.
//
// The raw bytes are kept verbatim so decoded placeholders re-encode
// byte-for-byte even when a foreign encoder chose a different push encoding.
type UnsignedScriptSig struct {
	s *script.Script
}

// NewUnsignedScriptSigFromLockingScript builds the single-key placeholder that
// embeds the spent output's locking script directly: no key is known, but the
// address the input pays from is.
func NewUnsignedScriptSigFromLockingScript(lock *script.Script) (*UnsignedScriptSig, error) {
	if lock == nil {
		return nil, fmt.Errorf("%w: nil locking script", ErrInvalidScriptStructure)
	}
	payload := append([]byte{payloadLockingScript}, lock.Bytes()...)
	return buildSingleKey(payload)
}

// NewUnsignedScriptSigFromKeySource builds the single-key placeholder that
// embeds an extended public key and derivation path.
func NewUnsignedScriptSigFromKeySource(src KeySource) (*UnsignedScriptSig, error) {
	payload, err := encodeKeyRecord(src)
	if err != nil {
		return nil, err
	}
	return buildSingleKey(payload)
}

// NewMultisigUnsignedScriptSig builds the m-of-n placeholder: an empty push,
// one push per key record, and a trailing redeem-script skeleton whose key
// slots hold the same records until derivation materializes them.
func NewMultisigUnsignedScriptSig(m int, sources []KeySource) (*UnsignedScriptSig, error) {
	n := len(sources)
	if n < 1 || n > maxMultisigKeys {
		return nil, fmt.Errorf("%w: %d multisig keys", ErrInvalidScriptStructure, n)
	}
	if m < 1 || m > n {
		return nil, fmt.Errorf("%w: %d-of-%d multisig", ErrInvalidScriptStructure, m, n)
	}

	records := make([][]byte, n)
	for i, src := range sources {
		rec, err := encodeKeyRecord(src)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	template := &script.Script{}
	if err := template.AppendOpcodes(smallIntOp(m)); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := template.AppendPushData(rec); err != nil {
			return nil, err
		}
	}
	if err := template.AppendOpcodes(smallIntOp(n)); err != nil {
		return nil, err
	}
	if err := template.AppendOpcodes(script.OpCHECKMULTISIG); err != nil {
		return nil, err
	}

	s := &script.Script{}
	if err := s.AppendPushData(nil); err != nil { // OP_0, the empty leading push
		return nil, err
	}
	for _, rec := range records {
		if err := s.AppendPushData(rec); err != nil {
			return nil, err
		}
	}
	if err := s.AppendPushData(template.Bytes()); err != nil {
		return nil, err
	}
	return &UnsignedScriptSig{s: s}, nil
}

func buildSingleKey(payload []byte) (*UnsignedScriptSig, error) {
	s := &script.Script{}
	if err := s.AppendPushData([]byte{singleKeyMarker}); err != nil {
		return nil, err
	}
	if err := s.AppendPushData(payload); err != nil {
		return nil, err
	}
	return &UnsignedScriptSig{s: s}, nil
}

// Script returns the placeholder's script container.
func (u *UnsignedScriptSig) Script() *script.Script {
	return u.s
}

// Bytes returns the raw placeholder bytes as they appear on the wire.
func (u *UnsignedScriptSig) Bytes() []byte {
	return u.s.Bytes()
}

// IsUnsignedScriptSig reports whether the script structurally matches one of
// the placeholder templates.
//
// This is a best-effort sniff over format-ambiguous input, not a guarantee: a
// genuine unlocking script could in principle collide with the template.
// Every placeholder produced by this package classifies as unsigned;
// ambiguous or malformed scripts fail closed as signed.
func IsUnsignedScriptSig(s *script.Script) bool {
	if s == nil {
		return false
	}
	chunks, err := s.Chunks()
	if err != nil || len(chunks) == 0 {
		return false
	}
	first := chunks[0]

	// Single-key form: PUSH(0xff) PUSH(payload) and nothing else.
	if len(first.Data) == 1 && first.Data[0] == singleKeyMarker {
		if len(chunks) != 2 {
			return false
		}
		payload := chunks[1].Data
		if len(payload) == 0 {
			return false
		}
		switch payload[0] {
		case payloadLockingScript:
			// Accept only if the remainder parses as some valid script.
			_, err := script.NewFromBytes(payload[1:]).Chunks()
			return err == nil
		case 0xfe, payloadExtendedKey, 0x02, 0x03, 0x04:
			// Recognized extended-key and raw-pubkey markers.
			return true
		}
		return false
	}

	// Multisig form: PUSH(empty) PUSH(rec)... PUSH(template).
	if first.Op == script.Op0 && len(first.Data) == 0 {
		if len(chunks) < 3 {
			return false
		}
		for _, c := range chunks[1 : len(chunks)-1] {
			if len(c.Data) == 0 {
				return false
			}
		}
		tpl, err := parseRedeemTemplate(chunks[len(chunks)-1].Data)
		if err != nil {
			return false
		}
		return len(chunks)-2 == tpl.n
	}

	return false
}

// ScriptPubKey recovers the locking script this placeholder stands in for,
// deriving keys through ctx where key material is embedded. A placeholder
// whose structure matches no recognized template returns ErrUnrecoverable.
func (u *UnsignedScriptSig) ScriptPubKey(ctx KeyContext) (*script.Script, error) {
	chunks, err := u.s.Chunks()
	if err != nil || len(chunks) == 0 {
		return nil, ErrUnrecoverable
	}
	first := chunks[0]

	if first.Op == script.Op0 && len(first.Data) == 0 {
		return recoverMultisig(ctx, chunks)
	}

	if len(first.Data) != 1 || first.Data[0] != singleKeyMarker || len(chunks) != 2 {
		return nil, ErrUnrecoverable
	}
	payload := chunks[1].Data
	if len(payload) == 0 {
		return nil, ErrUnrecoverable
	}
	switch payload[0] {
	case payloadLockingScript:
		return script.NewFromBytes(payload[1:]), nil
	case payloadExtendedKey:
		key, err := deriveKeyRecord(ctx, payload)
		if err != nil {
			return nil, err
		}
		return addrscript.NewLockingScript(addrscript.KindP2PKH, key.PublicKeyHash())
	}
	return nil, ErrUnrecoverable
}

// LockingScript returns the embedded locking script of the 0xFD single-key
// form, or false when the placeholder holds key material instead.
func (u *UnsignedScriptSig) LockingScript() (*script.Script, bool) {
	chunks, err := u.s.Chunks()
	if err != nil || len(chunks) != 2 {
		return nil, false
	}
	if len(chunks[0].Data) != 1 || chunks[0].Data[0] != singleKeyMarker {
		return nil, false
	}
	payload := chunks[1].Data
	if len(payload) == 0 || payload[0] != payloadLockingScript {
		return nil, false
	}
	return script.NewFromBytes(payload[1:]), true
}

// recoverMultisig derives every key record, substitutes the derived keys into
// the redeem-script skeleton in their original positions, and wraps the
// completed redeem script as P2SH20.
func recoverMultisig(ctx KeyContext, chunks []*script.ScriptChunk) (*script.Script, error) {
	if len(chunks) < 3 {
		return nil, ErrUnrecoverable
	}
	keyChunks := chunks[1 : len(chunks)-1]
	tpl, err := parseRedeemTemplate(chunks[len(chunks)-1].Data)
	if err != nil || len(keyChunks) != tpl.n {
		return nil, ErrUnrecoverable
	}

	derived := make([][]byte, len(keyChunks))
	for i, c := range keyChunks {
		key, err := deriveKeyRecord(ctx, c.Data)
		if err != nil {
			return nil, err
		}
		derived[i] = key.PublicKey()
	}

	redeem := &script.Script{}
	if err := redeem.AppendOpcodes(smallIntOp(tpl.m)); err != nil {
		return nil, err
	}
	for _, pk := range derived {
		if err := redeem.AppendPushData(pk); err != nil {
			return nil, err
		}
	}
	if err := redeem.AppendOpcodes(smallIntOp(tpl.n)); err != nil {
		return nil, err
	}
	if err := redeem.AppendOpcodes(script.OpCHECKMULTISIG); err != nil {
		return nil, err
	}

	return addrscript.NewLockingScript(addrscript.KindP2SH20, bsvhash.Hash160(redeem.Bytes()))
}

// deriveKeyRecord parses a 0xFF key record and walks its derivation path
// through ctx. Structural failures surface as ErrUnrecoverable.
func deriveKeyRecord(ctx KeyContext, record []byte) (ExtendedPublicKey, error) {
	src, err := parseKeyRecord(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecoverable, err)
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: no key context", ErrUnrecoverable)
	}
	key, err := ctx.ParseExtendedPublicKey(src.ExtendedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecoverable, err)
	}
	for _, step := range src.DerivationPath {
		key, err = key.Child(step)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnrecoverable, err)
		}
	}
	return key, nil
}

// encodeKeyRecord serializes a KeySource as 0xFF · xpub(78) · path, each path
// step as a little-endian uint16 unless it needs the 32-bit sentinel form.
func encodeKeyRecord(src KeySource) ([]byte, error) {
	if len(src.ExtendedKey) != extendedKeySize {
		return nil, fmt.Errorf("%w: extended key is %d bytes, want %d",
			ErrInvalidScriptStructure, len(src.ExtendedKey), extendedKeySize)
	}
	var buf bytes.Buffer
	buf.WriteByte(payloadExtendedKey)
	buf.Write(src.ExtendedKey)
	for _, step := range src.DerivationPath {
		if step < pathStepSentinel {
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(step))
			buf.Write(b[:])
		} else {
			var b [6]byte
			binary.LittleEndian.PutUint16(b[:2], pathStepSentinel)
			binary.LittleEndian.PutUint32(b[2:], step)
			buf.Write(b[:])
		}
	}
	return buf.Bytes(), nil
}

// parseKeyRecord is the inverse of encodeKeyRecord. The path bytes must be
// consumed exactly; a dangling partial step is an error.
func parseKeyRecord(record []byte) (KeySource, error) {
	if len(record) < 1+extendedKeySize {
		return KeySource{}, fmt.Errorf("%w: key record of %d bytes", ErrInvalidScriptStructure, len(record))
	}
	if record[0] != payloadExtendedKey {
		return KeySource{}, fmt.Errorf("%w: key record marker 0x%02x", ErrInvalidScriptStructure, record[0])
	}
	src := KeySource{ExtendedKey: bytes.Clone(record[1 : 1+extendedKeySize])}

	rest := record[1+extendedKeySize:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return KeySource{}, fmt.Errorf("%w: dangling path byte", ErrInvalidScriptStructure)
		}
		step := uint32(binary.LittleEndian.Uint16(rest))
		rest = rest[2:]
		if step == pathStepSentinel {
			if len(rest) < 4 {
				return KeySource{}, fmt.Errorf("%w: truncated 32-bit path step", ErrInvalidScriptStructure)
			}
			step = binary.LittleEndian.Uint32(rest)
			rest = rest[4:]
		}
		src.DerivationPath = append(src.DerivationPath, step)
	}
	return src, nil
}

// redeemTemplate is the parsed m-of-n skeleton from the trailing push of the
// multisig form.
type redeemTemplate struct {
	m, n  int
	slots [][]byte
}

// parseRedeemTemplate accepts exactly OP_m <n data pushes> OP_n
// OP_CHECKMULTISIG with 1 <= m <= n.
func parseRedeemTemplate(b []byte) (*redeemTemplate, error) {
	chunks, err := script.NewFromBytes(b).Chunks()
	if err != nil {
		return nil, fmt.Errorf("%w: redeem template: %w", ErrInvalidScriptStructure, err)
	}
	if len(chunks) < 4 {
		return nil, fmt.Errorf("%w: redeem template of %d chunks", ErrInvalidScriptStructure, len(chunks))
	}
	if chunks[len(chunks)-1].Op != script.OpCHECKMULTISIG {
		return nil, fmt.Errorf("%w: redeem template does not end in OP_CHECKMULTISIG", ErrInvalidScriptStructure)
	}
	m, ok := smallIntFromOp(chunks[0].Op)
	if !ok {
		return nil, fmt.Errorf("%w: redeem template m opcode 0x%02x", ErrInvalidScriptStructure, chunks[0].Op)
	}
	n, ok := smallIntFromOp(chunks[len(chunks)-2].Op)
	if !ok {
		return nil, fmt.Errorf("%w: redeem template n opcode 0x%02x", ErrInvalidScriptStructure, chunks[len(chunks)-2].Op)
	}

	tpl := &redeemTemplate{m: m, n: n}
	for _, c := range chunks[1 : len(chunks)-2] {
		if len(c.Data) == 0 {
			return nil, fmt.Errorf("%w: redeem template slot is not a push", ErrInvalidScriptStructure)
		}
		tpl.slots = append(tpl.slots, c.Data)
	}
	if len(tpl.slots) != n {
		return nil, fmt.Errorf("%w: redeem template has %d slots, declares %d", ErrInvalidScriptStructure, len(tpl.slots), n)
	}
	if m < 1 || m > n {
		return nil, fmt.Errorf("%w: %d-of-%d redeem template", ErrInvalidScriptStructure, m, n)
	}
	return tpl, nil
}

// smallIntOp maps 1..16 to OP_1..OP_16.
func smallIntOp(n int) byte {
	return script.Op1 + byte(n-1)
}

// smallIntFromOp is the inverse of smallIntOp.
func smallIntFromOp(op byte) (int, bool) {
	if op < script.Op1 || op > script.Op16 {
		return 0, false
	}
	return int(op-script.Op1) + 1, true
}
