package pst

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// MaxPayloadSize is the maximum size in bytes of any single decoded object.
	// Mirrors the consensus maximum for serialized vectors.
	MaxPayloadSize = 4_000_000

	// readChunkSize bounds how much memory a length-prefixed byte string may
	// allocate before the backing bytes have actually arrived.
	readChunkSize = 65536
)

// mapReadErr converts io-level end-of-stream errors into the codec's typed
// truncation error. Every field reader funnels through this so a short buffer
// always surfaces as ErrTruncatedInput.
func mapReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncatedInput
	}
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, mapReadErr(err)
	}
	return buf[0], nil
}

func readUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, mapReadErr(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64LE(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, mapReadErr(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64LE(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// readVarInt decodes a Bitcoin compact-size integer. Non-minimal encodings
// are rejected so every value has exactly one byte representation.
func readVarInt(r io.Reader) (uint64, error) {
	disc, err := readByte(r)
	if err != nil {
		return 0, err
	}

	switch disc {
	case 0xff:
		v, err := readUint64LE(r)
		if err != nil {
			return 0, err
		}
		if v < 0x100000000 {
			return 0, fmt.Errorf("%w: %d encoded in 9 bytes", ErrNonMinimalVarInt, v)
		}
		return v, nil
	case 0xfe:
		v, err := readUint32LE(r)
		if err != nil {
			return 0, err
		}
		if v < 0x10000 {
			return 0, fmt.Errorf("%w: %d encoded in 5 bytes", ErrNonMinimalVarInt, v)
		}
		return uint64(v), nil
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, mapReadErr(err)
		}
		v := binary.LittleEndian.Uint16(buf[:])
		if v < 0xfd {
			return 0, fmt.Errorf("%w: %d encoded in 3 bytes", ErrNonMinimalVarInt, v)
		}
		return uint64(v), nil
	default:
		return uint64(disc), nil
	}
}

func writeVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		_, err := w.Write([]byte{byte(v)})
		return err
	case v <= 0xffff:
		var buf [3]byte
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		_, err := w.Write(buf[:])
		return err
	case v <= 0xffffffff:
		var buf [5]byte
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		_, err := w.Write(buf[:])
		return err
	default:
		var buf [9]byte
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], v)
		_, err := w.Write(buf[:])
		return err
	}
}

// readVarBytes reads a compact-size length followed by that many bytes. The
// buffer grows chunk-wise as real bytes arrive, so a huge declared length
// backed by a short stream fails with ErrTruncatedInput instead of allocating
// memory proportional to the claim.
func readVarBytes(r io.Reader) ([]byte, error) {
	n, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > MaxPayloadSize {
		return nil, fmt.Errorf("%w: byte string of %d bytes", ErrTooLarge, n)
	}

	buf := make([]byte, 0, min(n, readChunkSize))
	for remaining := n; remaining > 0; {
		chunk := min(remaining, readChunkSize)
		start := len(buf)
		buf = append(buf, make([]byte, chunk)...)
		if _, err := io.ReadFull(r, buf[start:]); err != nil {
			return nil, mapReadErr(err)
		}
		remaining -= chunk
	}
	return buf, nil
}

func writeVarBytes(w io.Writer, b []byte) error {
	if err := writeVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// preallocCount caps the upfront capacity of a length-prefixed vector at a
// quarter of the payload limit divided by one element's minimum encoded size.
// A declared count beyond that grows normally as elements actually decode.
func preallocCount(declared uint64, elemMinSize int) int {
	limit := uint64(MaxPayloadSize / 4 / elemMinSize)
	return int(min(declared, limit))
}
