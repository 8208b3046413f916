// Package codec implements the canonical binary encoding used for the wire
// format and for on-disk test vectors (spec §4.1, §6): little-endian
// fixed-width integers, a tagged variable-length "compact" integer, 1-byte
// optional markers, length-prefixed sequences and 1-byte enum
// discriminants.
package codec

import (
	"encoding/binary"
)

// Writer accumulates a canonical encoding. It never fails: every Write*
// method appends to an internal growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteFixedBytes appends b verbatim (used for fixed-size arrays, which
// carry no length prefix).
func (w *Writer) WriteFixedBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteUint16 appends v little-endian fixed-width.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends v little-endian fixed-width.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends v little-endian fixed-width.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteCompact appends v using the domain-specific variable-length
// "compact" integer: 1-9 bytes, where the number of leading one-bits in the
// first byte encodes how many little-endian extra bytes follow, and the
// remaining low bits of the first byte (plus the extra bytes) hold v.
//
// Spec reference: §4.1, "a tagged variable-length prefix... 1-9 bytes, first
// byte encodes both the byte-count and the low bits of the value".
func (w *Writer) WriteCompact(v uint64) {
	w.buf = append(w.buf, EncodeCompact(v)...)
}

// EncodeCompact returns the compact encoding of v as a standalone slice.
//
// n leading one-bits in the first byte (n in [0,7]) mean n extra
// little-endian bytes follow, holding the high bits of v; the remaining
// (7-n) low bits of the first byte hold the low bits of v. A value too large
// for n=7 (v >= 2^56) escapes to a 9-byte form: first byte 0xFF followed by
// a full little-endian uint64.
func EncodeCompact(v uint64) []byte {
	for n := 0; n <= 7; n++ {
		if v < (uint64(1) << uint(7+7*n)) {
			lowBits := uint(7 - n)
			low := v & ((uint64(1) << lowBits) - 1)
			high := v >> lowBits
			prefix := byte(0)
			if n > 0 {
				prefix = ^byte(0) << uint(8-n)
			}
			prefix |= byte(low)
			out := make([]byte, 1+n)
			out[0] = prefix
			for i := 0; i < n; i++ {
				out[1+i] = byte(high >> uint(8*i))
			}
			return out
		}
	}
	out := make([]byte, 9)
	out[0] = 0xFF
	binary.LittleEndian.PutUint64(out[1:], v)
	return out
}

// WriteOptional writes the 1-byte existence marker and, if present, calls
// encode to append the payload.
func (w *Writer) WriteOptional(present bool, encode func(*Writer)) {
	if present {
		w.WriteUint8(1)
		encode(w)
		return
	}
	w.WriteUint8(0)
}

// WriteSequence writes a compact length prefix followed by n calls to
// encode(i) for i in [0, n).
func (w *Writer) WriteSequence(n int, encode func(*Writer, int)) {
	w.WriteCompact(uint64(n))
	for i := 0; i < n; i++ {
		encode(w, i)
	}
}

// WriteEnum writes a 1-byte discriminant followed by the variant payload.
func (w *Writer) WriteEnum(discriminant uint8, encode func(*Writer)) {
	w.WriteUint8(discriminant)
	encode(w)
}

// Reader consumes a canonical encoding, tracking its read position.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadFixedBytes reads exactly n bytes verbatim.
func (r *Reader) ReadFixedBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian fixed-width uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian fixed-width uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian fixed-width uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadCompact reads a compact variable-length integer.
func (r *Reader) ReadCompact() (uint64, error) {
	first, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	if first == 0xFF {
		b, err := r.take(8)
		if err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	}
	n := 0
	for n < 8 && first&(0x80>>uint(n)) != 0 {
		n++
	}
	if n == 0 {
		return uint64(first), nil
	}
	low := uint64(first) & ((uint64(1) << uint(7-n)) - 1)
	extra, err := r.take(n)
	if err != nil {
		return 0, err
	}
	var high uint64
	for i, b := range extra {
		high |= uint64(b) << uint(8*i)
	}
	return low | (high << uint(7-n)), nil
}

// ReadOptional reads the existence marker and, if present, calls decode.
func (r *Reader) ReadOptional(decode func(*Reader) error) (bool, error) {
	marker, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	switch marker {
	case 0:
		return false, nil
	case 1:
		if err := decode(r); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, ErrInvalidExistenceMarker
	}
}

// ReadSequence reads a compact length prefix, validates it against max, and
// calls decode(i) for each element.
func (r *Reader) ReadSequence(max int, decode func(*Reader, int) error) (int, error) {
	n64, err := r.ReadCompact()
	if err != nil {
		return 0, err
	}
	if max >= 0 && int(n64) > max {
		return 0, ErrExceededMaximumSize
	}
	n := int(n64)
	for i := 0; i < n; i++ {
		if err := decode(r, i); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// ReadEnum reads the 1-byte discriminant.
func (r *Reader) ReadEnum() (uint8, error) { return r.ReadUint8() }
