// Package varint implements the compact variable-length integer codec spec.md
// §6 calls out as an external collaborator ("documented only by the
// contracts §6 requires"): a high-bit-continuation encoding, 7 value bits
// per byte, used for column numbers, packet lengths, packet counts, and
// every other small integer field on the wire.
//
// It is grounded directly in how the teacher's internal/wire package calls
// its own variable-length codec (github.com/quic-go/quic-go/quicvarint's
// Read/Append/Len trio, used throughout internal/wire/fec_*.go) — this
// package gives the same three-function shape, reimplemented locally
// because quicvarint itself only exists inside the quic-go module tree and
// importing the whole of quic-go for three tiny functions would pull in a
// transport stack this codec has no use for (spec §1 Non-goals: no network
// I/O).
package varint

import (
	"errors"
	"io"
)

// ErrOverflow names a decoded value that does not fit the requested
// domain. No function in this package returns it; an out-of-range
// packet-length field is reported by wire.DecodeOriginal as
// wire.ErrInvalidLength.
var ErrOverflow = errors.New("varint: value out of range")

// maxBytes bounds how many continuation bytes ReadUvarint will consume
// before concluding the stream is malformed: 10 bytes, enough for any
// uint64 value (a 22-bit column number itself takes at most 4).
const maxBytes = 10

// AppendUvarint appends v to b using 7-bit continuation encoding: each byte
// carries 7 value bits low-to-high, with the high bit set on every byte but
// the last.
func AppendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// Len reports how many bytes AppendUvarint would emit for v.
func Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadUvarint decodes a value encoded by AppendUvarint from r.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, errors.New("varint: too many continuation bytes")
}

// byteReader adapts a []byte plus cursor to io.ByteReader without pulling
// in bytes.Reader at every call site (parse functions need a shared cursor
// across several ReadUvarint calls, which bytes.Reader already gives, so
// call sites typically just pass a *bytes.Reader directly; this helper
// exists for callers that only have a slice).
type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

// ReadUvarintFromBytes decodes a value from the front of b, returning the
// value and the number of bytes consumed.
func ReadUvarintFromBytes(b []byte) (uint64, int, error) {
	br := &byteReader{b: b}
	v, err := ReadUvarint(br)
	if err != nil {
		return 0, 0, err
	}
	return v, br.pos, nil
}
