// Package wire implements the on-the-wire and in-storage byte layouts
// spec.md §6 and §3 fix: length-prefixed original packets, recovery
// packets with a trailing metadata footer, and the NACK loss-range ack
// payload. It plays the role the teacher's internal/wire package plays for
// quic-go's frames (internal/wire/fec_source_symbol_frame.go,
// fec_repair_frame.go, fec_symbol_ack_frame.go): parse functions that read
// from a cursor and Append/Length pairs that avoid a second allocation
// pass, built on internal/varint the way the teacher's frames are built on
// quicvarint.
package wire

import (
	"errors"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/varint"
)

// ErrTruncated is returned when a buffer ends before a declared length
// field's payload does.
var ErrTruncated = errors.New("wire: truncated buffer")

// ErrInvalidLength is returned when a decoded length field is out of the
// packet-length domain (spec: 1..MAX_PACKET_BYTES).
var ErrInvalidLength = errors.New("wire: invalid packet length")

// EncodeOriginal returns a length-prefixed buffer: a variable-length
// length field followed by payload bytes (spec §3 "Original packet").
func EncodeOriginal(b []byte, payload []byte) []byte {
	b = varint.AppendUvarint(b, uint64(len(payload)))
	return append(b, payload...)
}

// OriginalHeaderLen reports the number of header bytes EncodeOriginal
// would emit for a payload of length n — spec §3's "header-byte count is
// cached" value.
func OriginalHeaderLen(n int) int {
	return varint.Len(uint64(n))
}

// DecodeOriginal parses a length-prefixed original from the front of buf,
// returning the payload slice (aliasing buf) and the header length in
// bytes; the total consumed is headerLen + len(payload).
func DecodeOriginal(buf []byte) (payload []byte, headerLen int, err error) {
	n, hlen, err := varint.ReadUvarintFromBytes(buf)
	if err != nil {
		return nil, 0, err
	}
	if n == 0 || n > protocol.MaxPacketBytes {
		return nil, 0, ErrInvalidLength
	}
	if hlen+int(n) > len(buf) {
		return nil, 0, ErrTruncated
	}
	return buf[hlen : hlen+int(n)], hlen, nil
}
