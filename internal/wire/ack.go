package wire

import (
	"errors"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/varint"
)

// ErrInvalidAck is returned for a malformed ack payload (spec §7:
// "malformed ack ... fail loudly").
var ErrInvalidAck = errors.New("wire: invalid ack payload")

// LossRange is a contiguous run of columns the decoder has not received,
// reported back to the encoder as a NACK hint (spec §4.4's ack consumer,
// §4.10 Open Question notes this only affects scheduling, never
// correctness).
type LossRange struct {
	Start protocol.Column
	Count int // >= 1
}

// EncodeAck serializes the ack payload: [next_expected_column][loss_range*],
// each loss_range as (relative_start, loss_count_minus_1), relative_start
// measured from the end of the previous range (or from nextExpected for
// the first range) the same way the teacher's SymbolAckFrame measures
// each range's gap from the previous range's Smallest
// (internal/wire/fec_symbol_ack_frame.go), generalized from packet-number
// acks to loss ranges.
//
// Encoding stops after any complete range once appending another would
// exceed limit bytes (spec §6: "may be truncated after any complete
// range"). limit <= 0 means unbounded.
func EncodeAck(nextExpected protocol.Column, ranges []LossRange, limit int) []byte {
	b := varint.AppendUvarint(nil, uint64(nextExpected))
	prevEnd := nextExpected
	for _, r := range ranges {
		relStart := protocol.Delta(prevEnd, r.Start)
		if relStart < 0 {
			continue // out of order / overlapping input; skip defensively
		}
		extra := varint.Len(uint64(relStart)) + varint.Len(uint64(r.Count-1))
		if limit > 0 && len(b)+extra > limit {
			break
		}
		b = varint.AppendUvarint(b, uint64(relStart))
		b = varint.AppendUvarint(b, uint64(r.Count-1))
		prevEnd = r.Start.Add(r.Count)
	}
	return b
}

// DecodeAck parses an ack payload produced by EncodeAck.
func DecodeAck(buf []byte) (nextExpected protocol.Column, ranges []LossRange, err error) {
	v, n, err := varint.ReadUvarintFromBytes(buf)
	if err != nil {
		return 0, nil, ErrInvalidAck
	}
	nextExpected = protocol.Column(v & protocol.ColumnMask)
	buf = buf[n:]
	prevEnd := nextExpected
	for len(buf) > 0 {
		relStart, n1, err := varint.ReadUvarintFromBytes(buf)
		if err != nil {
			// Buffers end only after a complete range (EncodeAck
			// truncates at range boundaries), so a partial range here is
			// rejected.
			return 0, nil, ErrInvalidAck
		}
		buf = buf[n1:]
		if len(buf) == 0 {
			return 0, nil, ErrInvalidAck
		}
		countM1, n2, err := varint.ReadUvarintFromBytes(buf)
		if err != nil {
			return 0, nil, ErrInvalidAck
		}
		buf = buf[n2:]

		start := prevEnd.Add(int(relStart))
		count := int(countM1) + 1
		ranges = append(ranges, LossRange{Start: start, Count: count})
		prevEnd = start.Add(count)
	}
	return nextExpected, ranges, nil
}
