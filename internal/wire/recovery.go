package wire

import (
	"errors"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/varint"
)

// ErrInvalidFooter is returned when a recovery packet's trailing metadata
// footer cannot be parsed — spec §7: "malformed recovery footers fail
// loudly".
var ErrInvalidFooter = errors.New("wire: invalid recovery footer")

// RecoveryMetadata is the recovery packet footer (spec §3 "Recovery
// packet"): (column_start, sum_count, ldpc_count, row).
type RecoveryMetadata struct {
	ColumnStart protocol.Column
	SumCount    uint32
	LDPCCount   uint32
	Row         protocol.Row
}

// IsBare reports whether this metadata describes the bare-retransmission
// special case (sum_count == 1, row == 0, ldpc_count == 1).
func (m RecoveryMetadata) IsBare() bool {
	return m.SumCount == 1 && m.LDPCCount == 1 && m.Row == 0
}

const (
	footerFlagBare = 0
	footerFlagFull = 1
)

// EncodeRecoveryFooter appends the metadata footer to b. The footer is
// self-delimiting from the tail: its last byte is its own length, so
// DecodeRecoveryPacket can find where it begins without scanning forward
// from the start of a buffer whose total length it may not otherwise know
// the shape of (spec §6: "footer length is deducible by the decoder
// parsing from the tail").
func EncodeRecoveryFooter(b []byte, m RecoveryMetadata) []byte {
	start := len(b)
	if m.IsBare() {
		b = varint.AppendUvarint(b, uint64(m.ColumnStart))
		b = append(b, footerFlagBare)
	} else {
		b = varint.AppendUvarint(b, uint64(m.ColumnStart))
		b = varint.AppendUvarint(b, uint64(m.SumCount))
		b = varint.AppendUvarint(b, uint64(m.LDPCCount))
		b = append(b, byte(m.Row))
		b = append(b, footerFlagFull)
	}
	footerLen := len(b) - start
	return append(b, byte(footerLen))
}

// EncodeRecoveryPacket concatenates a recovery symbol with its metadata
// footer: [recovery_symbol_bytes][footer] (spec §6).
func EncodeRecoveryPacket(symbol []byte, m RecoveryMetadata) []byte {
	b := make([]byte, 0, len(symbol)+16)
	b = append(b, symbol...)
	return EncodeRecoveryFooter(b, m)
}

// DecodeRecoveryPacket splits buf into its recovery symbol and metadata,
// parsing the footer from the tail.
func DecodeRecoveryPacket(buf []byte) (symbol []byte, m RecoveryMetadata, err error) {
	if len(buf) < 1 {
		return nil, RecoveryMetadata{}, ErrInvalidFooter
	}
	footerLen := int(buf[len(buf)-1])
	if footerLen < 2 || footerLen+1 > len(buf) {
		return nil, RecoveryMetadata{}, ErrInvalidFooter
	}
	footerStart := len(buf) - 1 - footerLen
	footer := buf[footerStart : len(buf)-1]
	flag := footer[len(footer)-1]
	fields := footer[:len(footer)-1]

	switch flag {
	case footerFlagBare:
		colStart, n, ferr := varint.ReadUvarintFromBytes(fields)
		if ferr != nil || n != len(fields) {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		m = RecoveryMetadata{ColumnStart: protocol.Column(colStart), SumCount: 1, LDPCCount: 1, Row: 0}
	case footerFlagFull:
		if len(fields) < 1 {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		rowByte := fields[len(fields)-1]
		numeric := fields[:len(fields)-1]
		colStart, n1, ferr := varint.ReadUvarintFromBytes(numeric)
		if ferr != nil {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		numeric = numeric[n1:]
		sumCount, n2, ferr := varint.ReadUvarintFromBytes(numeric)
		if ferr != nil {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		numeric = numeric[n2:]
		ldpcCount, n3, ferr := varint.ReadUvarintFromBytes(numeric)
		if ferr != nil || n3 != len(numeric) {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		if ldpcCount > sumCount || sumCount == 0 {
			return nil, RecoveryMetadata{}, ErrInvalidFooter
		}
		m = RecoveryMetadata{
			ColumnStart: protocol.Column(colStart),
			SumCount:    uint32(sumCount),
			LDPCCount:   uint32(ldpcCount),
			Row:         protocol.Row(rowByte),
		}
	default:
		return nil, RecoveryMetadata{}, ErrInvalidFooter
	}

	return buf[:footerStart], m, nil
}
