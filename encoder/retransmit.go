package encoder

import (
	"github.com/gofec/siamese/internal/wire"
)

// Retransmit returns the next original in the window's cycling rotation
// as a bare-retransmission recovery packet (spec §3's "bare retransmission"
// special case: sum_count == 1, ldpc_count == 1, row == 0 — a recovery
// packet whose only content is the one original it carries verbatim,
// letting the decoder treat it through the same admission path as any
// other recovery packet). It is a standalone packet, independent of
// Encode's row-generation cadence, meant for a caller that wants to pace
// raw retransmission bandwidth separately from coded FEC volume.
//
// The cursor cycles across every element currently in the window,
// wrapping back to the start once it reaches the end (spec's "retransmit
// cadence": every original gets revisited in bounded rotation). It
// returns ErrNeedMoreData if the window is empty.
func (e *Encoder) Retransmit() ([]byte, error) {
	if err := e.checkDisabled(); err != nil {
		return nil, err
	}
	n := e.win.count()
	if n == 0 {
		return nil, ErrNeedMoreData
	}
	if e.retransmitI >= n {
		e.retransmitI = 0
	}
	i := e.retransmitI
	e.retransmitI++

	record := e.win.record(i)
	column := e.win.column(i)

	meta := wire.RecoveryMetadata{
		ColumnStart: column,
		SumCount:    1,
		LDPCCount:   1,
		Row:         0,
	}
	return wire.EncodeRecoveryPacket(record, meta), nil
}
