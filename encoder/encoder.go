package encoder

import (
	"errors"

	"github.com/gofec/siamese/internal/gf256"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/rowgen"
	"github.com/gofec/siamese/internal/slab"
	"github.com/gofec/siamese/internal/wire"
	"github.com/gofec/siamese/internal/xlog"
)

// ErrNeedMoreData is returned by Encode/Retransmit when the window is
// empty (spec §4.10).
var ErrNeedMoreData = errors.New("encoder: need more data")

// ErrDisabled is returned by every call once the encoder has hit an
// unrecoverable internal inconsistency (spec §7, §9 "emergency disabled").
var ErrDisabled = errors.New("encoder: disabled")

// Config carries the encoder's tunables.
type Config struct {
	// CauchyThreshold is the sum_count at/below which the small-window
	// Cauchy/parity construction replaces the Siamese construction.
	// Zero selects protocol.CauchyThreshold.
	CauchyThreshold int
	// Logger receives an Errorf call when the encoder disables itself.
	Logger xlog.Logger
}

// Logger is xlog.Logger, re-exported so callers that only import this
// package never need to reach into internal/xlog themselves.
type Logger = xlog.Logger

// Encoder is the sender half of the codec (spec §4.10's encoder_*
// contracts). It is a single-threaded cooperative state machine: every
// method runs to completion before returning, and a shared instance
// requires external synchronization (spec §5).
type Encoder struct {
	cfg    Config
	alloc  *slab.Allocator
	win    *window
	cauchy *rowgen.CauchyCoder

	row              protocol.Row
	cauchyRow        protocol.Row    // separate small counter for the Cauchy branch (see Encode)
	cauchyGroupStart protocol.Column // (column_start, sum_count) of the region cauchyRow currently numbers
	cauchyGroupCount int
	disabled         bool
	nackHint    [protocol.LaneCount]int // advisory deficit counter, spec's NACK scheduling hint
	retransmitI int                     // cursor into the window for Retransmit's cycling iterator
	acked       protocol.Column         // columns < acked are known acknowledged; recorded by Ack, not read by Retransmit
}

// New returns a ready Encoder.
func New(cfg Config) *Encoder {
	if cfg.CauchyThreshold <= 0 {
		cfg.CauchyThreshold = protocol.CauchyThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = xlog.Noop{}
	}
	alloc := slab.New()
	return &Encoder{
		cfg:    cfg,
		alloc:  alloc,
		win:    newWindow(alloc),
		cauchy: rowgen.NewCauchyCoder(),
	}
}

func (e *Encoder) checkDisabled() error {
	if e.disabled {
		return ErrDisabled
	}
	return nil
}

func (e *Encoder) disable(reason string) {
	e.disabled = true
	e.cfg.Logger.Errorf("encoder disabled: %s", reason)
}

// Add assigns the next column to payload, folds it into the window, and
// returns the assigned column (spec §4.10 encoder_add).
func (e *Encoder) Add(payload []byte) (protocol.Column, error) {
	if err := e.checkDisabled(); err != nil {
		return 0, err
	}
	c, err := e.win.add(payload)
	if err != nil {
		return 0, err
	}
	return c, nil
}

// RemoveBefore drops originals strictly before c. Idempotent (spec §8
// property 7).
func (e *Encoder) RemoveBefore(c protocol.Column) error {
	if err := e.checkDisabled(); err != nil {
		return err
	}
	e.win.removeBefore(c)
	if int(e.retransmitI) > e.win.count() {
		e.retransmitI = 0
	}
	return nil
}

// TrimTo is the caller-driven fallback for deployments with no ack
// channel back to the encoder (spec §9 Open Question (a)): it has exactly
// RemoveBefore's semantics, exposed under its own name so a caller that
// never calls Ack still has a documented, idempotent way to bound memory.
func (e *Encoder) TrimTo(c protocol.Column) error {
	return e.RemoveBefore(c)
}

// Encode selects the next row and produces a recovery packet covering the
// encoder's full current window (spec §4.10 encoder_encode). It fails
// with ErrNeedMoreData if the window is empty.
func (e *Encoder) Encode() ([]byte, error) {
	if err := e.checkDisabled(); err != nil {
		return nil, err
	}
	n := e.win.count()
	if n == 0 {
		return nil, ErrNeedMoreData
	}

	sumStart := 0
	sumCount := n
	// ldpc_count is a small trailing suffix, not the whole window: spec §1
	// names the row generator's O(output size), not O(window size), cost
	// as the architectural property of this codec, and that only holds if
	// the sparse LDPC part stays bounded regardless of how large sumCount
	// grows (spec §4.4's closing cost analysis).
	ldpcCount := protocol.LDPCTargetColumns
	if ldpcCount > sumCount {
		ldpcCount = sumCount
	}

	shardLen := 0
	for i := sumStart; i < sumStart+sumCount; i++ {
		if l := len(e.win.record(i)); l > shardLen {
			shardLen = l
		}
	}

	var symbol []byte
	var err error
	var row protocol.Row
	if rowgen.UseCauchy(sumCount, e.cfg.CauchyThreshold) {
		// The Cauchy/parity construction (spec §4.4 item 3) indexes its
		// row by "which parity shard", 0 meaning plain XOR — small and
		// sequential within one sum region, unlike the Siamese branch's
		// free-running row counter. Restart it whenever the sum region
		// itself changes, so the decoder's independent Cauchy solve can
		// gather up to sum_count distinct rows for that exact region.
		groupStart := e.win.column(sumStart)
		if groupStart != e.cauchyGroupStart || sumCount != e.cauchyGroupCount {
			e.cauchyGroupStart = groupStart
			e.cauchyGroupCount = sumCount
			e.cauchyRow = 0
		}
		row = e.cauchyRow
		e.cauchyRow = protocol.Row((int(e.cauchyRow) + 1) % protocol.RowPeriod)
		symbol, err = e.encodeCauchyRow(sumStart, sumCount, int(row), shardLen)
	} else {
		row = e.row
		e.row = protocol.Row((int(e.row) + 1) % protocol.RowPeriod)
		symbol = e.encodeSiameseRow(sumStart, sumCount, ldpcCount, row, shardLen)
	}
	if err != nil {
		e.disable(err.Error())
		return nil, ErrDisabled
	}

	meta := wire.RecoveryMetadata{
		ColumnStart: e.win.column(sumStart),
		SumCount:    uint32(sumCount),
		LDPCCount:   uint32(ldpcCount),
		Row:         row,
	}
	return wire.EncodeRecoveryPacket(symbol, meta), nil
}

// encodeSiameseRow implements spec §4.4 steps 1-2: dense running-sum
// accumulation plus sparse LDPC taps.
func (e *Encoder) encodeSiameseRow(sumStart, sumCount, ldpcCount int, row protocol.Row, shardLen int) []byte {
	dst := make([]byte, shardLen)

	laneBiasedOrder := e.biasedLaneOrder()
	for _, lane := range laneBiasedOrder {
		rowgen.DenseFold(dst, shardLen, lane, row, func(k int) []byte {
			return e.win.lanes.Sum(lane, k)
		})
		if e.nackHint[lane] > 0 {
			e.nackHint[lane]-- // this row addressed one unit of the lane's reported deficit
		}
	}

	rx := rowgen.RowValue(row)
	elementStart := sumStart + sumCount - ldpcCount
	rowgen.WalkLDPCTaps(row, uint32(ldpcCount), func(offset int, scaled bool) {
		rec := e.win.record(elementStart + offset)
		if scaled {
			gf256.MulAddMem(dst, rx, rec, len(rec))
		} else {
			gf256.AddMem(dst, rec, len(rec))
		}
	})
	return dst
}

// biasedLaneOrder returns lane indices ordered to process lanes with
// outstanding NACK hints first. Iteration order over lanes does not
// change the XOR result (addition is commutative), so this is purely
// advisory bookkeeping — reordering has no effect on correctness or on the
// emitted bytes. Every lane with a positive hint is decremented once per
// row in encodeSiameseRow, whatever the order (spec §4.4).
func (e *Encoder) biasedLaneOrder() [protocol.LaneCount]int {
	var order [protocol.LaneCount]int
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && e.nackHint[order[j]] > e.nackHint[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// encodeCauchyRow implements spec §4.4 item 3.
func (e *Encoder) encodeCauchyRow(sumStart, sumCount, row int, shardLen int) ([]byte, error) {
	sources := make([][]byte, sumCount)
	for i := 0; i < sumCount; i++ {
		sources[i] = e.win.record(sumStart + i)
	}
	return e.cauchy.EncodeRow(sources, row%protocol.RowPeriod)
}

// Ack consumes a decoder-issued ack payload (spec §4.4's ack consumer):
// it trims originals the decoder confirms it no longer needs and folds
// the reported loss ranges into the per-lane NACK hint used by
// biasedLaneOrder. It returns the ack's next_expected column.
func (e *Encoder) Ack(payload []byte) (protocol.Column, error) {
	if err := e.checkDisabled(); err != nil {
		return 0, err
	}
	nextExpected, ranges, err := wire.DecodeAck(payload)
	if err != nil {
		return 0, err
	}
	e.acked = nextExpected
	if err := e.RemoveBefore(nextExpected); err != nil {
		return 0, err
	}
	for _, r := range ranges {
		for i := 0; i < r.Count; i++ {
			lane := protocol.Lane(r.Start.Add(i))
			e.nackHint[lane]++
		}
	}
	return nextExpected, nil
}
