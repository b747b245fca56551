// Package protocol holds the numeric types and constants shared across the
// Siamese codec: column numbering, the wire-format size limits, and the
// tunables spec.md fixes by name.
package protocol

// Column is a 22-bit packet sequence number, assigned monotonically by the
// encoder and wrapping modulo P.
type Column uint32

// P is the modulus of the column space: 2^22.
const P = 1 << 22

// ColumnMask keeps a Column value inside [0, P).
const ColumnMask = P - 1

// Add returns column c advanced by delta, wrapping at P.
func (c Column) Add(delta int) Column {
	return Column((uint32(c) + uint32(int64(delta)&(P-1))) & ColumnMask)
}

// Delta returns the signed modular distance b-a in the half-open range
// [-P/2, P/2). A positive result means b comes after a.
func Delta(a, b Column) int {
	d := (int32(b) - int32(a)) & ColumnMask
	if d >= P/2 {
		d -= P
	}
	return int(d)
}

// Before reports whether a precedes b in modular column order.
func Before(a, b Column) bool {
	return Delta(a, b) > 0
}

// Element is a window-relative position: column - columnStart (mod P).
type Element uint32

// Row identifies a recovery packet's opcode/multiplier selection. It wraps
// at ROW_PERIOD.
type Row uint16

// ROW_PERIOD is the modulus of the row counter (spec ROW_PERIOD).
const RowPeriod = 256

// Lane count L: column % L selects a lane.
const LaneCount = 8

// SumsPerLane is S: the number of running sums (powers of CX) kept per lane.
const SumsPerLane = 3

// PairAddRate controls the density of LDPC sparse taps: pair_count =
// ceil(ldpcCount / PairAddRate).
const PairAddRate = 16

// LDPCTargetColumns is the encoder's target ldpc_count: a small, fixed
// trailing suffix of the sum region, independent of window size, so a
// recovery row's sparse part costs O(LDPCTargetColumns/PairAddRate)
// regardless of how large the window has grown (spec §1, §4.4: row
// generation cost is "independent of the total window size"). Clamped to
// sum_count when the window is smaller than this.
const LDPCTargetColumns = 64

// SubwindowSize is the number of elements per decoder subwindow. Must be a
// multiple of LaneCount.
const SubwindowSize = 64

// RemoveThreshold is the minimum kept element prefix before the decoder
// will shift its subwindow ring forward. Must be >= SubwindowSize and a
// multiple of LaneCount.
const RemoveThreshold = 256

// CauchyThreshold is the sum_count at or below which the small-window
// Cauchy/parity construction replaces the Siamese running-sum construction.
const CauchyThreshold = 8

// MaxPacketBytes is the maximum original payload length.
const MaxPacketBytes = 65535

// MaxPackets is the encoder's hard cap on live originals in a window.
const MaxPackets = 32768

// Lane returns the lane index for a column.
func Lane(c Column) int {
	return int(uint32(c) % LaneCount)
}
