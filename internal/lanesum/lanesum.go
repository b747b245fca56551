// Package lanesum implements the per-lane running-sum bookkeeping spec.md
// §3 and §4.3 describe: for each of the LaneCount lanes, three XOR
// accumulators S0, S1, S2 — respectively the lane's payload XOR, the
// CX-weighted XOR, and the CX²-weighted XOR. Both the encoder window
// (which folds every column in eagerly as it arrives) and the decoder
// window (which folds received columns in lazily, on demand, skipping
// losses) are built on the same fold primitive, since spec §9 notes
// remove_before's sum rollback reuses "the same code path as add but with
// XOR's self-inverse property" — FoldIn below is that one code path.
package lanesum

import (
	"github.com/gofec/siamese/internal/gf256"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
)

// Lanes holds the running sums for every lane.
type Lanes struct {
	alloc *slab.Allocator
	sums  [protocol.LaneCount][protocol.SumsPerLane][]byte
}

// New returns a Lanes with no sums yet materialized; buffers are created
// lazily on first FoldIn, sized to the largest payload folded into that
// lane so far (spec §4.3: "grown and zero-padded to the maximum payload
// length ever seen in that lane").
func New(alloc *slab.Allocator) *Lanes {
	return &Lanes{alloc: alloc}
}

// Sum returns the current buffer for (lane, k), or nil if nothing has
// been folded into it yet.
func (l *Lanes) Sum(lane, k int) []byte {
	return l.sums[lane][k]
}

// FoldIn XORs payload's contribution into lane's three running sums,
// weighted by cx (the column's tag) to the 0th, 1st, and 2nd power. This
// is its own inverse: calling it twice with the same (lane, cx, payload)
// restores the prior state, which is how remove_before un-folds a
// departing column's contribution.
func (l *Lanes) FoldIn(lane int, cx byte, payload []byte) {
	n := len(payload)
	s := &l.sums[lane]
	for k := 0; k < protocol.SumsPerLane; k++ {
		if len(s[k]) < n {
			s[k] = l.alloc.GrowZeroPadded(s[k], n)
		}
	}
	gf256.AddMem(s[0], payload, n)
	gf256.MulAddMem(s[1], cx, payload, n)
	gf256.MulAddMem(s[2], gf256.Sqr(cx), payload, n)
}

// Reset clears a lane's sums back to empty, releasing their buffers.
func (l *Lanes) Reset(lane int) {
	s := &l.sums[lane]
	for k := range s {
		if s[k] != nil {
			l.alloc.Free(s[k])
			s[k] = nil
		}
	}
}

// ResetAll clears every lane.
func (l *Lanes) ResetAll() {
	for lane := range l.sums {
		l.Reset(lane)
	}
}

// ColumnTag returns CX(column), a deterministic non-zero GF(256) element
// derived from the column number (spec §3). It must match byte-for-byte
// between encoder and decoder, so it lives in internal/gf256's sibling
// rather than being recomputed independently by each side — both import
// this function from here.
func ColumnTag(c protocol.Column) byte {
	v := uint32(c)*2654435761 + 1
	b := byte(v>>24) ^ byte(v>>8)
	if b == 0 {
		b = 1
	}
	return b
}
