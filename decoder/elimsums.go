package decoder

import (
	"github.com/gofec/siamese/internal/lanesum"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
)

// elimSums is the scoped running-sum cache elimination (spec §4.8 step 3)
// reads from, implementing spec §4.5's start_sums/get_sum operations
// literally. A recovery packet's sum region [sumStart, sumEnd) is a
// snapshot of the encoder's window at the time the packet was generated;
// the decoder's own window may have grown past either edge by the time
// elimination runs, so these sums cannot be the eagerly-folded running
// totals the encoder keeps (see window.go's doc comment). Instead a
// single cursor is rebased to a row's sum_start and extended forward
// lazily, one element at a time, as elimination asks for sums over wider
// and wider prefixes of that row's region.
type elimSums struct {
	lanes    *lanesum.Lanes
	sumStart int
	sumEnd   int
}

func newElimSums(alloc *slab.Allocator) *elimSums {
	return &elimSums{lanes: lanesum.New(alloc)}
}

// startSums rebases the cache to start, discarding whatever was folded in
// for a different starting point. A row sharing the same sum_start as the
// previous row reuses the cache as-is (spec §4.5: rows in the recovery
// list are processed in ascending order, and adjacent rows very often
// share a sum_start).
func (s *elimSums) startSums(start int) {
	if s.lanes != nil && s.sumStart == start && s.sumEnd >= start {
		return
	}
	s.lanes.ResetAll()
	s.sumStart = start
	s.sumEnd = start
}

// extendTo folds every known element in [sumEnd, end) into its own lane,
// advancing sumEnd to end regardless of whether some elements in that
// range are still lost — a lost element contributes nothing (it isn't
// part of the dense running sum yet), and elimination accounts for it
// separately as a matrix column rather than expecting get_sum to supply
// it.
func (s *elimSums) extendTo(w *window, end int) {
	if end <= s.sumEnd {
		return
	}
	for el := s.sumEnd; el < end; el++ {
		if el < w.len() && w.present.Get(el) {
			column := w.column(el)
			lane := protocol.Lane(column)
			cx := lanesum.ColumnTag(column)
			s.lanes.FoldIn(lane, cx, w.records[el])
		}
	}
	s.sumEnd = end
}

// getSum returns lane k's running sum over [sumStart, end), extending the
// cache forward as needed. Callers must have already called startSums
// with this row's sum_start.
func (s *elimSums) getSum(w *window, lane, k, end int) []byte {
	s.extendTo(w, end)
	return s.lanes.Sum(lane, k)
}
