// Package decoder implements the receiver half of the Siamese codec: the
// receive window with its presence bitmap and elimination running sums
// (component H), the sorted recovery-packet list (component I), the
// checked-region cache (component K support), the incremental recovery
// matrix with resumable Gaussian elimination (component J), and the
// driver that ties them into the public decode pipeline (component K).
package decoder

import (
	"errors"

	"github.com/gofec/siamese/internal/bitfield"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
	"github.com/gofec/siamese/internal/wire"
)

// ErrDuplicate is returned for an original already known to the window,
// or one whose column lies before column_start (spec §4.5 add_original).
var ErrDuplicate = errors.New("decoder: duplicate original")

// ErrInvalidPayload is returned for a payload outside [1, MaxPacketBytes].
var ErrInvalidPayload = errors.New("decoder: invalid payload length")

// window holds every original the decoder currently knows about — either
// received directly or recovered by solving — indexed by element. Unlike
// the encoder's window, it keeps no running lane sums of its own: a
// recovery's sum region is a snapshot of the *encoder's* window at the
// time it was generated, which may cover a different span than anything
// the decoder's whole history would give a single global sum over, so
// elimination (spec §4.8 step 3) instead rebuilds a scoped sum per row
// via elimSums (decoder/elimsums.go), the get_sum/start_sums cache spec
// §4.5 describes.
type window struct {
	alloc   *slab.Allocator
	present *bitfield.Bitfield
	records [][]byte

	columnStart  protocol.Column
	nextExpected int

	// onFill is invoked after any element becomes known, with its
	// element index, so the driver can invalidate a checked region that
	// the new data falls inside of (spec §4.5: "if the added element
	// falls inside the current checked region, invalidate it").
	onFill func(element int)
}

func newWindow(alloc *slab.Allocator) *window {
	return &window{
		alloc:   alloc,
		present: bitfield.New(0),
	}
}

func (w *window) len() int { return len(w.records) }

func (w *window) grow(n int) {
	if n <= len(w.records) {
		return
	}
	grown := make([][]byte, n)
	copy(grown, w.records)
	w.records = grown
	w.present.Grow(n)
}

// elementOf returns the element index for column, and whether it still
// lies within the live window (false if it precedes column_start).
func (w *window) elementOf(column protocol.Column) (int, bool) {
	delta := protocol.Delta(w.columnStart, column)
	if delta < 0 {
		return 0, false
	}
	return delta, true
}

// addOriginal stores a freshly-received original. It reports ErrDuplicate
// for a column before column_start or already present.
func (w *window) addOriginal(column protocol.Column, payload []byte) (element int, err error) {
	if len(payload) == 0 || len(payload) > protocol.MaxPacketBytes {
		return 0, ErrInvalidPayload
	}
	element, ok := w.elementOf(column)
	if !ok {
		return 0, ErrDuplicate
	}
	w.grow(element + 1)
	if w.present.Get(element) {
		return element, ErrDuplicate
	}
	record := wire.EncodeOriginal(nil, payload)
	w.fill(element, record)
	return element, nil
}

// fill marks element known with the given length-prefixed record. Used
// both by addOriginal and by the solve pipeline's back-substitution step,
// which recovers an original's bytes rather than receiving them off the
// wire.
func (w *window) fill(element int, record []byte) {
	w.grow(element + 1)
	w.records[element] = record
	w.present.Set(element)
	if element == w.nextExpected {
		w.nextExpected = w.present.FirstClear(w.nextExpected)
	}
	if w.onFill != nil {
		w.onFill(element)
	}
}

// column returns the column number for element i (valid whether or not
// the element is present).
func (w *window) column(i int) protocol.Column { return w.columnStart.Add(i) }

// rangeLost returns the number of elements in [a, b) that are not yet
// known. Elements past the window's current length haven't been grown
// into existence yet, which means they're unknown too, not vacuously
// present — so the tail past present.Len() counts as fully lost rather
// than being clamped away.
func (w *window) rangeLost(a, b int) int {
	if a >= b {
		return 0
	}
	n := w.present.Len()
	lost := 0
	if b > n {
		tailStart := a
		if tailStart < n {
			tailStart = n
		}
		lost += b - tailStart
		b = n
	}
	if a < b {
		lost += (b - a) - w.present.PopCountRange(a, b)
	}
	return lost
}

// findNextLost returns the smallest element >= from that is not known.
func (w *window) findNextLost(from int) int { return w.present.FirstClear(from) }

// findNextGot returns the smallest element >= from that is known.
func (w *window) findNextGot(from int) int { return w.present.FirstSet(from) }

// removeBefore drops the first delta elements, freeing their buffers and
// shifting every index-based structure the window owns down by delta
// (spec §4.9's decrement step for the window itself; recovery list /
// checked region / matrix counters are decremented separately by the
// driver).
func (w *window) removeBefore(delta int) {
	if delta <= 0 {
		return
	}
	if delta > len(w.records) {
		delta = len(w.records)
	}
	for i := 0; i < delta; i++ {
		if !w.present.Get(i) {
			continue
		}
		w.alloc.Free(w.records[i])
	}
	w.records = append([][]byte(nil), w.records[delta:]...)
	w.present.ShiftDown(delta)
	w.columnStart = w.columnStart.Add(delta)
	w.nextExpected -= delta
	if w.nextExpected < 0 {
		w.nextExpected = 0
	}
}
