// Package encoder implements the sender half of the Siamese codec: the
// sliding window of originals plus per-lane running sums (spec §4.3,
// component F) and the recovery-row generator, retransmit iterator, and
// ack consumer built on top of it (spec §4.4, component G).
package encoder

import (
	"errors"

	"github.com/gofec/siamese/internal/lanesum"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
	"github.com/gofec/siamese/internal/wire"
)

// ErrWindowFull is returned when adding an original would exceed
// protocol.MaxPackets live originals (spec §4.3 step 1).
var ErrWindowFull = errors.New("encoder: window full")

// ErrInvalidPayload is returned for a payload outside [1, MaxPacketBytes].
var ErrInvalidPayload = errors.New("encoder: invalid payload length")

// window is the encoder's sliding store of live originals plus their
// per-lane running sums. Every column the encoder has assigned and not
// yet removed is stored eagerly and eagerly folded into its lane's sums —
// unlike the decoder's window, the encoder never has a "hole": it created
// every original itself (spec §4.3).
type window struct {
	alloc *slab.Allocator
	lanes *lanesum.Lanes

	columnStart protocol.Column
	// records holds length-prefixed original buffers (spec §3: length
	// field + payload), index i is element i, i.e. column columnStart+i.
	records [][]byte
}

func newWindow(alloc *slab.Allocator) *window {
	return &window{
		alloc: alloc,
		lanes: lanesum.New(alloc),
	}
}

func (w *window) count() int { return len(w.records) }

func (w *window) nextColumn() protocol.Column {
	return w.columnStart.Add(w.count())
}

// add stores payload as a new original at the window's next column,
// folding it into its lane's running sums, and returns the assigned
// column.
func (w *window) add(payload []byte) (protocol.Column, error) {
	if len(payload) == 0 || len(payload) > protocol.MaxPacketBytes {
		return 0, ErrInvalidPayload
	}
	if w.count() >= protocol.MaxPackets {
		return 0, ErrWindowFull
	}
	column := w.nextColumn()
	record := wire.EncodeOriginal(w.alloc.Allocate(0), payload)
	w.records = append(w.records, record)

	lane := protocol.Lane(column)
	cx := lanesum.ColumnTag(column)
	w.lanes.FoldIn(lane, cx, record)
	return column, nil
}

// removeBefore drops every original strictly before c, rolling each
// dropped column's contribution back out of its lane's sums (spec §4.3:
// "rolls the sum prefix off the front of each lane by XOR-removing each
// dropped column's contribution once").
func (w *window) removeBefore(c protocol.Column) {
	delta := protocol.Delta(w.columnStart, c)
	if delta <= 0 {
		return // spec §8 property 7: remove_before(columnStart) is a no-op
	}
	if delta > w.count() {
		delta = w.count()
	}
	for i := 0; i < delta; i++ {
		column := w.columnStart.Add(i)
		lane := protocol.Lane(column)
		cx := lanesum.ColumnTag(column)
		w.lanes.FoldIn(lane, cx, w.records[i]) // self-inverse: removes the fold
		w.alloc.Free(w.records[i])
	}
	w.records = w.records[delta:]
	w.columnStart = w.columnStart.Add(delta)
}

// record returns the stored length-prefixed buffer for element i.
func (w *window) record(i int) []byte { return w.records[i] }

// column returns the column number at element i.
func (w *window) column(i int) protocol.Column { return w.columnStart.Add(i) }
