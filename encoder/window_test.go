package encoder

import (
	"testing"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
)

func TestWindowAddAssignsColumnsAndFoldsLanes(t *testing.T) {
	w := newWindow(slab.New())
	for i := 0; i < 4; i++ {
		c, err := w.add([]byte{byte(i)})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if c != protocol.Column(i) {
			t.Fatalf("add #%d: column = %d, want %d", i, c, i)
		}
	}
	for lane := 0; lane < protocol.LaneCount; lane++ {
		if s := w.lanes.Sum(lane, 0); lane < 4 && len(s) == 0 {
			t.Fatalf("lane %d: expected a folded sum after 4 adds", lane)
		}
	}
}

func TestWindowRemoveBeforeRollsSumsBackToEmpty(t *testing.T) {
	w := newWindow(slab.New())
	for i := 0; i < protocol.LaneCount; i++ {
		if _, err := w.add([]byte{byte(i), byte(i + 1)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	w.removeBefore(protocol.Column(protocol.LaneCount))
	if w.count() != 0 {
		t.Fatalf("count after full drain = %d, want 0", w.count())
	}
	for lane := 0; lane < protocol.LaneCount; lane++ {
		for k := 0; k < protocol.SumsPerLane; k++ {
			for _, b := range w.lanes.Sum(lane, k) {
				if b != 0 {
					t.Fatalf("lane %d sum %d not fully rolled back: %v", lane, k, w.lanes.Sum(lane, k))
				}
			}
		}
	}
}

func TestWindowRemoveBeforeNoOpGoingBackwards(t *testing.T) {
	w := newWindow(slab.New())
	for i := 0; i < 5; i++ {
		if _, err := w.add([]byte{byte(i)}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	w.removeBefore(3)
	if w.count() != 2 {
		t.Fatalf("count = %d, want 2", w.count())
	}
	w.removeBefore(0) // strictly earlier than columnStart now (3): no-op
	if w.count() != 2 {
		t.Fatalf("count after backwards removeBefore = %d, want 2", w.count())
	}
}

func TestWindowRejectsInvalidPayloadLengths(t *testing.T) {
	w := newWindow(slab.New())
	if _, err := w.add(nil); err != ErrInvalidPayload {
		t.Fatalf("nil payload: got %v, want ErrInvalidPayload", err)
	}
	if _, err := w.add(make([]byte, protocol.MaxPacketBytes+1)); err != ErrInvalidPayload {
		t.Fatalf("oversize payload: got %v, want ErrInvalidPayload", err)
	}
}
