package decoder

import (
	"bytes"
	"testing"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/slab"
	"github.com/gofec/siamese/internal/wire"
)

func newTestWindow() *window {
	return newWindow(slab.New())
}

func TestWindowAddOriginalRejectsDuplicateAndStale(t *testing.T) {
	w := newTestWindow()
	if _, err := w.addOriginal(0, []byte{1, 2, 3}); err != nil {
		t.Fatalf("addOriginal: %v", err)
	}
	if _, err := w.addOriginal(0, []byte{1, 2, 3}); err != ErrDuplicate {
		t.Fatalf("duplicate column: got %v, want ErrDuplicate", err)
	}
	w.removeBefore(1)
	if _, err := w.addOriginal(0, []byte{9}); err != ErrDuplicate {
		t.Fatalf("stale column after removeBefore: got %v, want ErrDuplicate", err)
	}
}

func TestWindowFillInvokesOnFillAndAdvancesNextExpected(t *testing.T) {
	w := newTestWindow()
	var filled []int
	w.onFill = func(e int) { filled = append(filled, e) }

	rec := wire.EncodeOriginal(nil, []byte{5})
	w.fill(1, rec)
	if w.nextExpected != 0 {
		t.Fatalf("nextExpected = %d, want 0 (element 0 still missing)", w.nextExpected)
	}
	w.fill(0, wire.EncodeOriginal(nil, []byte{4}))
	if w.nextExpected != 2 {
		t.Fatalf("nextExpected = %d, want 2 (elements 0,1 both known)", w.nextExpected)
	}
	if len(filled) != 2 {
		t.Fatalf("onFill called %d times, want 2", len(filled))
	}
}

func TestWindowRangeLostCountsOnlyMissingElements(t *testing.T) {
	w := newTestWindow()
	for _, col := range []int{0, 2, 4} {
		if _, err := w.addOriginal(protocol.Column(col), []byte{byte(col)}); err != nil {
			t.Fatalf("addOriginal(%d): %v", col, err)
		}
	}
	if got := w.rangeLost(0, 5); got != 2 {
		t.Fatalf("rangeLost(0,5) = %d, want 2 (elements 1 and 3 missing)", got)
	}
	if got := w.rangeLost(0, 8); got != 5 {
		t.Fatalf("rangeLost(0,8) = %d, want 5 (2 known gaps plus 3 not-yet-grown elements 5,6,7)", got)
	}
}

func TestWindowRemoveBeforeShiftsIndicesAndFreesBuffers(t *testing.T) {
	w := newTestWindow()
	for i := 0; i < 5; i++ {
		if _, err := w.addOriginal(protocol.Column(i), []byte{byte(i)}); err != nil {
			t.Fatalf("addOriginal(%d): %v", i, err)
		}
	}
	w.removeBefore(2)
	if w.len() != 3 {
		t.Fatalf("len() after removeBefore(2) = %d, want 3", w.len())
	}
	payload, _, err := wire.DecodeOriginal(w.records[0])
	if err != nil {
		t.Fatalf("DecodeOriginal: %v", err)
	}
	if !bytes.Equal(payload, []byte{2}) {
		t.Fatalf("records[0] payload = %v, want [2] (old element 2 shifted to index 0)", payload)
	}
}
