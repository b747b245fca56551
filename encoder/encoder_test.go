package encoder

import (
	"bytes"
	"testing"

	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/wire"
)

func TestAddAssignsSequentialColumns(t *testing.T) {
	e := New(Config{})
	for i := 0; i < 5; i++ {
		c, err := e.Add([]byte{byte(i)})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if c != protocol.Column(i) {
			t.Fatalf("Add #%d: got column %d, want %d", i, c, i)
		}
	}
}

func TestAddRejectsOversizeAndEmptyPayload(t *testing.T) {
	e := New(Config{})
	if _, err := e.Add(nil); err != ErrInvalidPayload {
		t.Fatalf("empty payload: got %v, want ErrInvalidPayload", err)
	}
	if _, err := e.Add(make([]byte, protocol.MaxPacketBytes+1)); err != ErrInvalidPayload {
		t.Fatalf("oversize payload: got %v, want ErrInvalidPayload", err)
	}
}

func TestEncodeNeedsMoreDataOnEmptyWindow(t *testing.T) {
	e := New(Config{})
	if _, err := e.Encode(); err != ErrNeedMoreData {
		t.Fatalf("got %v, want ErrNeedMoreData", err)
	}
}

func TestEncodeProducesDecodableFooter(t *testing.T) {
	e := New(Config{})
	for i := 0; i < 20; i++ {
		if _, err := e.Add([]byte{byte(i), byte(i * 2)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	packet, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	symbol, meta, err := wire.DecodeRecoveryPacket(packet)
	if err != nil {
		t.Fatalf("DecodeRecoveryPacket: %v", err)
	}
	if len(symbol) == 0 {
		t.Fatal("expected non-empty recovery symbol")
	}
	if meta.ColumnStart != 0 {
		t.Fatalf("ColumnStart = %d, want 0", meta.ColumnStart)
	}
	if int(meta.SumCount) != 20 {
		t.Fatalf("SumCount = %d, want 20", meta.SumCount)
	}
}

func TestEncodeSwitchesToCauchyForSmallWindow(t *testing.T) {
	e := New(Config{CauchyThreshold: 4})
	for i := 0; i < 3; i++ {
		if _, err := e.Add([]byte{byte(i)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestRemoveBeforeIsIdempotentAndOrderIndependent(t *testing.T) {
	e := New(Config{})
	for i := 0; i < 10; i++ {
		if _, err := e.Add([]byte{byte(i)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := e.RemoveBefore(5); err != nil {
		t.Fatalf("RemoveBefore: %v", err)
	}
	if got := e.win.count(); got != 5 {
		t.Fatalf("after RemoveBefore(5): count = %d, want 5", got)
	}
	// Repeating with the same or an earlier column is a no-op.
	if err := e.RemoveBefore(5); err != nil {
		t.Fatalf("RemoveBefore repeat: %v", err)
	}
	if err := e.RemoveBefore(2); err != nil {
		t.Fatalf("RemoveBefore earlier: %v", err)
	}
	if got := e.win.count(); got != 5 {
		t.Fatalf("after no-op removals: count = %d, want 5", got)
	}
}

func TestAckTrimsWindowAndRecordsNackHint(t *testing.T) {
	e := New(Config{})
	for i := 0; i < 10; i++ {
		if _, err := e.Add([]byte{byte(i)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	ackPayload := wire.EncodeAck(4, []wire.LossRange{{Start: 5, Count: 2}}, 0)
	next, err := e.Ack(ackPayload)
	if err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if next != 4 {
		t.Fatalf("Ack next_expected = %d, want 4", next)
	}
	if got := e.win.count(); got != 6 {
		t.Fatalf("after Ack: count = %d, want 6", got)
	}
	total := 0
	for _, v := range e.nackHint {
		total += v
	}
	if total != 2 {
		t.Fatalf("nackHint total = %d, want 2", total)
	}
}

func TestRetransmitCyclesWithoutRepeatingEarly(t *testing.T) {
	e := New(Config{})
	cols := make(map[protocol.Column]bool)
	for i := 0; i < 6; i++ {
		c, err := e.Add([]byte{byte(i)})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		cols[c] = true
	}
	seen := make(map[protocol.Column]bool)
	for i := 0; i < 6; i++ {
		packet, err := e.Retransmit()
		if err != nil {
			t.Fatalf("Retransmit: %v", err)
		}
		_, meta, err := wire.DecodeRecoveryPacket(packet)
		if err != nil {
			t.Fatalf("DecodeRecoveryPacket: %v", err)
		}
		if !meta.IsBare() {
			t.Fatalf("Retransmit packet %d: expected bare metadata, got %+v", i, meta)
		}
		if seen[meta.ColumnStart] {
			t.Fatalf("column %d retransmitted twice before full cycle", meta.ColumnStart)
		}
		seen[meta.ColumnStart] = true
	}
	if len(seen) != len(cols) {
		t.Fatalf("cycled over %d columns, want %d", len(seen), len(cols))
	}
	// Cursor wraps: the next call revisits the first column again.
	packet, err := e.Retransmit()
	if err != nil {
		t.Fatalf("Retransmit after wrap: %v", err)
	}
	if _, _, err := wire.DecodeRecoveryPacket(packet); err != nil {
		t.Fatalf("DecodeRecoveryPacket after wrap: %v", err)
	}
}

func TestRetransmitNeedsMoreDataOnEmptyWindow(t *testing.T) {
	e := New(Config{})
	if _, err := e.Retransmit(); err != ErrNeedMoreData {
		t.Fatalf("got %v, want ErrNeedMoreData", err)
	}
}

func TestDisabledEncoderRejectsAllCalls(t *testing.T) {
	e := New(Config{})
	e.disable("test induced failure")
	if _, err := e.Add([]byte{1}); err != ErrDisabled {
		t.Fatalf("Add on disabled: got %v", err)
	}
	if _, err := e.Encode(); err != ErrDisabled {
		t.Fatalf("Encode on disabled: got %v", err)
	}
	if _, err := e.Retransmit(); err != ErrDisabled {
		t.Fatalf("Retransmit on disabled: got %v", err)
	}
	if err := e.RemoveBefore(1); err != ErrDisabled {
		t.Fatalf("RemoveBefore on disabled: got %v", err)
	}
	if _, err := e.Ack(wire.EncodeAck(0, nil, 0)); err != ErrDisabled {
		t.Fatalf("Ack on disabled: got %v", err)
	}
}

func TestBiasedLaneOrderPrioritizesHigherHint(t *testing.T) {
	e := New(Config{})
	e.nackHint[3] = 5
	e.nackHint[1] = 2
	order := e.biasedLaneOrder()
	if order[0] != 3 {
		t.Fatalf("order[0] = %d, want 3 (highest hint)", order[0])
	}
	if order[1] != 1 {
		t.Fatalf("order[1] = %d, want 1 (second highest hint)", order[1])
	}
	// every lane still appears exactly once
	var seen [protocol.LaneCount]bool
	for _, lane := range order {
		if seen[lane] {
			t.Fatalf("lane %d appears twice in order", lane)
		}
		seen[lane] = true
	}
}

func TestEncodeIsDeterministicGivenSameState(t *testing.T) {
	mk := func() *Encoder {
		e := New(Config{})
		for i := 0; i < 12; i++ {
			payload := bytes.Repeat([]byte{byte(i + 1)}, 4)
			if _, err := e.Add(payload); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
		return e
	}
	a, b := mk(), mk()
	pa, err := a.Encode()
	if err != nil {
		t.Fatalf("Encode a: %v", err)
	}
	pb, err := b.Encode()
	if err != nil {
		t.Fatalf("Encode b: %v", err)
	}
	if !bytes.Equal(pa, pb) {
		t.Fatal("two encoders with identical history produced different recovery packets")
	}
}
