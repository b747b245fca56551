package wire

import (
	"testing"

	"github.com/gofec/siamese/internal/protocol"
)

func TestOriginalRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{1},
		make([]byte, 127),
		make([]byte, 128),
		make([]byte, 16383),
		make([]byte, 16384),
		make([]byte, protocol.MaxPacketBytes),
	}
	for _, p := range payloads {
		for i := range p {
			p[i] = byte(i)
		}
		buf := EncodeOriginal(nil, p)
		got, hlen, err := DecodeOriginal(buf)
		if err != nil {
			t.Fatalf("len=%d: %v", len(p), err)
		}
		if hlen != OriginalHeaderLen(len(p)) {
			t.Fatalf("header len mismatch: got %d want %d", hlen, OriginalHeaderLen(len(p)))
		}
		if len(got) != len(p) {
			t.Fatalf("payload len mismatch: got %d want %d", len(got), len(p))
		}
		for i := range p {
			if got[i] != p[i] {
				t.Fatalf("payload mismatch at %d", i)
			}
		}
	}
}

func TestOriginalTruncated(t *testing.T) {
	buf := EncodeOriginal(nil, []byte{1, 2, 3, 4})
	if _, _, err := DecodeOriginal(buf[:2]); err == nil {
		t.Fatal("expected error for truncated buffer")
	}
}

func TestRecoveryFooterBareRoundTrip(t *testing.T) {
	m := RecoveryMetadata{ColumnStart: 12345, SumCount: 1, LDPCCount: 1, Row: 0}
	symbol := []byte{9, 8, 7, 6}
	buf := EncodeRecoveryPacket(symbol, m)
	gotSym, gotMeta, err := DecodeRecoveryPacket(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(gotSym) != string(symbol) {
		t.Fatalf("symbol mismatch: %v", gotSym)
	}
	if gotMeta != m {
		t.Fatalf("meta mismatch: %+v want %+v", gotMeta, m)
	}
	if !gotMeta.IsBare() {
		t.Fatal("expected IsBare")
	}
}

func TestRecoveryFooterFullRoundTrip(t *testing.T) {
	cases := []RecoveryMetadata{
		{ColumnStart: 0, SumCount: 10, LDPCCount: 3, Row: 0},
		{ColumnStart: 1<<22 - 1, SumCount: 300, LDPCCount: 300, Row: 255},
		{ColumnStart: 128, SumCount: 2, LDPCCount: 1, Row: 17},
	}
	for _, m := range cases {
		symbol := []byte{1, 2, 3}
		buf := EncodeRecoveryPacket(symbol, m)
		gotSym, gotMeta, err := DecodeRecoveryPacket(buf)
		if err != nil {
			t.Fatalf("%+v: %v", m, err)
		}
		if string(gotSym) != string(symbol) {
			t.Fatalf("symbol mismatch for %+v", m)
		}
		if gotMeta != m {
			t.Fatalf("meta mismatch: got %+v want %+v", gotMeta, m)
		}
	}
}

func TestRecoveryFooterCorruption(t *testing.T) {
	m := RecoveryMetadata{ColumnStart: 5, SumCount: 10, LDPCCount: 3, Row: 1}
	buf := EncodeRecoveryPacket([]byte{1, 2, 3}, m)
	// Corrupt the footer-length byte.
	corrupt := append([]byte(nil), buf...)
	corrupt[len(corrupt)-1] = 0xFF
	if _, _, err := DecodeRecoveryPacket(corrupt); err == nil {
		t.Fatal("expected error decoding corrupted footer")
	}
}

func TestAckRoundTrip(t *testing.T) {
	ranges := []LossRange{
		{Start: 100, Count: 5},
		{Start: 110, Count: 1},
		{Start: 200, Count: 20},
	}
	buf := EncodeAck(50, ranges, 0)
	gotNext, gotRanges, err := DecodeAck(buf)
	if err != nil {
		t.Fatal(err)
	}
	if gotNext != 50 {
		t.Fatalf("nextExpected = %d, want 50", gotNext)
	}
	if len(gotRanges) != len(ranges) {
		t.Fatalf("got %d ranges, want %d", len(gotRanges), len(ranges))
	}
	for i, r := range ranges {
		if gotRanges[i] != r {
			t.Fatalf("range %d: got %+v want %+v", i, gotRanges[i], r)
		}
	}
}

func TestAckTruncatesAtLimit(t *testing.T) {
	ranges := []LossRange{
		{Start: 10, Count: 1},
		{Start: 20, Count: 1},
		{Start: 30, Count: 1},
	}
	full := EncodeAck(0, ranges, 0)
	truncated := EncodeAck(0, ranges, len(full)-1)
	if len(truncated) >= len(full) {
		t.Fatalf("expected truncation: len(truncated)=%d len(full)=%d", len(truncated), len(full))
	}
	_, gotRanges, err := DecodeAck(truncated)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotRanges) >= len(ranges) {
		t.Fatalf("expected fewer ranges after truncation, got %d", len(gotRanges))
	}
}
