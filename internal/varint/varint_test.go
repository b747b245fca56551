package varint

import (
	"bytes"
	"testing"
)

func TestRoundTripBoundaries(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 1<<22 - 1, 65535, 1 << 32}
	for _, v := range cases {
		var b []byte
		b = AppendUvarint(b, v)
		if len(b) != Len(v) {
			t.Fatalf("Len(%d) = %d, but AppendUvarint wrote %d bytes", v, Len(v), len(b))
		}
		got, err := ReadUvarint(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %v -> %d", v, b, got)
		}
	}
}

func TestReadUvarintFromBytesReportsConsumed(t *testing.T) {
	var b []byte
	b = AppendUvarint(b, 300)
	b = append(b, 0xFF) // trailing data that must not be consumed
	v, n, err := ReadUvarintFromBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if v != 300 {
		t.Fatalf("v = %d, want 300", v)
	}
	if n != len(b)-1 {
		t.Fatalf("consumed %d bytes, want %d", n, len(b)-1)
	}
}

func TestReadUvarintTruncated(t *testing.T) {
	b := []byte{0x80, 0x80}
	if _, err := ReadUvarint(bytes.NewReader(b)); err == nil {
		t.Fatal("expected error on truncated varint")
	}
}
