package bitfield

import "testing"

func TestSetClearGet(t *testing.T) {
	bf := New(100)
	if bf.Get(5) {
		t.Fatal("expected bit 5 clear")
	}
	bf.Set(5)
	if !bf.Get(5) {
		t.Fatal("expected bit 5 set")
	}
	bf.Clear(5)
	if bf.Get(5) {
		t.Fatal("expected bit 5 clear after Clear")
	}
}

func TestPopCount(t *testing.T) {
	bf := New(200)
	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 199} {
		bf.Set(i)
	}
	if got, want := bf.PopCount(), 8; got != want {
		t.Fatalf("PopCount = %d, want %d", got, want)
	}
}

func TestPopCountRange(t *testing.T) {
	bf := New(200)
	bf.SetRange(10, 70)
	if got, want := bf.PopCountRange(0, 200), 60; got != want {
		t.Fatalf("PopCountRange = %d, want %d", got, want)
	}
	if got, want := bf.PopCountRange(10, 70), 60; got != want {
		t.Fatalf("PopCountRange(10,70) = %d, want %d", got, want)
	}
	if got, want := bf.PopCountRange(40, 50), 10; got != want {
		t.Fatalf("PopCountRange(40,50) = %d, want %d", got, want)
	}
}

func TestFirstClearAndFirstSet(t *testing.T) {
	bf := New(130)
	bf.SetRange(0, 64)
	if got, want := bf.FirstClear(0), 64; got != want {
		t.Fatalf("FirstClear(0) = %d, want %d", got, want)
	}
	bf.Set(70)
	if got, want := bf.FirstSet(65), 70; got != want {
		t.Fatalf("FirstSet(65) = %d, want %d", got, want)
	}
	if got, want := bf.FirstSet(71), 130; got != want {
		t.Fatalf("FirstSet(71) = %d, want %d", got, want)
	}
}

func TestShiftDown(t *testing.T) {
	bf := New(130)
	bf.Set(10)
	bf.Set(100)
	bf.ShiftDown(50)
	if bf.Len() != 80 {
		t.Fatalf("Len() = %d, want 80", bf.Len())
	}
	if bf.Get(100 - 50) != true {
		t.Fatalf("expected bit %d set after shift", 100-50)
	}
	if bf.PopCount() != 1 {
		t.Fatalf("PopCount = %d, want 1", bf.PopCount())
	}
}

func TestClearRange(t *testing.T) {
	bf := New(100)
	bf.SetRange(0, 100)
	bf.ClearRange(20, 30)
	if got, want := bf.PopCount(), 90; got != want {
		t.Fatalf("PopCount = %d, want %d", got, want)
	}
}
