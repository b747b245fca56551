package slab

import "testing"

func TestAllocateReturnsRequestedLength(t *testing.T) {
	a := New()
	b := a.Allocate(100)
	if len(b) != 100 {
		t.Fatalf("len = %d, want 100", len(b))
	}
}

func TestReallocateZeroPadsNewBytes(t *testing.T) {
	a := New()
	b := a.Allocate(4)
	copy(b, []byte{1, 2, 3, 4})
	b = a.Reallocate(b, 8, ZeroPad)
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	for i := 4; i < 8; i++ {
		if b[i] != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b[i])
		}
	}
	for i := 0; i < 4; i++ {
		if b[i] != byte(i+1) {
			t.Fatalf("byte %d = %d, want %d", i, b[i], i+1)
		}
	}
}

func TestReallocateReusesCapacityWithoutRealloc(t *testing.T) {
	a := New()
	b := a.Allocate(4)
	b = b[:4]
	grown := a.Reallocate(b, 60, Uninit)
	if len(grown) != 60 {
		t.Fatalf("len = %d, want 60", len(grown))
	}
}

func TestShrinkTruncates(t *testing.T) {
	a := New()
	b := a.Allocate(10)
	b = a.Shrink(b, 3)
	if len(b) != 3 {
		t.Fatalf("len = %d, want 3", len(b))
	}
}

func TestRecordPoolResetsToZeroValue(t *testing.T) {
	type rec struct{ X int }
	pool := NewRecord[rec]()
	r := pool.Construct()
	r.X = 42
	pool.Destruct(r)
	r2 := pool.Construct()
	if r2.X != 0 {
		t.Fatalf("X = %d, want 0", r2.X)
	}
}
