package gf256

import "testing"

func TestMulDivInverse(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			prod := Mul(byte(a), byte(b))
			if got := Div(prod, byte(b)); got != byte(a) {
				t.Fatalf("Div(Mul(%d,%d), %d) = %d, want %d", a, b, b, got, a)
			}
		}
	}
}

func TestSqrMatchesMul(t *testing.T) {
	for a := 0; a < 256; a++ {
		if got, want := Sqr(byte(a)), Mul(byte(a), byte(a)); got != want {
			t.Fatalf("Sqr(%d) = %d, want %d", a, got, want)
		}
	}
}

func TestInv(t *testing.T) {
	for a := 1; a < 256; a++ {
		if got := Mul(byte(a), Inv(byte(a))); got != 1 {
			t.Fatalf("Mul(%d, Inv(%d)) = %d, want 1", a, a, got)
		}
	}
}

func TestMulAddMemAgainstScalar(t *testing.T) {
	dst := []byte{1, 2, 3, 4}
	src := []byte{5, 6, 7, 8}
	c := byte(0x53)
	want := make([]byte, 4)
	for i := range want {
		want[i] = Add(dst[i], Mul(c, src[i]))
	}
	MulAddMem(dst, c, src, 4)
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("byte %d: got %d want %d", i, dst[i], want[i])
		}
	}
}

func TestDivMemRoundtrip(t *testing.T) {
	src := []byte{10, 20, 30, 40}
	c := byte(0x77)
	scaled := make([]byte, 4)
	MulMem(scaled, src, c, 4)
	back := make([]byte, 4)
	DivMem(back, scaled, c, 4)
	for i := range src {
		if back[i] != src[i] {
			t.Fatalf("byte %d: got %d want %d", i, back[i], src[i])
		}
	}
}
