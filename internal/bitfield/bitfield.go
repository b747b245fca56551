// Package bitfield implements the packed bitset the decoder window uses to
// track which elements of its window have been received (spec §3
// "Subwindow", §4.5).
//
// No bitset library in the example corpus exposes range set/clear plus an
// O(1)-amortized present-count the way this component needs (word-level
// popcount maintained incrementally rather than recomputed), so this is
// built directly on math/bits.OnesCount64, the standard library's
// hardware-popcount intrinsic — the justified stdlib exception for this
// leaf component.
package bitfield

import "math/bits"

const wordBits = 64

// Bitfield is a growable packed bitset over element indices [0, Len()).
type Bitfield struct {
	words []uint64
	n     int // number of valid bits
	count int // cached popcount over [0, n)
}

// New returns a Bitfield with n bits, all clear.
func New(n int) *Bitfield {
	bf := &Bitfield{}
	bf.Grow(n)
	return bf
}

// Len returns the number of bits this Bitfield currently covers.
func (bf *Bitfield) Len() int { return bf.n }

// Grow extends the Bitfield to n bits (n >= Len()), with new bits clear.
func (bf *Bitfield) Grow(n int) {
	if n <= bf.n {
		return
	}
	needWords := (n + wordBits - 1) / wordBits
	for len(bf.words) < needWords {
		bf.words = append(bf.words, 0)
	}
	bf.n = n
}

// Set marks bit i present. i must be < Len().
func (bf *Bitfield) Set(i int) {
	w, m := i/wordBits, uint64(1)<<uint(i%wordBits)
	if bf.words[w]&m == 0 {
		bf.words[w] |= m
		bf.count++
	}
}

// Clear marks bit i absent.
func (bf *Bitfield) Clear(i int) {
	w, m := i/wordBits, uint64(1)<<uint(i%wordBits)
	if bf.words[w]&m != 0 {
		bf.words[w] &^= m
		bf.count--
	}
}

// Get reports whether bit i is set.
func (bf *Bitfield) Get(i int) bool {
	return bf.words[i/wordBits]&(uint64(1)<<uint(i%wordBits)) != 0
}

// SetRange sets every bit in [a, b).
func (bf *Bitfield) SetRange(a, b int) {
	for i := a; i < b; i++ {
		bf.Set(i)
	}
}

// ClearRange clears every bit in [a, b). (The decoder's range_lost count
// is computed with PopCountRange, not with this method.)
func (bf *Bitfield) ClearRange(a, b int) {
	for i := a; i < b; i++ {
		bf.Clear(i)
	}
}

// PopCount returns the number of set bits over [0, Len()).
func (bf *Bitfield) PopCount() int { return bf.count }

// PopCountRange returns the number of set bits in [a, b), computed
// word-at-a-time rather than bit-at-a-time.
func (bf *Bitfield) PopCountRange(a, b int) int {
	if a >= b {
		return 0
	}
	total := 0
	wa, wb := a/wordBits, (b-1)/wordBits
	for w := wa; w <= wb; w++ {
		word := bf.words[w]
		lo, hi := 0, wordBits
		if w == wa {
			lo = a % wordBits
		}
		if w == wb {
			hi = (b-1)%wordBits + 1
		}
		mask := uint64(0)
		if hi-lo == wordBits {
			mask = ^uint64(0)
		} else {
			mask = ((uint64(1) << uint(hi-lo)) - 1) << uint(lo)
		}
		total += bits.OnesCount64(word & mask)
	}
	return total
}

// FirstClear returns the smallest index >= from that is clear, or Len() if
// none exists within the current length.
func (bf *Bitfield) FirstClear(from int) int {
	for i := from; i < bf.n; i++ {
		w := i / wordBits
		rest := (^bf.words[w]) >> uint(i%wordBits)
		if rest == 0 {
			i = (w+1)*wordBits - 1
			continue
		}
		cand := i + bits.TrailingZeros64(rest)
		if cand < bf.n {
			return cand
		}
		i = (w+1)*wordBits - 1
	}
	return bf.n
}

// FirstSet returns the smallest index >= from that is set, or Len() if
// none exists.
func (bf *Bitfield) FirstSet(from int) int {
	for i := from; i < bf.n; i++ {
		w := i / wordBits
		word := bf.words[w]
		rest := word >> uint(i%wordBits)
		if rest == 0 {
			i = (w+1)*wordBits - 1
			continue
		}
		cand := i + bits.TrailingZeros64(rest)
		if cand < bf.n {
			return cand
		}
		i = (w+1)*wordBits - 1
	}
	return bf.n
}

// ShiftDown drops the first `by` bits, shifting everything else toward
// index 0. Used when the decoder window removes a prefix of elements
// (spec §4.5 grow_window / §4.9 identify_removal_point).
func (bf *Bitfield) ShiftDown(by int) {
	if by <= 0 {
		return
	}
	if by >= bf.n {
		for i := range bf.words {
			bf.words[i] = 0
		}
		bf.n = 0
		bf.count = 0
		return
	}
	newN := bf.n - by
	newWords := (newN + wordBits - 1) / wordBits
	wordShift, bitShift := by/wordBits, uint(by%wordBits)
	out := make([]uint64, newWords+1)
	for i := 0; i < len(out); i++ {
		srcIdx := i + wordShift
		if srcIdx >= len(bf.words) {
			continue
		}
		lo := bf.words[srcIdx] >> bitShift
		var hi uint64
		if bitShift != 0 && srcIdx+1 < len(bf.words) {
			hi = bf.words[srcIdx+1] << (wordBits - bitShift)
		}
		out[i] = lo | hi
	}
	bf.words = out[:newWords]
	bf.n = newN
	bf.count = bf.PopCountRange(0, newN)
}
