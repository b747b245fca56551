package rowgen

import "github.com/gofec/siamese/internal/protocol"

// prng is a small deterministic splitmix64-style generator, seeded from
// (row, ldpcCount) per spec §4.4 step 2. It must produce the identical
// sequence on encoder and decoder given the same seed, which a
// splitmix-style generator guarantees without relying on any
// platform/library RNG (math/rand's algorithm is not part of its
// compatibility guarantee across Go versions, so a self-contained
// generator is used here instead).
type prng struct {
	state uint64
}

func newPRNG(row protocol.Row, ldpcCount uint32) *prng {
	seed := uint64(row)<<32 | uint64(ldpcCount)
	seed = seed*0x9E3779B97F4A7C15 + 1
	return &prng{state: seed}
}

func (p *prng) next() uint32 {
	p.state += 0x9E3779B97F4A7C15
	z := p.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return uint32(z >> 32)
}

// PairCount returns ceil(ldpcCount / PairAddRate), the number of tap pairs
// a row with this many LDPC-suffix columns generates.
func PairCount(ldpcCount uint32) int {
	if ldpcCount == 0 {
		return 0
	}
	return int((ldpcCount + protocol.PairAddRate - 1) / protocol.PairAddRate)
}

// WalkLDPCTaps replays the deterministic sparse tap schedule for a row,
// calling fn once per tap with the LDPC-suffix-relative offset in
// [0, ldpcCount) and whether that tap is RX-scaled. Exactly 2*PairCount
// calls are made: spec §4.4 step 2's "first index XORs its original
// payload ... the second XORs RX·payload".
func WalkLDPCTaps(row protocol.Row, ldpcCount uint32, fn func(offset int, scaled bool)) {
	if ldpcCount == 0 {
		return
	}
	p := newPRNG(row, ldpcCount)
	pairs := PairCount(ldpcCount)
	for i := 0; i < pairs; i++ {
		idx1 := int(p.next() % ldpcCount)
		idx2 := int(p.next() % ldpcCount)
		fn(idx1, false)
		fn(idx2, true)
	}
}
