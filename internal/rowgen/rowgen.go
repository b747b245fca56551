// Package rowgen implements the deterministic per-row construction spec.md
// §4.4 and §4.8 require to match byte-for-byte between encoder and
// decoder: the fixed pseudorandom opcode table, the row multiplier RX, and
// the sparse LDPC tap schedule. Both sides call the exact same functions
// here — the encoder to fold its lane running sums and raw payloads into a
// recovery symbol, the decoder to derive the coefficient each lost column
// contributes to a matrix row, and again (§4.8 step 3) to fold out the
// lane sums and raw payloads of the originals it *has* received.
package rowgen

import (
	"github.com/gofec/siamese/internal/gf256"
	"github.com/gofec/siamese/internal/protocol"
)

// RowValue returns RX(row), a deterministic non-zero GF(256) row
// multiplier.
func RowValue(row protocol.Row) byte {
	v := byte(row) ^ 0xA5
	if v == 0 {
		v = 1
	}
	return v
}

// opcodeTable[lane][row] holds the fixed 6-bit pseudorandom opcode
// selecting which of a lane's six dense terms (S0, S1, S2, RX*S0, RX*S1,
// RX*S2) a recovery row includes. Built once at init from a simple
// deterministic mix so the table is identical on every process without
// needing to ship or load a static blob.
var opcodeTable [protocol.LaneCount][protocol.RowPeriod]byte

func init() {
	for lane := 0; lane < protocol.LaneCount; lane++ {
		for row := 0; row < protocol.RowPeriod; row++ {
			h := uint32(lane)*0x01000193 + uint32(row)*0x9E3779B1
			h ^= h >> 15
			opcodeTable[lane][row] = byte(h) & 0x3F
		}
	}
}

// Opcode returns the raw 6-bit opcode for (lane, row). A caller that needs
// the "opcode 0 behaves as bit 3 set" fallback (spec §4.4 step 1) should
// use DenseCoefficient / DenseFold below, which already apply it.
func Opcode(lane int, row protocol.Row) byte {
	return opcodeTable[lane][int(row)%protocol.RowPeriod]
}

// effectiveOpcode applies spec §4.4's "opcode 0 guarantees each lane
// contributes" rule.
func effectiveOpcode(lane int, row protocol.Row) byte {
	op := Opcode(lane, row)
	if op == 0 {
		return 1 << 3
	}
	return op
}

// DenseCoefficient returns the GF(256) coefficient a column with tag cx,
// in the given lane, contributes to the row's dense (running-sum) part —
// the matrix-building use of the opcode table (spec §4.8 step 1): for each
// set bit, accumulate cx^0/cx^1/cx^2 directly or scaled by RX.
func DenseCoefficient(lane int, row protocol.Row, cx byte) byte {
	op := effectiveOpcode(lane, row)
	rx := RowValue(row)
	var coeff byte
	terms := [3]byte{1, cx, gf256.Sqr(cx)}
	for k := 0; k < 3; k++ {
		if op&(1<<uint(k)) != 0 {
			coeff ^= terms[k]
		}
		if op&(1<<uint(3+k)) != 0 {
			coeff ^= gf256.Mul(rx, terms[k])
		}
	}
	return coeff
}

// DenseFold XORs a lane's selected running sums into dst, the same
// accumulation DenseCoefficient describes but operating on whole sum
// buffers instead of a single scalar coefficient — this is the encoder's
// O(1)-per-lane hot path (spec §4.4 step 1), and the decoder's symmetric
// "eliminate received originals" step (§4.8 step 3) when sums is built
// only from received columns.
//
// sum(k) must return the lane's S_k buffer (may be nil/shorter than n, in
// which case the missing suffix is treated as zero, matching a lane that
// has not yet folded anything in).
func DenseFold(dst []byte, n int, lane int, row protocol.Row, sum func(k int) []byte) {
	op := effectiveOpcode(lane, row)
	rx := RowValue(row)
	for k := 0; k < 3; k++ {
		plain := op&(1<<uint(k)) != 0
		scaled := op&(1<<uint(3+k)) != 0
		if !plain && !scaled {
			continue
		}
		s := sum(k)
		m := len(s)
		if m > n {
			m = n
		}
		if plain {
			gf256.AddMem(dst, s, m)
		}
		if scaled {
			gf256.MulAddMem(dst, rx, s, m)
		}
	}
}
