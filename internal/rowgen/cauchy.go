// cauchy.go implements spec §4.4 item 3's small-window MDS option: when a
// recovery row's sum region is small (sum_count <= CAUCHY_THRESHOLD), skip
// the Siamese running-sum/LDPC construction entirely and fall back to a
// pure parity row (row == 0) or a Cauchy-matrix row (row > 0) with MDS
// recoverability. Rather than hand-rolling Cauchy matrix inversion, this
// drives github.com/klauspost/reedsolomon's Encoder over the small shard
// set directly — the one dependency the teacher's go.mod brought in for
// exactly this purpose (internal/fec/reed_solomon.go uses the same
// package for its whole-block scheme; here it serves the analogous
// small-window special case instead of the general per-column construction,
// which needs byte-level GF(256) ops reedsolomon does not expose).
package rowgen

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// UseCauchy reports whether sumCount is small enough for the Cauchy/parity
// fallback (spec CAUCHY_THRESHOLD).
func UseCauchy(sumCount int, threshold int) bool {
	return sumCount <= threshold
}

// CauchyCoder avoids rebuilding a reedsolomon.Encoder (which
// precomputes its Vandermonde-derived matrix) on every call for a given
// (k, extraShards) pair within one process; encoder/decoder each own one.
type CauchyCoder struct {
	encoders map[[2]int]reedsolomon.Encoder
}

// NewCauchyCoder returns an empty coder; encoders are built lazily per
// (k, parity) shape.
func NewCauchyCoder() *CauchyCoder {
	return &CauchyCoder{encoders: make(map[[2]int]reedsolomon.Encoder)}
}

func (c *CauchyCoder) encoderFor(k, parity int) (reedsolomon.Encoder, error) {
	key := [2]int{k, parity}
	if enc, ok := c.encoders[key]; ok {
		return enc, nil
	}
	enc, err := reedsolomon.New(k, parity)
	if err != nil {
		return nil, fmt.Errorf("rowgen: building cauchy encoder(%d,%d): %w", k, parity, err)
	}
	c.encoders[key] = enc
	return enc, nil
}

// EncodeRow produces recovery row `row` (0-based) for the k source shards
// in sources; shorter sources are zero-padded (in copies) to the longest
// one's length before encoding. row identifies
// which of the coder's parity shards to return: row 0 is always a pure
// XOR parity (reedsolomon's first parity shard for a Cauchy matrix
// construction is not guaranteed to be plain XOR, so row 0 is special-cased
// to an explicit XOR to match spec's "row == 0 emits a pure parity" without
// depending on reedsolomon's internal matrix layout).
func (c *CauchyCoder) EncodeRow(sources [][]byte, row int) ([]byte, error) {
	k := len(sources)
	shardLen := 0
	for _, s := range sources {
		if len(s) > shardLen {
			shardLen = len(s)
		}
	}
	padded := make([][]byte, k)
	for i, s := range sources {
		if len(s) == shardLen {
			padded[i] = s
		} else {
			b := make([]byte, shardLen)
			copy(b, s)
			padded[i] = b
		}
	}
	if row == 0 {
		out := make([]byte, shardLen)
		for _, s := range padded {
			for i, v := range s {
				out[i] ^= v
			}
		}
		return out, nil
	}
	parity := row // need at least `row` parity shards to reach index row-1
	enc, err := c.encoderFor(k, parity)
	if err != nil {
		return nil, err
	}
	shards := make([][]byte, k+parity)
	copy(shards, padded)
	for i := k; i < k+parity; i++ {
		shards[i] = make([]byte, shardLen)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("rowgen: cauchy encode: %w", err)
	}
	return shards[k+row-1], nil
}

// Reconstruct recovers the missing source shards given the present
// sources (nil for missing) and the recovery rows received (keyed by the
// row number they were generated with, 0 meaning the plain-XOR row).
func (c *CauchyCoder) Reconstruct(sources [][]byte, shardLen int, recovered map[int][]byte) error {
	k := len(sources)
	maxRow := 0
	for row := range recovered {
		if row > maxRow {
			maxRow = row
		}
	}
	if maxRow == 0 {
		// Only the XOR parity is available; that alone only recovers a
		// single missing shard.
		missing := -1
		count := 0
		for i, s := range sources {
			if s == nil {
				missing = i
				count++
			}
		}
		if count > 1 {
			return fmt.Errorf("rowgen: cauchy reconstruct: only XOR parity available but %d shards missing", count)
		}
		if count == 0 {
			return nil
		}
		out := make([]byte, shardLen)
		if x, ok := recovered[0]; ok {
			copy(out, x)
		}
		for i, s := range sources {
			if i == missing {
				continue
			}
			for j, v := range s {
				out[j] ^= v
			}
		}
		sources[missing] = out
		return nil
	}

	enc, err := c.encoderFor(k, maxRow)
	if err != nil {
		return err
	}
	shards := make([][]byte, k+maxRow)
	copy(shards, sources)
	for i, s := range shards[:k] {
		if s != nil && len(s) < shardLen {
			b := make([]byte, shardLen)
			copy(b, s)
			shards[i] = b
		}
	}
	for row := 1; row <= maxRow; row++ {
		if r, ok := recovered[row]; ok {
			shards[k+row-1] = r
		}
	}
	if err := enc.ReconstructData(shards); err != nil {
		return fmt.Errorf("rowgen: cauchy reconstruct: %w", err)
	}
	copy(sources, shards[:k])
	return nil
}
