package siamese

import "github.com/gofec/siamese/internal/xlog"

// EncoderConfig carries the encoder's tunables (spec §6's parameter
// table), with documented defaults applied by NewEncoder when a field is
// left zero.
type EncoderConfig struct {
	// CauchyThreshold is the sum_count at or below which the small-window
	// Cauchy/parity construction replaces the Siamese running-sum
	// construction. Defaults to protocol.CauchyThreshold.
	CauchyThreshold int
	// Logger receives an Errorf call at the Disabled transition. Defaults
	// to a no-op logger.
	Logger xlog.Logger
}

// DecoderConfig carries the decoder's tunables, mirroring EncoderConfig.
type DecoderConfig struct {
	CauchyThreshold int
	// RemoveThreshold is the minimum kept element prefix before the
	// decoder shifts its window forward (spec REMOVE_THRESHOLD). Defaults
	// to protocol.RemoveThreshold.
	RemoveThreshold int
	Logger          xlog.Logger
}
