// Package siamese is the public façade over the streaming Siamese FEC
// codec: a slim root package delegating to the encoder and decoder
// packages.
package siamese

import (
	"github.com/gofec/siamese/decoder"
	"github.com/gofec/siamese/encoder"
	"github.com/gofec/siamese/internal/protocol"
)

// Column is a packet sequence number, re-exported so callers never need
// to import internal/protocol themselves.
type Column = protocol.Column

// RecoveredOriginal is one original the decoder's solve pipeline filled
// in.
type RecoveredOriginal = decoder.RecoveredOriginal

// Encoder is the sender half of the codec (spec §4.10's encoder_*
// contracts). It is a single-threaded cooperative state machine (spec
// §5): a shared instance requires external synchronization.
type Encoder struct {
	e *encoder.Encoder
}

// NewEncoder returns a ready Encoder.
func NewEncoder(cfg EncoderConfig) *Encoder {
	return &Encoder{e: encoder.New(encoder.Config{
		CauchyThreshold: cfg.CauchyThreshold,
		Logger:          cfg.Logger,
	})}
}

// Add assigns the next column to payload and folds it into the encoder's
// window (spec encoder_add).
func (enc *Encoder) Add(payload []byte) (Column, error) {
	return enc.e.Add(payload)
}

// RemoveBefore drops originals strictly before column (spec
// encoder_remove_before). Idempotent.
func (enc *Encoder) RemoveBefore(column Column) error {
	return enc.e.RemoveBefore(column)
}

// TrimTo is the caller-driven data-removal fallback for deployments with
// no ack channel back to the encoder (spec §9 Open Question (a)).
func (enc *Encoder) TrimTo(column Column) error {
	return enc.e.TrimTo(column)
}

// Encode produces a recovery packet covering the encoder's full current
// window (spec encoder_encode).
func (enc *Encoder) Encode() ([]byte, error) {
	return enc.e.Encode()
}

// Retransmit returns the next original in the window's cycling rotation
// as a bare recovery packet (spec encoder_retransmit).
func (enc *Encoder) Retransmit() ([]byte, error) {
	return enc.e.Retransmit()
}

// Ack consumes a decoder-issued ack payload, trimming acknowledged
// originals and recording the reported loss ranges as a scheduling hint
// (spec encoder_ack).
func (enc *Encoder) Ack(payload []byte) (Column, error) {
	return enc.e.Ack(payload)
}

// Decoder is the receiver half of the codec (spec §4.10's decoder_*
// contracts). Like Encoder, it is a single-threaded cooperative state
// machine (spec §5).
type Decoder struct {
	d *decoder.Decoder
}

// NewDecoder returns a ready Decoder.
func NewDecoder(cfg DecoderConfig) *Decoder {
	return &Decoder{d: decoder.New(decoder.Config{
		CauchyThreshold: cfg.CauchyThreshold,
		RemoveThreshold: cfg.RemoveThreshold,
		Logger:          cfg.Logger,
	})}
}

// AddOriginal stores a freshly-received original (spec
// decoder_add_original).
func (dec *Decoder) AddOriginal(column Column, payload []byte) error {
	return dec.d.AddOriginal(column, payload)
}

// AddRecovery parses and files a recovery packet (spec
// decoder_add_recovery). Recoveries too old or already redundant are
// silently dropped.
func (dec *Decoder) AddRecovery(buf []byte) error {
	return dec.d.AddRecovery(buf)
}

// Get returns a known original's payload (spec decoder_get).
func (dec *Decoder) Get(column Column) ([]byte, error) {
	return dec.d.Get(column)
}

// IsReady reports whether Decode would currently return at least one
// recovered original (spec decoder_is_ready). Besides updating the
// checked-region cache and running elimination, it may reconstruct a ready
// Cauchy-coded group into the window, after which those originals are
// visible through Get.
func (dec *Decoder) IsReady() (bool, error) {
	return dec.d.IsReady()
}

// Decode runs the solve pipeline and returns every original it recovered
// (spec decoder_decode).
func (dec *Decoder) Decode() ([]RecoveredOriginal, error) {
	return dec.d.Decode()
}

// Ack builds a NACK loss-range payload describing the decoder's current
// gaps, bounded by limit bytes (spec decoder_ack).
func (dec *Decoder) Ack(limit int) ([]byte, error) {
	return dec.d.Ack(limit)
}
