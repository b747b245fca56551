package siamese

import (
	"errors"

	"github.com/gofec/siamese/decoder"
	"github.com/gofec/siamese/encoder"
	"github.com/gofec/siamese/internal/wire"
)

// ErrorKind classifies any error this package's Encoder/Decoder return,
// mirroring spec §7's six-member error taxonomy. It exists for callers —
// chiefly the C-ABI façade (package abi), which has no `error` type to
// hand back across the boundary — that need to switch on category rather
// than compare against a specific sentinel.
type ErrorKind int

const (
	// Success is the zero value: no error occurred.
	Success ErrorKind = iota
	// NeedMoreData means the operation is transient; the caller may retry
	// once more input (an original, a recovery packet, an ack) arrives.
	NeedMoreData
	// DuplicateData means the input was already known and was silently
	// accepted rather than treated as an error (spec §7: "duplicate
	// originals are silent and counted").
	DuplicateData
	// InvalidInput means the input was malformed: a corrupt recovery
	// footer, an unparseable ack payload, a payload outside the packet
	// length domain.
	InvalidInput
	// OutOfMemory means the instance's resource caps were exceeded: the
	// encoder's MAX_PACKETS window cap, or an underlying allocation
	// failure.
	OutOfMemory
	// Disabled means the instance hit an unrecoverable internal
	// inconsistency and is permanently out of service (spec §7: "sticky
	// after any fatal internal inconsistency").
	Disabled
)

func (k ErrorKind) String() string {
	switch k {
	case Success:
		return "success"
	case NeedMoreData:
		return "need_more_data"
	case DuplicateData:
		return "duplicate_data"
	case InvalidInput:
		return "invalid_input"
	case OutOfMemory:
		return "out_of_memory"
	case Disabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Kind classifies err into its ErrorKind. A nil error classifies as
// Success. An error this package's Encoder/Decoder never produced
// classifies as InvalidInput, the closest fit for "something went wrong
// that the caller must treat as a hard failure of this call" without
// being one of the sticky Disabled states.
//
// MAX_PACKETS exhaustion (encoder.ErrWindowFull) has no dedicated kind in
// spec §7's six-member taxonomy alongside encoder_add's listed "full"
// outcome; it is classified as OutOfMemory, the closest existing kind for
// "a resource cap was hit" (see DESIGN.md).
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, encoder.ErrNeedMoreData), errors.Is(err, decoder.ErrNeedMoreData):
		return NeedMoreData
	case errors.Is(err, decoder.ErrDuplicate):
		return DuplicateData
	case errors.Is(err, encoder.ErrInvalidPayload), errors.Is(err, decoder.ErrInvalidPayload),
		errors.Is(err, wire.ErrInvalidAck), errors.Is(err, wire.ErrInvalidFooter),
		errors.Is(err, wire.ErrTruncated), errors.Is(err, wire.ErrInvalidLength):
		return InvalidInput
	case errors.Is(err, encoder.ErrWindowFull):
		return OutOfMemory
	case errors.Is(err, encoder.ErrDisabled), errors.Is(err, decoder.ErrDisabled):
		return Disabled
	default:
		return InvalidInput
	}
}
