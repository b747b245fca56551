// Package abi is the thin C-ABI façade spec.md lists as an external
// collaborator (§3 table, item M): handle create/free and call
// forwarding only, no codec logic of its own. Every exported function
// allocates nothing exotic across the cgo boundary — inputs and outputs
// are flat byte slices the caller owns, and each instance is tracked by
// an opaque uintptr_t handle via runtime/cgo.Handle, the standard library's
// own answer to "hand a C caller a stable reference to a Go value"
// (there is no precedent for this in the retrieved example pack, so it
// leans on the stdlib rather than invent a handle table; see DESIGN.md).
package abi

// #include <stdint.h>
// #include <string.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/gofec/siamese"
)

// Status mirrors siamese.ErrorKind as a small C-friendly integer so a C
// caller never has to link against cgo.Handle internals to interpret a
// return code.
type Status = C.int32_t

const (
	statusSuccess Status = iota
	statusNeedMoreData
	statusDuplicateData
	statusInvalidInput
	statusOutOfMemory
	statusDisabled
)

func statusOf(err error) Status {
	switch siamese.Kind(err) {
	case siamese.Success:
		return statusSuccess
	case siamese.NeedMoreData:
		return statusNeedMoreData
	case siamese.DuplicateData:
		return statusDuplicateData
	case siamese.OutOfMemory:
		return statusOutOfMemory
	case siamese.Disabled:
		return statusDisabled
	default:
		return statusInvalidInput
	}
}

func goBytes(ptr *C.uint8_t, length C.int32_t) []byte {
	if ptr == nil || length <= 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(ptr), C.int(length))
}

// copyOut writes src into the caller-owned (dst, cap) buffer. *outLen is
// always set to len(src); if src does not fit, nothing is copied and an
// OutOfMemory status is returned — the caller is expected to retry with a
// larger buffer, the usual C-ABI "ask, get told the real size, ask again"
// shape.
func copyOut(src []byte, dst *C.uint8_t, cap C.int32_t, outLen *C.int32_t) Status {
	if outLen != nil {
		*outLen = C.int32_t(len(src))
	}
	if len(src) > int(cap) {
		return statusOutOfMemory
	}
	if len(src) > 0 && dst != nil {
		C.memcpy(unsafe.Pointer(dst), unsafe.Pointer(&src[0]), C.size_t(len(src)))
	}
	return statusSuccess
}

//export siamese_encoder_new
func siamese_encoder_new(cauchyThreshold C.int32_t) C.uintptr_t {
	enc := siamese.NewEncoder(siamese.EncoderConfig{CauchyThreshold: int(cauchyThreshold)})
	return C.uintptr_t(cgo.NewHandle(enc))
}

//export siamese_encoder_free
func siamese_encoder_free(h C.uintptr_t) {
	cgo.Handle(h).Delete()
}

func encoderOf(h C.uintptr_t) *siamese.Encoder {
	return cgo.Handle(h).Value().(*siamese.Encoder)
}

//export siamese_encoder_add
func siamese_encoder_add(h C.uintptr_t, payload *C.uint8_t, payloadLen C.int32_t, outColumn *C.int64_t) Status {
	col, err := encoderOf(h).Add(goBytes(payload, payloadLen))
	if outColumn != nil {
		*outColumn = C.int64_t(col)
	}
	return statusOf(err)
}

//export siamese_encoder_remove_before
func siamese_encoder_remove_before(h C.uintptr_t, column C.int64_t) Status {
	return statusOf(encoderOf(h).RemoveBefore(siamese.Column(column)))
}

//export siamese_encoder_encode
func siamese_encoder_encode(h C.uintptr_t, dst *C.uint8_t, dstCap C.int32_t, outLen *C.int32_t) Status {
	buf, err := encoderOf(h).Encode()
	if err != nil {
		return statusOf(err)
	}
	return copyOut(buf, dst, dstCap, outLen)
}

//export siamese_encoder_retransmit
func siamese_encoder_retransmit(h C.uintptr_t, dst *C.uint8_t, dstCap C.int32_t, outLen *C.int32_t) Status {
	buf, err := encoderOf(h).Retransmit()
	if err != nil {
		return statusOf(err)
	}
	return copyOut(buf, dst, dstCap, outLen)
}

//export siamese_encoder_ack
func siamese_encoder_ack(h C.uintptr_t, payload *C.uint8_t, payloadLen C.int32_t, outNextExpected *C.int64_t) Status {
	next, err := encoderOf(h).Ack(goBytes(payload, payloadLen))
	if outNextExpected != nil {
		*outNextExpected = C.int64_t(next)
	}
	return statusOf(err)
}

//export siamese_decoder_new
func siamese_decoder_new(cauchyThreshold, removeThreshold C.int32_t) C.uintptr_t {
	dec := siamese.NewDecoder(siamese.DecoderConfig{
		CauchyThreshold: int(cauchyThreshold),
		RemoveThreshold: int(removeThreshold),
	})
	return C.uintptr_t(cgo.NewHandle(dec))
}

//export siamese_decoder_free
func siamese_decoder_free(h C.uintptr_t) {
	cgo.Handle(h).Delete()
}

func decoderOf(h C.uintptr_t) *siamese.Decoder {
	return cgo.Handle(h).Value().(*siamese.Decoder)
}

//export siamese_decoder_add_original
func siamese_decoder_add_original(h C.uintptr_t, column C.int64_t, payload *C.uint8_t, payloadLen C.int32_t) Status {
	err := decoderOf(h).AddOriginal(siamese.Column(column), goBytes(payload, payloadLen))
	return statusOf(err)
}

//export siamese_decoder_add_recovery
func siamese_decoder_add_recovery(h C.uintptr_t, payload *C.uint8_t, payloadLen C.int32_t) Status {
	return statusOf(decoderOf(h).AddRecovery(goBytes(payload, payloadLen)))
}

//export siamese_decoder_get
func siamese_decoder_get(h C.uintptr_t, column C.int64_t, dst *C.uint8_t, dstCap C.int32_t, outLen *C.int32_t) Status {
	buf, err := decoderOf(h).Get(siamese.Column(column))
	if err != nil {
		return statusOf(err)
	}
	return copyOut(buf, dst, dstCap, outLen)
}

//export siamese_decoder_is_ready
func siamese_decoder_is_ready(h C.uintptr_t, outReady *C.int32_t) Status {
	ready, err := decoderOf(h).IsReady()
	if outReady != nil {
		if ready {
			*outReady = 1
		} else {
			*outReady = 0
		}
	}
	return statusOf(err)
}

//export siamese_decoder_ack
func siamese_decoder_ack(h C.uintptr_t, limit C.int32_t, dst *C.uint8_t, dstCap C.int32_t, outLen *C.int32_t) Status {
	buf, err := decoderOf(h).Ack(int(limit))
	if err != nil {
		return statusOf(err)
	}
	return copyOut(buf, dst, dstCap, outLen)
}

// siamese_decoder_decode drains every recovered original into dst as a
// flat record stream: int64 column, int32 length, then that many payload
// bytes, repeated outCount times. outCount is always set even when the
// buffer was too small to hold everything (status OutOfMemory); the
// caller is expected to grow dst and retry rather than consume a partial
// stream.
//
//export siamese_decoder_decode
func siamese_decoder_decode(h C.uintptr_t, dst *C.uint8_t, dstCap C.int32_t, outCount *C.int32_t) Status {
	recovered, err := decoderOf(h).Decode()
	if err != nil {
		return statusOf(err)
	}
	if outCount != nil {
		*outCount = C.int32_t(len(recovered))
	}

	need := 0
	for _, r := range recovered {
		need += 8 + 4 + len(r.Payload)
	}
	if need > int(dstCap) {
		return statusOutOfMemory
	}

	cursor := uintptr(0)
	base := unsafe.Pointer(dst)
	for _, r := range recovered {
		if dst != nil {
			*(*C.int64_t)(unsafe.Add(base, cursor)) = C.int64_t(r.Column)
			cursor += 8
			*(*C.int32_t)(unsafe.Add(base, cursor)) = C.int32_t(len(r.Payload))
			cursor += 4
			if len(r.Payload) > 0 {
				C.memcpy(unsafe.Add(base, cursor), unsafe.Pointer(&r.Payload[0]), C.size_t(len(r.Payload)))
			}
			cursor += uintptr(len(r.Payload))
		}
	}
	return statusSuccess
}
