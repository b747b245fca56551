// Package slab implements the growable, zero-padding byte-buffer allocator
// the encoder and decoder windows use for payload, running-sum, and
// recovery-row storage. It generalizes the single-type sync.Pool the
// teacher keeps per wire frame type (internal/wire/pool.go's
// StreamFrame pool) into a size-classed pool so one Allocator instance can
// serve buffers of whatever length a lane's running sum or a recovery row
// happens to need that call.
package slab

import "sync"

// InitKind selects whether newly grown bytes are left uninitialized or
// zero-padded, matching spec 4.2's allocate/reallocate contract.
type InitKind int

const (
	Uninit InitKind = iota
	ZeroPad
)

// minClass is the smallest size class the pool buckets, chosen to avoid
// pooling tiny allocations where a plain make() is cheaper than a map
// lookup plus interface assertion.
const minClass = 64

// Allocator is an instance-scoped slab of size-classed byte buffers. It is
// not safe for concurrent use by multiple goroutines, matching the
// single-threaded cooperative state machine the encoder/decoder already
// are (spec §5): no internal locking.
type Allocator struct {
	classes map[int]*sync.Pool
}

// New returns a fresh Allocator. Every Encoder/Decoder instance owns
// exactly one; freeing the instance drops the Allocator and everything it
// holds becomes eligible for GC (there is no explicit teardown call —
// unlike a C slab allocator, Go buffers need no C-side free).
func New() *Allocator {
	return &Allocator{classes: make(map[int]*sync.Pool)}
}

func classSize(n int) int {
	c := minClass
	for c < n {
		c <<= 1
	}
	return c
}

func (a *Allocator) poolFor(class int) *sync.Pool {
	p, ok := a.classes[class]
	if !ok {
		cls := class
		p = &sync.Pool{New: func() any {
			b := make([]byte, cls)
			return &b
		}}
		a.classes[class] = p
	}
	return p
}

// Allocate returns a zero-length-capacity-n-or-more buffer; callers reslice
// to the length they need. Bytes are not guaranteed zeroed — callers that
// need zero-padding should use Reallocate with ZeroPad, or GrowZeroPadded.
func (a *Allocator) Allocate(n int) []byte {
	if n <= 0 {
		return nil
	}
	class := classSize(n)
	p := a.poolFor(class)
	buf := *(p.Get().(*[]byte))
	return buf[:n]
}

// Free returns buf to the pool for its capacity's size class. Only buffers
// whose capacity is exactly a size class (as Allocate hands out) are
// pooled; any other buffer is left to the garbage collector.
func (a *Allocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	class := classSize(cap(buf))
	if class != cap(buf) {
		return
	}
	p := a.poolFor(class)
	full := buf[:cap(buf)]
	p.Put(&full)
}

// Reallocate resizes buf to n bytes, preserving the existing prefix. When
// init is ZeroPad, any newly exposed bytes in [len(buf), n) are zeroed
// (spec 4.2 grow_zero_padded: bytes in [old_len, new_len) are zero).
// Shrinking (n <= cap(buf)) reuses the backing array.
func (a *Allocator) Reallocate(buf []byte, n int, init InitKind) []byte {
	oldLen := len(buf)
	if n <= cap(buf) {
		out := buf[:n]
		if init == ZeroPad && n > oldLen {
			zero(out[oldLen:n])
		}
		return out
	}
	grown := a.Allocate(n)
	copy(grown, buf)
	if init == ZeroPad {
		zero(grown[oldLen:n])
	}
	if buf != nil {
		a.Free(buf)
	}
	return grown
}

// GrowZeroPadded is Reallocate(buf, n, ZeroPad); kept as a named entry point
// because it is the operation callers reach for the overwhelming majority
// of the time (running-sum buffers always zero-pad on growth, spec §3).
func (a *Allocator) GrowZeroPadded(buf []byte, n int) []byte {
	return a.Reallocate(buf, n, ZeroPad)
}

// Shrink truncates buf to n bytes without releasing the backing array.
func (a *Allocator) Shrink(buf []byte, n int) []byte {
	if n > len(buf) {
		n = len(buf)
	}
	return buf[:n]
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Record is a small fixed-size value pool (spec 4.2's construct/destruct
// façade for small fixed-size records). The decoder's recovery list and
// checked region allocate their records directly and do not use it.
type Record[T any] struct {
	pool sync.Pool
}

// NewRecord returns a Record pool whose zero value is produced by zero.
func NewRecord[T any]() *Record[T] {
	r := &Record[T]{}
	r.pool.New = func() any { return new(T) }
	return r
}

// Construct returns a pooled *T, reset to its zero value.
func (r *Record[T]) Construct() *T {
	v := r.pool.Get().(*T)
	var zero T
	*v = zero
	return v
}

// Destruct returns v to the pool.
func (r *Record[T]) Destruct(v *T) {
	r.pool.Put(v)
}
