package decoder

import "github.com/gofec/siamese/internal/protocol"

// recoveryEntry is one received recovery packet, positioned in the
// decoder's sorted recovery list (spec §4.6). elementStart/elementEnd are
// window-relative and shift down whenever the window removes a prefix.
type recoveryEntry struct {
	prev, next *recoveryEntry

	elementStart int
	elementEnd   int // elementStart + ldpcCount; the sort key
	sumStart     int
	sumCount     int
	ldpcCount    int
	row          protocol.Row
	symbol       []byte // recovery symbol bytes, consumed/mutated during elimination

	matRow int // physical row index in the matrix once incorporated, -1 until then
}

// less reports whether a sorts before b: ascending element_end, with ties
// broken so the entry whose LDPC range starts later (larger elementStart)
// sorts first (spec §4.6). The tie-break compares elementStart, not
// sumStart: entries with equal elementEnd and equal elementStart keep
// their insertion order even when their sum regions differ.
func less(a, b *recoveryEntry) bool {
	if a.elementEnd != b.elementEnd {
		return a.elementEnd < b.elementEnd
	}
	return a.elementStart > b.elementStart
}

// recoveryList is the doubly-linked, sorted store of recovery packets the
// decoder has received and not yet consumed or discarded.
type recoveryList struct {
	head, tail *recoveryEntry
	count      int
}

// insert walks from the tail to find e's position (spec §4.6: "insertion
// walks from the tail"), ties inserting after existing equal entries so
// list order among ties is first-in (spec E4). It reports whether e
// landed at the new tail — a non-tail insertion is the trigger the driver
// uses to invalidate the checked region.
func (l *recoveryList) insert(e *recoveryEntry) (atTail bool) {
	if l.tail == nil {
		l.head, l.tail = e, e
		l.count++
		return true
	}
	cur := l.tail
	for cur != nil && less(e, cur) {
		cur = cur.prev
	}
	if cur == nil {
		e.next = l.head
		l.head.prev = e
		l.head = e
	} else {
		e.prev = cur
		e.next = cur.next
		if cur.next != nil {
			cur.next.prev = e
		} else {
			l.tail = e
		}
		cur.next = e
	}
	l.count++
	return l.tail == e
}

// removeHead unlinks and returns the current head, or nil if empty.
func (l *recoveryList) removeHead() *recoveryEntry {
	e := l.head
	if e == nil {
		return nil
	}
	l.head = e.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	e.next, e.prev = nil, nil
	l.count--
	return e
}

// deleteBefore removes every entry whose elementEnd <= element — recovery
// packets that can no longer contribute a new lost column (spec §4.6
// delete_packets_before).
func (l *recoveryList) deleteBefore(element int) {
	for l.head != nil && l.head.elementEnd <= element {
		l.removeHead()
	}
}

// decrementElementCounters shifts every entry's element range down by
// delta, used when the window removes a prefix (spec §4.6).
func (l *recoveryList) decrementElementCounters(delta int) {
	for e := l.head; e != nil; e = e.next {
		e.elementStart -= delta
		e.elementEnd -= delta
		e.sumStart -= delta
	}
}
