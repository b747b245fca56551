package decoder

// checkedRegion caches the smallest contiguous prefix of the recovery
// list that has been examined for solvability across decode calls, and
// the loss count within it (spec §4.7).
type checkedRegion struct {
	valid         bool
	cursor        *recoveryEntry // last recovery entry folded into the region
	elementStart  int
	elementEnd    int
	recoveryCount int
	solveFailed   bool
}

// invalidate discards the cached region. New data (an insertion anywhere
// but the tail, or a fill landing inside the current region) always
// invalidates; this is also the one place solveFailed is cleared, since a
// changed region is "new data" worth retrying (spec §9).
func (cr *checkedRegion) invalidate() {
	*cr = checkedRegion{}
}

// extend grows the region one recovery entry at a time from its cursor
// until the recoveries it spans cover at least as many rows as there are
// losses within it, or the list runs out. It reports whether the region
// is currently solvable: enough recoveries cover its losses, and the last
// attempt on this exact region didn't already fail.
func (cr *checkedRegion) extend(list *recoveryList, lost func(a, b int) int) bool {
	if cr.cursor == nil {
		if list.head == nil {
			return false
		}
		cr.cursor = list.head
		cr.elementStart = cr.cursor.elementStart
		cr.elementEnd = cr.cursor.elementEnd
		cr.recoveryCount = 1
		cr.valid = true
	}
	for {
		if cr.recoveryCount >= lost(cr.elementStart, cr.elementEnd) {
			break
		}
		if cr.cursor.next == nil {
			break
		}
		cr.cursor = cr.cursor.next
		if cr.cursor.elementStart < cr.elementStart {
			cr.elementStart = cr.cursor.elementStart
		}
		if cr.cursor.elementEnd > cr.elementEnd {
			cr.elementEnd = cr.cursor.elementEnd
		}
		cr.recoveryCount++
	}
	if cr.recoveryCount < lost(cr.elementStart, cr.elementEnd) {
		return false
	}
	return !cr.solveFailed
}
