package decoder

import (
	"errors"

	"github.com/gofec/siamese/internal/gf256"
	"github.com/gofec/siamese/internal/lanesum"
	"github.com/gofec/siamese/internal/protocol"
	"github.com/gofec/siamese/internal/ringbuffer"
	"github.com/gofec/siamese/internal/rowgen"
	"github.com/gofec/siamese/internal/slab"
	"github.com/gofec/siamese/internal/wire"
	"github.com/gofec/siamese/internal/xlog"
)

// ErrNeedMoreData is returned when an operation cannot proceed without
// more input (spec §4.10).
var ErrNeedMoreData = errors.New("decoder: need more data")

// ErrDisabled is returned by every call once the decoder has hit an
// unrecoverable internal inconsistency (spec §7, §9 "emergency disabled").
var ErrDisabled = errors.New("decoder: disabled")

// Config carries the decoder's tunables, mirroring encoder.Config.
type Config struct {
	CauchyThreshold int
	RemoveThreshold int
	Logger          xlog.Logger
}

// Logger is xlog.Logger, re-exported so callers that only import this
// package never need to reach into internal/xlog themselves.
type Logger = xlog.Logger

// RecoveredOriginal is one original the solve pipeline filled in, returned
// from Decode.
type RecoveredOriginal struct {
	Column  protocol.Column
	Payload []byte
}

// Decoder is the receiver half of the codec (spec §4.10's decoder_*
// contracts). Like Encoder, it is a single-threaded cooperative state
// machine (spec §5).
type Decoder struct {
	cfg    Config
	alloc  *slab.Allocator
	win    *window
	list   recoveryList
	region checkedRegion
	mat    *matrix
	cauchy *rowgen.CauchyCoder
	elim   *elimSums

	// cauchyEntries holds recoveries whose sum_count qualifies for the
	// small-window Cauchy/parity construction (spec §4.4 item 3). These
	// never enter list/region/mat: a Cauchy row isn't a linear combination
	// the Siamese matrix's coefficients can express without exposing
	// reedsolomon's internal matrix, so it is solved by an independent,
	// self-contained path instead (tryCauchyDecode) — see DESIGN.md's note
	// on spec §9 Open Question (b).
	cauchyEntries []*recoveryEntry

	colOfElement map[int]int      // element -> matrix column, stable once assigned
	elemOfCol    []int            // matrix column -> element
	rowEntries   []*recoveryEntry // matrix physical row -> originating entry
	matData      [][]byte         // matrix physical row -> recovery symbol, reduced in place
	ldpcCache    map[*recoveryEntry][]byte

	lastRecoveryElementStart int // spec §4.6 last_recovery, used when both lists are empty
	solving                  bool
	output                   ringbuffer.RingBuffer[RecoveredOriginal]

	disabled    bool
	disableErr  error
}

// New returns a ready Decoder.
func New(cfg Config) *Decoder {
	if cfg.CauchyThreshold <= 0 {
		cfg.CauchyThreshold = protocol.CauchyThreshold
	}
	if cfg.RemoveThreshold <= 0 {
		cfg.RemoveThreshold = protocol.RemoveThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = xlog.Noop{}
	}
	alloc := slab.New()
	d := &Decoder{
		cfg:                       cfg,
		alloc:                     alloc,
		win:                       newWindow(alloc),
		mat:                       newMatrix(),
		cauchy:                    rowgen.NewCauchyCoder(),
		elim:                      newElimSums(alloc),
		colOfElement:              make(map[int]int),
		ldpcCache:                 make(map[*recoveryEntry][]byte),
		lastRecoveryElementStart:  -1,
	}
	d.win.onFill = d.onWindowFill
	return d
}

func (d *Decoder) checkDisabled() error {
	if d.disabled {
		return ErrDisabled
	}
	return nil
}

func (d *Decoder) disable(reason string) {
	d.disabled = true
	d.disableErr = errors.New(reason)
	d.cfg.Logger.Errorf("decoder disabled: %s", reason)
}

// onWindowFill invalidates the checked region when new data lands inside
// it (spec §4.5). It is suppressed while the solve pipeline itself is
// filling recovered originals back into the window — that batch of fills
// is followed by one explicit reset once back-substitution finishes,
// rather than tearing down the matrix mid-loop.
func (d *Decoder) onWindowFill(element int) {
	if d.solving {
		return
	}
	if d.region.valid && element >= d.region.elementStart && element < d.region.elementEnd {
		d.invalidateRegion()
	}
}

func (d *Decoder) invalidateRegion() {
	d.region.invalidate()
	d.resetSolveState()
}

// resetSolveState discards all matrix-building progress. Called whenever
// the checked region is invalidated, since the matrix is derived entirely
// from the region's element range and the set of entries it spans.
func (d *Decoder) resetSolveState() {
	d.mat = newMatrix()
	d.colOfElement = make(map[int]int)
	d.elemOfCol = nil
	d.rowEntries = nil
	d.matData = nil
	d.ldpcCache = make(map[*recoveryEntry][]byte)
	// The cached elimination sums are indexed by element, so they go with
	// the rest of the discarded solve state.
	d.elim = newElimSums(d.alloc)
	for e := d.list.head; e != nil; e = e.next {
		e.matRow = -1
	}
}

// AddOriginal stores a freshly-received original (spec §4.10
// decoder_add_original).
func (d *Decoder) AddOriginal(column protocol.Column, payload []byte) error {
	if err := d.checkDisabled(); err != nil {
		return err
	}
	_, err := d.win.addOriginal(column, payload)
	if err != nil && err != ErrDuplicate {
		return err
	}
	return nil
}

// AddRecovery parses and files a recovery packet (spec §4.10
// decoder_add_recovery). Recoveries too old to apply to the live window,
// or whose LDPC range [elementStart, elementEnd) is already entirely
// known, are silently dropped.
func (d *Decoder) AddRecovery(buf []byte) error {
	if err := d.checkDisabled(); err != nil {
		return err
	}
	symbol, meta, err := wire.DecodeRecoveryPacket(buf)
	if err != nil {
		d.disable("invalid recovery footer")
		return ErrDisabled
	}

	if meta.IsBare() {
		payload, _, derr := wire.DecodeOriginal(symbol)
		if derr != nil {
			d.disable("invalid bare recovery payload")
			return ErrDisabled
		}
		if _, aerr := d.win.addOriginal(meta.ColumnStart, payload); aerr != nil && aerr != ErrDuplicate {
			return aerr
		}
		return nil
	}

	sumStartElem, ok := d.win.elementOf(meta.ColumnStart)
	if !ok {
		return nil
	}
	sumCount := int(meta.SumCount)
	ldpcCount := int(meta.LDPCCount)
	elementEnd := sumStartElem + sumCount
	elementStart := elementEnd - ldpcCount

	if d.win.len() >= elementEnd && d.win.rangeLost(elementStart, elementEnd) == 0 {
		return nil
	}

	entry := &recoveryEntry{
		elementStart: elementStart,
		elementEnd:   elementEnd,
		sumStart:     sumStartElem,
		sumCount:     sumCount,
		ldpcCount:    ldpcCount,
		row:          meta.Row,
		symbol:       append([]byte(nil), symbol...),
		matRow:       -1,
	}

	if rowgen.UseCauchy(sumCount, d.cfg.CauchyThreshold) {
		d.cauchyEntries = append(d.cauchyEntries, entry)
		d.lastRecoveryElementStart = elementStart
		return nil
	}

	atTail := d.list.insert(entry)
	d.lastRecoveryElementStart = elementStart
	if !atTail {
		d.invalidateRegion()
	}
	return nil
}

// Get returns a known original's payload, or ErrNeedMoreData if the
// column isn't known yet (spec §4.10 decoder_get).
func (d *Decoder) Get(column protocol.Column) ([]byte, error) {
	if err := d.checkDisabled(); err != nil {
		return nil, err
	}
	element, ok := d.win.elementOf(column)
	if !ok || element >= d.win.len() || !d.win.present.Get(element) {
		return nil, ErrNeedMoreData
	}
	payload, _, err := wire.DecodeOriginal(d.win.records[element])
	if err != nil {
		d.disable("corrupt stored original")
		return nil, ErrDisabled
	}
	return payload, nil
}

// IsReady advances the checked region and reports whether a call to
// Decode would currently return at least one recovered original — either
// because the Siamese matrix is solvable, or because a Cauchy-coded group
// already reconstructed and is waiting to be drained (spec §4.10
// decoder_is_ready: "a pure query"; unlike the Siamese matrix, a Cauchy
// group has no separate resumable elimination phase to defer, so checking
// it and solving it are the same step).
func (d *Decoder) IsReady() (bool, error) {
	if err := d.checkDisabled(); err != nil {
		return false, err
	}
	siameseReady := d.tryEliminate()
	return siameseReady || !d.output.Empty(), nil
}

// tryEliminate extends the checked region, grows the matrix to match it,
// and runs resumable Gaussian elimination (spec §4.8 phases 1-2). It also
// opportunistically resolves any ready Cauchy-coded group, queuing its
// output regardless of whether the Siamese matrix itself is solvable.
func (d *Decoder) tryEliminate() bool {
	d.tryCauchyDecode()
	if !d.region.extend(&d.list, d.win.rangeLost) {
		return false
	}
	d.growMatrixToRegion()
	ready := d.mat.eliminate(d.matData)
	if !ready {
		d.region.solveFailed = true
		return false
	}
	return true
}

// growMatrixToRegion assigns matrix columns for every lost element inside
// the current checked region that doesn't have one yet, back-filling the
// coefficient for existing rows, then adds matrix rows for any recovery
// entries the region now spans that haven't been incorporated (spec §4.8
// step 1: "incremental: only the new submatrix region is filled").
func (d *Decoder) growMatrixToRegion() {
	var newCols []int
	for e := d.region.elementStart; e < d.region.elementEnd; e++ {
		if _, ok := d.colOfElement[e]; ok {
			continue
		}
		lost := e >= d.win.len() || !d.win.present.Get(e)
		if !lost {
			continue
		}
		col := len(d.elemOfCol)
		d.elemOfCol = append(d.elemOfCol, e)
		d.colOfElement[e] = col
		newCols = append(newCols, col)
	}
	if len(newCols) > 0 {
		d.mat.growCols(len(d.elemOfCol))
		for r := 0; r < d.mat.rows(); r++ {
			entry := d.rowEntries[r]
			for _, col := range newCols {
				d.mat.set(r, col, d.rowCoefficient(entry, d.elemOfCol[col]))
			}
		}
	}

	built := 0
	for cur := d.list.head; cur != nil && built < d.region.recoveryCount; cur, built = cur.next, built+1 {
		if cur.matRow >= 0 {
			continue
		}
		r := d.mat.addRow()
		cur.matRow = r
		d.rowEntries = append(d.rowEntries, cur)
		d.matData = append(d.matData, d.rowInitialData(cur))
		for col, e := range d.elemOfCol {
			d.mat.set(r, col, d.rowCoefficient(cur, e))
		}
	}
}

// rowInitialData implements spec §4.8 step 3 at row-construction time
// rather than deferred to after elimination: it XORs out every received
// (non-lost) original's contribution from the row's raw symbol, leaving
// exactly the linear combination of lost originals the matrix row's
// coefficients describe.
func (d *Decoder) rowInitialData(entry *recoveryEntry) []byte {
	data := append([]byte(nil), entry.symbol...)

	sumEnd := entry.sumStart + entry.sumCount
	d.elim.startSums(entry.sumStart)
	for lane := 0; lane < protocol.LaneCount; lane++ {
		rowgen.DenseFold(data, len(data), lane, entry.row, func(k int) []byte {
			return d.elim.getSum(d.win, lane, k, sumEnd)
		})
	}

	rx := rowgen.RowValue(entry.row)
	rowgen.WalkLDPCTaps(entry.row, uint32(entry.ldpcCount), func(offset int, scaled bool) {
		e := entry.elementStart + offset
		if e >= d.win.len() || !d.win.present.Get(e) {
			return
		}
		rec := d.win.records[e]
		if scaled {
			gf256.MulAddMem(data, rx, rec, len(rec))
		} else {
			gf256.AddMem(data, rec, len(rec))
		}
	})
	return data
}

// rowCoefficient returns the GF(256) scalar entry's recovery row
// contributes for lost element e: the dense running-sum coefficient if e
// falls in the sum region, XORed with the LDPC tap coefficient if e falls
// in the LDPC suffix — both are scalar multipliers of the same unknown
// payload, so they combine additively (spec §4.8 step 1).
func (d *Decoder) rowCoefficient(entry *recoveryEntry, e int) byte {
	var coeff byte
	if e >= entry.sumStart && e < entry.sumStart+entry.sumCount {
		column := d.win.column(e)
		lane := protocol.Lane(column)
		cx := lanesum.ColumnTag(column)
		coeff ^= rowgen.DenseCoefficient(lane, entry.row, cx)
	}
	if entry.ldpcCount > 0 && e >= entry.elementStart && e < entry.elementEnd {
		coeff ^= d.ldpcCoeffs(entry)[e-entry.elementStart]
	}
	return coeff
}

// ldpcCoeffs returns, lazily computed and cached per entry, the XOR-combined
// LDPC tap scalar (1 or RX) for every offset in [0, ldpcCount) — a single
// replay of the deterministic tap schedule (spec §4.4 step 2), since a
// given offset may be hit more than once.
func (d *Decoder) ldpcCoeffs(entry *recoveryEntry) []byte {
	if c, ok := d.ldpcCache[entry]; ok {
		return c
	}
	c := make([]byte, entry.ldpcCount)
	rx := rowgen.RowValue(entry.row)
	rowgen.WalkLDPCTaps(entry.row, uint32(entry.ldpcCount), func(offset int, scaled bool) {
		if scaled {
			c[offset] ^= rx
		} else {
			c[offset] ^= 1
		}
	})
	d.ldpcCache[entry] = c
	return c
}

// Decode runs the full solve pipeline — Cauchy groups and the Siamese
// matrix alike — and returns every original either one recovered (spec
// §4.10 decoder_decode). A Cauchy group can recover originals even when
// the Siamese matrix isn't yet solvable, so the two outcomes are drained
// together rather than one gating the other.
func (d *Decoder) Decode() ([]RecoveredOriginal, error) {
	if err := d.checkDisabled(); err != nil {
		return nil, err
	}
	siameseReady := d.tryEliminate()
	if siameseReady {
		if err := d.backSubstitute(); err != nil {
			d.disable(err.Error())
			return nil, ErrDisabled
		}
	}

	var out []RecoveredOriginal
	for !d.output.Empty() {
		out = append(out, d.output.PopFront())
	}
	if len(out) == 0 {
		return nil, ErrNeedMoreData
	}

	d.invalidateRegion()
	d.list.deleteBefore(d.win.nextExpected)
	d.pruneCauchyEntries()

	if d.identifyRemovalPoint() >= d.cfg.RemoveThreshold {
		d.removeElements()
	}
	return out, nil
}

// backSubstitute implements spec §4.8 step 4: right-to-left
// back-substitution over the pivoted matrix, then peels each pivot row's
// length prefix and plugs the recovered payload into the window.
func (d *Decoder) backSubstitute() error {
	d.solving = true
	defer func() { d.solving = false }()

	cols := d.mat.cols
	for i := cols - 1; i >= 0; i-- {
		pr := d.mat.pivotRow(i)
		pivotVal := d.mat.get(pr, i)
		data := d.matData[pr]
		gf256.DivMem(data, data, pivotVal, len(data))
		for j := 0; j < i; j++ {
			pj := d.mat.pivotRow(j)
			c := d.mat.get(pj, i)
			if c == 0 {
				continue
			}
			n := len(d.matData[pj])
			if nd := len(data); nd < n {
				n = nd
			}
			gf256.MulAddMem(d.matData[pj], c, data, n)
		}
	}

	for i := 0; i < cols; i++ {
		pr := d.mat.pivotRow(i)
		element := d.elemOfCol[i]
		record := d.matData[pr]
		payload, _, err := wire.DecodeOriginal(record)
		if err != nil {
			return err
		}
		if element < d.win.len() && d.win.present.Get(element) {
			continue
		}
		d.win.fill(element, record)
		d.output.PushBack(RecoveredOriginal{Column: d.win.column(element), Payload: payload})
	}
	return nil
}

// tryCauchyDecode opportunistically reconstructs any Cauchy-coded group
// (spec §4.4 item 3) once enough rows of that exact sum region have
// arrived to cover its current losses, independent of the Siamese matrix
// pipeline.
func (d *Decoder) tryCauchyDecode() {
	if len(d.cauchyEntries) == 0 {
		return
	}
	groups := make(map[[2]int][]*recoveryEntry)
	for _, e := range d.cauchyEntries {
		key := [2]int{e.sumStart, e.sumCount}
		groups[key] = append(groups[key], e)
	}
	var solved []*recoveryEntry
	for key, entries := range groups {
		sumStart, sumCount := key[0], key[1]
		lost := d.win.rangeLost(sumStart, sumStart+sumCount)
		if lost == 0 || lost > len(entries) {
			continue
		}
		shardLen := 0
		sources := make([][]byte, sumCount)
		for i := 0; i < sumCount; i++ {
			el := sumStart + i
			if el < d.win.len() && d.win.present.Get(el) {
				sources[i] = d.win.records[el]
				if len(sources[i]) > shardLen {
					shardLen = len(sources[i])
				}
			}
		}
		recovered := make(map[int][]byte, len(entries))
		for _, e := range entries {
			if len(e.symbol) > shardLen {
				shardLen = len(e.symbol)
			}
			recovered[int(e.row)] = e.symbol
		}
		if err := d.cauchy.Reconstruct(sources, shardLen, recovered); err != nil {
			continue
		}
		d.solving = true
		for i := 0; i < sumCount; i++ {
			el := sumStart + i
			if el < d.win.len() && d.win.present.Get(el) {
				continue
			}
			payload, _, derr := wire.DecodeOriginal(sources[i])
			if derr != nil {
				continue
			}
			d.win.fill(el, sources[i])
			d.output.PushBack(RecoveredOriginal{Column: d.win.column(el), Payload: payload})
		}
		d.solving = false
		solved = append(solved, entries...)
	}
	if len(solved) > 0 {
		d.pruneCauchyEntries()
	}
}

// pruneCauchyEntries drops any cauchy-group recovery whose sum region is
// now entirely known.
func (d *Decoder) pruneCauchyEntries() {
	kept := d.cauchyEntries[:0]
	for _, e := range d.cauchyEntries {
		if d.win.rangeLost(e.sumStart, e.sumStart+e.sumCount) > 0 {
			kept = append(kept, e)
		}
	}
	d.cauchyEntries = kept
}

// identifyRemovalPoint returns the leftmost element that must be kept:
// the minimum element_start pinned by any stored recovery, falling back
// to the last-seen recovery's element_start when nothing is stored (spec
// §4.9). Siamese (non-Cauchy) entries additionally pin sum_start_column,
// since their dense running-sum fold (rowInitialData/rowCoefficient)
// reaches back to sumStart, not just elementStart.
func (d *Decoder) identifyRemovalPoint() int {
	best := -1
	for e := d.list.head; e != nil; e = e.next {
		if best < 0 || e.elementStart < best {
			best = e.elementStart
		}
		if e.sumStart < best {
			best = e.sumStart
		}
	}
	for _, e := range d.cauchyEntries {
		if best < 0 || e.sumStart < best {
			best = e.sumStart
		}
	}
	if best < 0 {
		best = d.lastRecoveryElementStart
	}
	if best < 0 {
		best = d.win.nextExpected
	}
	if best < 0 {
		best = 0
	}
	return best
}

func (d *Decoder) removeElements() {
	delta := d.identifyRemovalPoint()
	if delta <= 0 {
		return
	}
	d.win.removeBefore(delta)
	d.list.decrementElementCounters(delta)
	for _, e := range d.cauchyEntries {
		e.elementStart -= delta
		e.elementEnd -= delta
		e.sumStart -= delta
	}
	if d.lastRecoveryElementStart >= 0 {
		d.lastRecoveryElementStart -= delta
		if d.lastRecoveryElementStart < 0 {
			d.lastRecoveryElementStart = 0
		}
	}
}

// Ack builds a NACK loss-range payload describing the decoder's current
// gaps, bounded by limit bytes (spec §4.10 decoder_ack).
func (d *Decoder) Ack(limit int) ([]byte, error) {
	if err := d.checkDisabled(); err != nil {
		return nil, err
	}
	n := d.win.len()
	var ranges []wire.LossRange
	for i := 0; i < n; {
		lost := d.win.findNextLost(i)
		if lost >= n {
			break
		}
		got := d.win.findNextGot(lost)
		if got > n {
			got = n
		}
		ranges = append(ranges, wire.LossRange{Start: d.win.column(lost), Count: got - lost})
		i = got
	}
	nextExpected := d.win.column(d.win.nextExpected)
	return wire.EncodeAck(nextExpected, ranges, limit), nil
}
