package decoder

import "github.com/gofec/siamese/internal/gf256"

// matrix is the incremental dense GF(256) recovery matrix (component J):
// rows are recovery packets, columns are lost elements. Both dimensions
// grow over the matrix's lifetime as more recoveries arrive and more
// losses are discovered, and Eliminate resumes forward elimination from
// wherever it last stalled rather than restarting (spec §4.8 step 2,
// §9 "resumable Gaussian elimination").
type matrix struct {
	coeffs [][]byte // coeffs[physicalRow], length == cols
	cols   int

	// order[logicalPos] is the physical row index holding that logical
	// position. Logical positions [0, resumeCol) are pivoted, in final
	// order; positions >= resumeCol are not yet assigned a pivot.
	order     []int
	resumeCol int

	// Per physical row bookkeeping that makes elimination resumable:
	// factors[r][p] is the scalar subtracted from row r when pivot p was
	// first established (0 meaning "no-op", since row r already had a
	// zero there); reducedThrough/reducedCols record how much of that
	// row's pivot history and column width have been brought up to date.
	factors        [][]byte
	reducedThrough []int
	reducedCols    []int
}

func newMatrix() *matrix { return &matrix{} }

func (m *matrix) rows() int { return len(m.coeffs) }

// growCols extends every existing row to n columns, zero-padded. The
// caller fills the new column's entries afterward via set.
func (m *matrix) growCols(n int) {
	if n <= m.cols {
		return
	}
	for i := range m.coeffs {
		grown := make([]byte, n)
		copy(grown, m.coeffs[i])
		m.coeffs[i] = grown
	}
	m.cols = n
}

// addRow appends a new physical row, zero-initialized across the
// matrix's current column width, and returns its physical index.
func (m *matrix) addRow() int {
	m.coeffs = append(m.coeffs, make([]byte, m.cols))
	m.factors = append(m.factors, nil)
	m.reducedThrough = append(m.reducedThrough, 0)
	m.reducedCols = append(m.reducedCols, 0)
	m.order = append(m.order, len(m.coeffs)-1)
	return len(m.coeffs) - 1
}

func (m *matrix) set(row, col int, v byte) { m.coeffs[row][col] = v }
func (m *matrix) get(row, col int) byte    { return m.coeffs[row][col] }

// pivotRow returns the physical row holding the pivot for logical column
// i, valid only once i < eliminatedCols().
func (m *matrix) pivotRow(i int) int { return m.order[i] }

func (m *matrix) eliminatedCols() int { return m.resumeCol }

func (m *matrix) ensureFactorLen(r, n int) {
	if len(m.factors[r]) >= n {
		return
	}
	grown := make([]byte, n)
	copy(grown, m.factors[r])
	m.factors[r] = grown
}

// reduceRow brings physical row r's coefficient vector (and, the first
// time a pivot is applied, its paired data buffer) up to date against
// the pivots at logical positions [0, through). Already-applied pivots are
// replayed against any column range added since, using the stored factor
// rather than recomputing it — recomputing would read a coefficient that
// elimination already zeroed.
func (m *matrix) reduceRow(r, through int, data [][]byte) {
	if m.reducedCols[r] < m.cols {
		for p := 0; p < m.reducedThrough[r]; p++ {
			f := m.factors[r][p]
			if f == 0 {
				continue
			}
			pivotRow := m.order[p]
			lo := m.reducedCols[r]
			gf256.MulAddMem(m.coeffs[r][lo:m.cols], f, m.coeffs[pivotRow][lo:m.cols], m.cols-lo)
		}
		m.reducedCols[r] = m.cols
	}

	for p := m.reducedThrough[r]; p < through; p++ {
		m.ensureFactorLen(r, p+1)
		pivotRow := m.order[p]
		val := m.coeffs[r][p]
		var f byte
		if val != 0 {
			f = gf256.Div(val, m.coeffs[pivotRow][p])
			gf256.MulAddMem(m.coeffs[r][p:m.cols], f, m.coeffs[pivotRow][p:m.cols], m.cols-p)
			n := len(data[r])
			if pn := len(data[pivotRow]); pn < n {
				n = pn
			}
			gf256.MulAddMem(data[r], f, data[pivotRow], n)
		}
		m.factors[r][p] = f
	}
	if through > m.reducedThrough[r] {
		m.reducedThrough[r] = through
	}
}

// eliminate drives forward pivoted elimination from the current resume
// point, reducing data (one recovery-symbol buffer per physical row) in
// lockstep with the coefficients. It returns true once every column has
// been assigned a pivot; otherwise the matrix records where it stalled
// and a later call — after more rows or columns arrive — picks up there.
func (m *matrix) eliminate(data [][]byte) bool {
	rows := len(m.coeffs)
	// Pivot rows first replay their earlier pivots over any columns added
	// since they were selected, in logical order, so the rows reduced
	// below see up-to-date pivot rows in every column.
	for pos := 0; pos < m.resumeCol; pos++ {
		m.reduceRow(m.order[pos], pos, data)
	}
	for i := m.resumeCol; i < m.cols; i++ {
		if i >= rows {
			return false
		}
		for pos := i; pos < rows; pos++ {
			m.reduceRow(m.order[pos], i, data)
		}
		pivotPos := -1
		for j := i; j < rows; j++ {
			if m.coeffs[m.order[j]][i] != 0 {
				pivotPos = j
				break
			}
		}
		if pivotPos < 0 {
			return false
		}
		m.order[i], m.order[pivotPos] = m.order[pivotPos], m.order[i]
		m.resumeCol = i + 1
	}
	return rows >= m.cols
}
