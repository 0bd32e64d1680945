package cadyn

import (
	"cmp"
	"slices"
)

// CA is a space-time diagram: Rows rows of Words words each, stored in one
// contiguous buffer. Row r occupies Cells[r*Words : (r+1)*Words].
type CA struct {
	Rows  int
	Words int
	Cells []Word
}

// NewCA allocates a zeroed rows × words diagram.
func NewCA(rows, words int) (*CA, error) {
	if rows < 1 || words < 1 {
		return nil, configErrorf("CA needs at least one row and one word, got %d×%d", rows, words)
	}
	if err := CheckMemory(uint64(rows) * uint64(words) * 8); err != nil {
		return nil, err
	}
	return &CA{Rows: rows, Words: words, Cells: make([]Word, rows*words)}, nil
}

// Row returns row r as a view into the buffer.
func (ca *CA) Row(r int) Row { return Row(ca.Cells[r*ca.Words : (r+1)*ca.Words]) }

// Width returns the number of cells per row.
func (ca *CA) Width() int { return ca.Words * WordBits }

// DefaultUntwist is the per-step shift that cancels the drift caused by a
// window anchored at its lowest cell.
func DefaultUntwist(breadth int) int { return breadth / 2 }

// Run fills rows 1..Rows-1 by stepping row 0 with rule. A non-zero untwist
// then rotates row r left by r*untwist cells.
func (ca *CA) Run(rule *Rule, untwist int) {
	for r := 1; r < ca.Rows; r++ {
		rule.Step(ca.Row(r), ca.Row(r-1))
	}
	if untwist != 0 {
		ca.rotateRows(untwist)
	}
}

func (ca *CA) rotateRows(nbits int) {
	tmp := NewRow(ca.Words)
	for r := 1; r < ca.Rows; r++ {
		row := ca.Row(r)
		copy(tmp, row)
		tmp.RotateLeft(row, r*nbits)
	}
}

// Filter writes rule applied to every row of ca into dst, which must have
// the same shape.
func (ca *CA) Filter(dst *CA, rule *Rule) {
	for r := 0; r < ca.Rows; r++ {
		rule.Step(dst.Row(r), ca.Row(r))
	}
}

// RotateLeft writes ca into dst with row r rotated left by r*nbits.
func (ca *CA) RotateLeft(dst *CA, nbits int) {
	for r := 0; r < ca.Rows; r++ {
		ca.Row(r).RotateLeft(dst.Row(r), r*nbits)
	}
}

// RotateRight writes ca into dst with row r rotated right by r*nbits.
func (ca *CA) RotateRight(dst *CA, nbits int) {
	for r := 0; r < ca.Rows; r++ {
		ca.Row(r).RotateRight(dst.Row(r), r*nbits)
	}
}

// Reverse writes ca into dst with every row mirrored.
func (ca *CA) Reverse(dst *CA) {
	for r := 0; r < ca.Rows; r++ {
		ca.Row(r).Reverse(dst.Row(r))
	}
}

// Evolve advances row in place by steps applications of rule, ping-ponging
// between row and a single work buffer.
func Evolve(row Row, rule *Rule, steps int) {
	if steps <= 0 {
		return
	}
	work := NewRow(len(row))
	for j := 0; j < steps/2; j++ {
		rule.Step(work, row)
		rule.Step(row, work)
	}
	if steps%2 == 1 {
		rule.Step(work, row)
		copy(row, work)
	}
}

// ParticleCount is the mean number of occurrences per row of one pattern.
type ParticleCount struct {
	Pattern   Word
	Frequency float64
}

// ParticleCounts tallies every breadth-wide pattern across all rows. With
// sorted set the result is ordered by descending frequency.
func (ca *CA) ParticleCounts(breadth int, sorted bool) ([]ParticleCount, error) {
	if breadth < 1 || breadth > 16 {
		return nil, configErrorf("particle breadth %d outside [1,16]", breadth)
	}
	tally := make([]int, 1<<uint(breadth))
	for r := 0; r < ca.Rows; r++ {
		row := ca.Row(r)
		for i := 0; i < row.Cells(); i++ {
			tally[row.Window(i, breadth)]++
		}
	}
	counts := make([]ParticleCount, len(tally))
	for p, t := range tally {
		counts[p] = ParticleCount{Pattern: Word(p), Frequency: float64(t) / float64(ca.Rows)}
	}
	if sorted {
		slices.SortStableFunc(counts, func(a, b ParticleCount) int {
			return cmp.Compare(b.Frequency, a.Frequency)
		})
	}
	return counts, nil
}
