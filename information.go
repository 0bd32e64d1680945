package cadyn

import (
	"fmt"
	"math"
)

// xlog2x is x·log2(x) with 0·log2(0) taken as 0. A negative argument is a
// probability that cannot exist and panics.
func xlog2x(x float64) float64 {
	switch {
	case x > math.SmallestNonzeroFloat64:
		return x * math.Log2(x)
	case x > -math.SmallestNonzeroFloat64:
		return 0
	default:
		panic(fmt.Sprintf("cadyn: negative probability %g", x))
	}
}

// Entropy returns the Shannon entropy in bits of the distribution p.
func Entropy(p []float64) float64 {
	var h float64
	for _, x := range p {
		h -= xlog2x(x)
	}
	return h
}

// EntropyCounts returns the Shannon entropy in bits of a histogram whose
// counts sum to total.
func EntropyCounts(counts []uint64, total uint64) float64 {
	if total == 0 {
		return 0
	}
	f := 1 / float64(total)
	var h float64
	for _, c := range counts {
		if c != 0 {
			h -= xlog2x(f * float64(c))
		}
	}
	return h
}

// BinaryEntropy is the entropy of a Bernoulli(p) variable.
func BinaryEntropy(p float64) float64 {
	return -(xlog2x(p) + xlog2x(1-p))
}

// lagCounts returns the four cell-pair counts for lag k: n11 both set, n10
// and n01 one set, n00 neither.
func (r Row) lagCounts(k int, rot Row) (n00, n01, n11 uint64) {
	m := uint64(r.Cells())
	n1 := uint64(r.OnesCount())
	r.RotateRight(rot, k)
	var both int
	for i := range r {
		both += (r[i] & rot[i]).OnesCount()
	}
	n11 = uint64(both)
	n01 = n1 - n11
	n00 = m - n11 - 2*n01
	return n00, n01, n11
}

func pairEntropy(n00, n01, n11, m uint64) float64 {
	return EntropyCounts([]uint64{n00, n01, n01, n11}, m)
}

// AutoMI writes the mutual information between cell j and cell j+k, taken
// over all j, for lags k = 0..len(dst)-1. len(dst) is at most m/2+1.
func (r Row) AutoMI(dst []float64) {
	m := uint64(r.Cells())
	hx := BinaryEntropy(float64(r.OnesCount()) / float64(m))
	rot := NewRow(len(r))
	for k := range dst {
		n00, n01, n11 := r.lagCounts(k, rot)
		dst[k] = 2*hx - pairEntropy(n00, n01, n11, m)
	}
}

// AutoConditionalEntropy writes H(cell j+k | cell j) for lags
// k = 0..len(dst)-1.
func (r Row) AutoConditionalEntropy(dst []float64) {
	m := uint64(r.Cells())
	hx := BinaryEntropy(float64(r.OnesCount()) / float64(m))
	rot := NewRow(len(r))
	for k := range dst {
		n00, n01, n11 := r.lagCounts(k, rot)
		dst[k] = pairEntropy(n00, n01, n11, m) - hx
	}
}

// Scratch holds the count histograms for sequence-entropy computations so a
// sweep can reuse them across items. A Scratch must not be shared between
// goroutines.
type Scratch struct {
	marginal []uint64
	joint    []uint64
}

// NewScratch sizes histograms for rule entropy up to length entropyMax and
// dynamical dependence up to length ddMax. A zero bound skips that buffer.
func NewScratch(entropyMax, ddMax int) (*Scratch, error) {
	if entropyMax < 0 || entropyMax > MaxSequenceLength {
		return nil, configErrorf("entropy length %d outside [0,%d]", entropyMax, MaxSequenceLength)
	}
	if ddMax < 0 || 2*ddMax > MaxSequenceLength {
		return nil, configErrorf("dependence length %d outside [0,%d]", ddMax, MaxSequenceLength/2)
	}
	need := HistogramBytes(max(entropyMax, ddMax))
	if ddMax > 0 {
		need += HistogramBytes(2 * ddMax)
	}
	if err := CheckMemory(need); err != nil {
		return nil, err
	}
	s := &Scratch{marginal: make([]uint64, 1<<uint(max(entropyMax, ddMax)))}
	if ddMax > 0 {
		s.joint = make([]uint64, 1<<uint(2*ddMax))
	}
	return s, nil
}

// marginalFor returns a cleared m-bit histogram, reusing s when it is large
// enough. A fresh allocation passes the memory check first.
func (s *Scratch) marginalFor(m int) ([]uint64, error) {
	size := 1 << uint(m)
	if s == nil || len(s.marginal) < size {
		return allocHistogram(m)
	}
	h := s.marginal[:size]
	clear(h)
	return h, nil
}

func (s *Scratch) jointFor(m int) ([]uint64, error) {
	size := 1 << uint(2*m)
	if s == nil || len(s.joint) < size {
		return allocHistogram(2 * m)
	}
	h := s.joint[:size]
	clear(h)
	return h, nil
}

func allocHistogram(bits int) ([]uint64, error) {
	if err := CheckMemory(HistogramBytes(bits)); err != nil {
		return nil, err
	}
	return make([]uint64, 1<<uint(bits)), nil
}

// RuleEntropy is the entropy in bits of the image of all 2^m ring
// sequences of length m after iff applications of the rule. Divide by m for
// a rate. scratch may be nil.
func RuleEntropy(rule *Rule, m, iff int, scratch *Scratch) (float64, error) {
	if err := checkSequenceLength(rule, m); err != nil {
		return 0, err
	}
	if iff < 1 {
		return 0, configErrorf("entropy advance %d must be at least 1", iff)
	}
	hist, err := scratch.marginalFor(m)
	if err != nil {
		return 0, err
	}
	size := uint64(1) << uint(m)
	for x := Word(0); uint64(x) < size; x++ {
		y := x
		for i := 0; i < iff; i++ {
			y = rule.StepWord(y, m)
		}
		hist[y]++
	}
	return EntropyCounts(hist, size), nil
}

// DynamicalDependence measures how much of a filtered observable's future
// is left undetermined by its present. For each of the 2^m sequences it
// advances iff rule steps and filters to get u, advances lag more rule
// steps and filters to get v, and returns H(u,v) − H(u), that is the
// conditional entropy H(v|u) in bits. Divide by m for a rate.
func DynamicalDependence(rule, filter *Rule, m, iff, lag int, scratch *Scratch) (float64, error) {
	if err := checkSequenceLength(rule, m); err != nil {
		return 0, err
	}
	if err := checkSequenceLength(filter, m); err != nil {
		return 0, err
	}
	if 2*m > MaxSequenceLength {
		return 0, configErrorf("dependence length %d exceeds %d", m, MaxSequenceLength/2)
	}
	if iff < 0 || lag < 1 {
		return 0, configErrorf("dependence advance %d and lag %d must be >= 0 and >= 1", iff, lag)
	}
	hu, err := scratch.marginalFor(m)
	if err != nil {
		return 0, err
	}
	huv, err := scratch.jointFor(m)
	if err != nil {
		return 0, err
	}
	size := uint64(1) << uint(m)
	for x := Word(0); uint64(x) < size; x++ {
		y := x
		for i := 0; i < iff; i++ {
			y = rule.StepWord(y, m)
		}
		u := filter.StepWord(y, m)
		hu[u]++
		for i := 0; i < lag; i++ {
			y = rule.StepWord(y, m)
		}
		v := filter.StepWord(y, m)
		huv[u|v<<uint(m)]++
	}
	return EntropyCounts(huv, size) - EntropyCounts(hu, size), nil
}
