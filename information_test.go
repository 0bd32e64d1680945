package cadyn

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEntropy[K comparable](hist map[K]int, total int) float64 {
	var h float64
	for _, c := range hist {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// TestEntropy_Basics pins the elementary values.
func TestEntropy_Basics(t *testing.T) {
	assert.InDelta(t, 1.0, BinaryEntropy(0.5), 1e-15)
	assert.Equal(t, 0.0, BinaryEntropy(0))
	assert.Equal(t, 0.0, BinaryEntropy(1))

	uniform := make([]uint64, 16)
	for i := range uniform {
		uniform[i] = 3
	}
	assert.InDelta(t, 4.0, EntropyCounts(uniform, 48), 1e-12)
	assert.InDelta(t, 2.0, Entropy([]float64{0.25, 0.25, 0.25, 0.25, 0}), 1e-15)
	assert.Equal(t, 0.0, EntropyCounts(nil, 0))

	assert.Panics(t, func() { xlog2x(-0.25) })
}

// TestAutoMI_LagZero equals the binary entropy of the density.
func TestAutoMI_LagZero(t *testing.T) {
	src := NewSource(51)
	for _, n := range []int{1, 2, 4} {
		row := NewRow(n)
		row.RandomizeBiased(0.3, src)
		ami := make([]float64, row.Cells()/2+1)
		row.AutoMI(ami)

		want := BinaryEntropy(float64(row.OnesCount()) / float64(row.Cells()))
		assert.InDelta(t, want, ami[0], 1e-12, "n=%d", n)
		for k, v := range ami {
			assert.GreaterOrEqual(t, v, -1e-12, "lag %d", k)
			assert.LessOrEqual(t, v, want+1e-12, "lag %d", k)
		}
	}
	t.Logf("✓ Auto-MI at lag 0 is the binary entropy")
}

// TestAutoMI_Alternating is fully dependent at every lag.
func TestAutoMI_Alternating(t *testing.T) {
	row := Row{0xAAAAAAAAAAAAAAAA}
	ami := make([]float64, 33)
	row.AutoMI(ami)
	for k, v := range ami {
		assert.InDelta(t, 1.0, v, 1e-12, "lag %d", k)
	}
	ace := make([]float64, 33)
	row.AutoConditionalEntropy(ace)
	for k, v := range ace {
		assert.InDelta(t, 0.0, v, 1e-12, "lag %d", k)
	}
}

// majorityEntropy6 is the entropy of the majority rule's image of all 64
// rings of length 6. The image has 34 values: 26 reached once, 6 reached
// three times (a lone flipped cell) and 2 reached ten times (all zeros, all
// ones), so H = 6 - (18*log2(3) + 20*log2(10))/64.
const majorityEntropy6 = 4.516126767019875

// TestRuleEntropy_Majority checks the breadth-3 majority rule at m=6
// against the closed form and against a direct count.
func TestRuleEntropy_Majority(t *testing.T) {
	majority := ruleFromTable(t, 0, 0, 0, 1, 0, 1, 1, 1)
	const m = 6
	tol := DefaultAssertionConfig().EntropyTolerance

	closed := 6 - (18*math.Log2(3)+20*math.Log2(10))/64
	require.InDelta(t, majorityEntropy6, closed, tol)

	got, err := RuleEntropy(majority, m, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, majorityEntropy6, got, tol)

	hist := map[Word]int{}
	for x := Word(0); x < 1<<m; x++ {
		hist[naiveRingStep(majority, x, m)]++
	}
	assert.Len(t, hist, 34)
	assert.InDelta(t, mapEntropy(hist, 1<<m), got, tol)
	t.Logf("✓ Majority rule entropy at m=6: %.6f bits (%.6f per cell)", got, got/m)
}

// TestRuleEntropy_Extremes covers bijective and constant rules.
func TestRuleEntropy_Extremes(t *testing.T) {
	h, err := RuleEntropy(identityRule(t, 3), 10, 3, nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, h, 1e-12)

	zero, _ := NewRule(4)
	h, err = RuleEntropy(zero, 8, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, h)

	_, err = RuleEntropy(zero, 8, 0, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = RuleEntropy(zero, 3, 1, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = RuleEntropy(zero, MaxSequenceLength+1, 1, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

// TestDynamicalDependence_Reference compares against a map-based count.
func TestDynamicalDependence_Reference(t *testing.T) {
	src := NewSource(52)
	const m = 7
	for trial := 0; trial < 4; trial++ {
		rule, _ := RandomRule(3, 0.5, src)
		filter, _ := RandomRule(4, 0.6, src)
		iff, lag := trial%2, 1+trial/2

		hu := map[Word]int{}
		huv := map[[2]Word]int{}
		for x := Word(0); x < 1<<m; x++ {
			y := x
			for i := 0; i < iff; i++ {
				y = naiveRingStep(rule, y, m)
			}
			u := naiveRingStep(filter, y, m)
			for i := 0; i < lag; i++ {
				y = naiveRingStep(rule, y, m)
			}
			v := naiveRingStep(filter, y, m)
			hu[u]++
			huv[[2]Word{u, v}]++
		}
		want := mapEntropy(huv, 1<<m) - mapEntropy(hu, 1<<m)

		got, err := DynamicalDependence(rule, filter, m, iff, lag, nil)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12, "rule %s filter %s", rule, filter)
		assert.GreaterOrEqual(t, got, -1e-12)
	}
}

// TestDynamicalDependence_Identity leaves nothing to learn.
func TestDynamicalDependence_Identity(t *testing.T) {
	id := identityRule(t, 3)
	d, err := DynamicalDependence(id, id, 8, 0, 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-12)

	_, err = DynamicalDependence(id, id, 8, 0, 0, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, err = DynamicalDependence(id, id, 17, 0, 1, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

// TestScratch_Reuse gives the same answers as fresh histograms.
func TestScratch_Reuse(t *testing.T) {
	src := NewSource(53)
	scratch, err := NewScratch(10, 6)
	require.NoError(t, err)

	rule, _ := RandomRule(3, 0.4, src)
	filter, _ := RandomRule(3, 0.7, src)
	for _, m := range []int{10, 4, 8, 3} {
		a, err := RuleEntropy(rule, m, 2, scratch)
		require.NoError(t, err)
		b, _ := RuleEntropy(rule, m, 2, nil)
		assert.Equal(t, b, a, "entropy m=%d", m)
	}
	for _, m := range []int{6, 3, 5} {
		a, err := DynamicalDependence(rule, filter, m, 1, 1, scratch)
		require.NoError(t, err)
		b, _ := DynamicalDependence(rule, filter, m, 1, 1, nil)
		assert.Equal(t, b, a, "dd m=%d", m)
	}

	_, err = NewScratch(10, 17)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

// TestScratch_Undersized falls back to checked allocations when the
// scratch is too small for the requested length.
func TestScratch_Undersized(t *testing.T) {
	src := NewSource(54)
	small, err := NewScratch(4, 0)
	require.NoError(t, err)

	rule, _ := RandomRule(3, 0.4, src)
	filter, _ := RandomRule(3, 0.7, src)
	a, err := RuleEntropy(rule, 9, 1, small)
	require.NoError(t, err)
	b, _ := RuleEntropy(rule, 9, 1, nil)
	assert.Equal(t, b, a)

	c, err := DynamicalDependence(rule, filter, 5, 1, 1, small)
	require.NoError(t, err)
	d, _ := DynamicalDependence(rule, filter, 5, 1, 1, nil)
	assert.Equal(t, d, c)

	if _, ok := AvailableMemory(); !ok {
		t.Skip("available memory unknown on this platform")
	}
	_, err = small.marginalFor(60)
	assert.True(t, errors.Is(err, ErrResource), "got %v", err)
	_, err = small.jointFor(30)
	assert.True(t, errors.Is(err, ErrResource), "got %v", err)
}
