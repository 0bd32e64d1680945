package cadyn

import (
	"math"
	"slices"
	"sync"
)

// TrigTables holds the m×m cosine and sine tables of the discrete Fourier
// basis, cos(2π·i·j/m) and sin(2π·i·j/m). Both live in one allocation; Sin
// aliases its second half. Tables are read-only once built.
type TrigTables struct {
	M   int
	Cos []float64
	Sin []float64
}

// NewTrigTables builds tables for row width m. Only the upper triangle is
// evaluated; the lower triangle is mirrored.
func NewTrigTables(m int) (*TrigTables, error) {
	if m < 2 {
		return nil, configErrorf("trig table width %d must be at least 2", m)
	}
	need := uint64(2) * uint64(m) * uint64(m) * 8
	if err := CheckMemory(need); err != nil {
		return nil, err
	}
	buf := make([]float64, 2*m*m)
	t := &TrigTables{M: m, Cos: buf[:m*m], Sin: buf[m*m:]}
	w := 2 * math.Pi / float64(m)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			a := w * float64((i*j)%m)
			c, s := math.Cos(a), math.Sin(a)
			t.Cos[i*m+j], t.Cos[j*m+i] = c, c
			t.Sin[i*m+j], t.Sin[j*m+i] = s, s
		}
	}
	return t, nil
}

// Bins is the number of independent output bins for real input, m/2+1.
func (t *TrigTables) Bins() int { return t.M/2 + 1 }

var (
	trigMu    sync.Mutex
	trigCache = map[int]*TrigTables{}
)

// SharedTrigTables returns the process-wide tables for width m, building
// them on first use.
func SharedTrigTables(m int) (*TrigTables, error) {
	trigMu.Lock()
	defer trigMu.Unlock()
	if t, ok := trigCache[m]; ok {
		return t, nil
	}
	t, err := NewTrigTables(m)
	if err != nil {
		return nil, err
	}
	trigCache[m] = t
	return t, nil
}

// DFT computes the first m/2+1 bins of the discrete Fourier transform of
// the row, summing table entries over set cells only.
func DFT(row Row, tabs *TrigTables, re, im []float64) {
	m := tabs.M
	q := tabs.Bins()
	for k := 0; k < q; k++ {
		re[k], im[k] = 0, 0
	}
	for j := 0; j < m; j++ {
		if row.Bit(j) == 0 {
			continue
		}
		for k := 0; k < q; k++ {
			re[k] += tabs.Cos[k*m+j]
			im[k] -= tabs.Sin[k*m+j]
		}
	}
}

// PowerSpectrum writes |X_k|² for the m/2+1 bins into dst via the direct
// DFT.
func PowerSpectrum(row Row, tabs *TrigTables, dst []float64) {
	q := tabs.Bins()
	re := make([]float64, q)
	im := make([]float64, q)
	DFT(row, tabs, re, im)
	for k := 0; k < q; k++ {
		dst[k] = re[k]*re[k] + im[k]*im[k]
	}
}

// Autocovariance returns ac[d] = number of cells i with x_i = x_{i+d} = 1,
// for d in [0, m/2].
func Autocovariance(row Row) []int {
	ac := make([]int, row.Cells()/2+1)
	autocovarianceInto(row, ac, NewRow(len(row)))
	return ac
}

func autocovarianceInto(row Row, ac []int, rot Row) {
	for d := range ac {
		row.RotateRight(rot, d)
		n := 0
		for k := range row {
			n += (row[k] & rot[k]).OnesCount()
		}
		ac[d] = n
	}
}

// PowerFromAutocovariance converts an autocovariance over lags 0..m/2 into
// the power spectrum by the Wiener–Khinchin relation. m must be even.
func PowerFromAutocovariance(ac []int, tabs *TrigTables, dst []float64) {
	m := tabs.M
	h := m / 2
	for k := 0; k < tabs.Bins(); k++ {
		p := float64(ac[0])
		for d := 1; d < h; d++ {
			p += 2 * float64(ac[d]) * tabs.Cos[k*m+d]
		}
		p += float64(ac[h]) * tabs.Cos[k*m+h]
		dst[k] = p
	}
}

// PowerSpectra fills dst, a rows×(m/2+1) buffer, with the power spectrum of
// every row of the CA.
func (ca *CA) PowerSpectra(tabs *TrigTables, dst []float64) error {
	if err := ca.checkSpectral(tabs, dst); err != nil {
		return err
	}
	q := tabs.Bins()
	re := make([]float64, q)
	im := make([]float64, q)
	for r := 0; r < ca.Rows; r++ {
		DFT(ca.Row(r), tabs, re, im)
		out := dst[r*q : (r+1)*q]
		for k := range out {
			out[k] = re[k]*re[k] + im[k]*im[k]
		}
	}
	return nil
}

// Autocovariances fills dst, a rows×(m/2+1) buffer, with the autocovariance
// of every row.
func (ca *CA) Autocovariances(dst []int) {
	q := ca.Width()/2 + 1
	rot := NewRow(ca.Words)
	for r := 0; r < ca.Rows; r++ {
		autocovarianceInto(ca.Row(r), dst[r*q:(r+1)*q], rot)
	}
}

// AutoMI fills dst, a rows×(m/2+1) buffer, with the auto-MI of every row.
func (ca *CA) AutoMI(dst []float64) {
	q := ca.Width()/2 + 1
	for r := 0; r < ca.Rows; r++ {
		ca.Row(r).AutoMI(dst[r*q : (r+1)*q])
	}
}

// AutoConditionalEntropy fills dst, a rows×(m/2+1) buffer, with H(Y|X) by
// lag for every row.
func (ca *CA) AutoConditionalEntropy(dst []float64) {
	q := ca.Width()/2 + 1
	for r := 0; r < ca.Rows; r++ {
		ca.Row(r).AutoConditionalEntropy(dst[r*q : (r+1)*q])
	}
}

func (ca *CA) checkSpectral(tabs *TrigTables, dst []float64) error {
	if tabs.M != ca.Width() {
		return configErrorf("trig tables for width %d, CA width %d", tabs.M, ca.Width())
	}
	if len(dst) < ca.Rows*tabs.Bins() {
		return configErrorf("spectrum buffer holds %d values, need %d", len(dst), ca.Rows*tabs.Bins())
	}
	return nil
}

// LagMedians returns, for each lag k in [0,q), the median over rows of a
// rows×q buffer such as the one filled by AutoMI.
func LagMedians(values []float64, rows, q int) []float64 {
	med := make([]float64, q)
	col := make([]float64, rows)
	for k := 0; k < q; k++ {
		for r := 0; r < rows; r++ {
			col[r] = values[r*q+k]
		}
		slices.Sort(col)
		if rows%2 == 1 {
			med[k] = col[rows/2]
		} else if rows > 0 {
			med[k] = (col[rows/2-1] + col[rows/2]) / 2
		} else {
			med[k] = math.NaN()
		}
	}
	return med
}
