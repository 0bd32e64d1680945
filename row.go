package cadyn

import (
	"strings"
)

// Row is one configuration of a periodic CA: len(r)*WordBits cells on a
// ring. Cell i lives in bit i%64 of word i/64.
type Row []Word

// NewRow allocates a zeroed row of n words.
func NewRow(n int) Row { return make(Row, n) }

// Cells returns the ring length m.
func (r Row) Cells() int { return len(r) * WordBits }

// Bit returns cell i (cyclic) as 0 or 1.
func (r Row) Bit(i int) Word {
	i = mod(i, r.Cells())
	return r[i/WordBits].Bit(i % WordBits)
}

// SetBit sets cell i (cyclic) to b, which must be 0 or 1.
func (r Row) SetBit(i int, b Word) {
	i = mod(i, r.Cells())
	k, p := i/WordBits, uint(i%WordBits)
	r[k] = r[k]&^(1<<p) | (b&1)<<p
}

// Copy returns a fresh copy of r.
func (r Row) Copy() Row {
	c := make(Row, len(r))
	copy(c, r)
	return c
}

// Zero clears every cell.
func (r Row) Zero() {
	for k := range r {
		r[k] = 0
	}
}

// Equal reports whether r and o hold identical cells.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for k := range r {
		if r[k] != o[k] {
			return false
		}
	}
	return true
}

// IsZero reports whether no cell is set.
func (r Row) IsZero() bool {
	for _, w := range r {
		if w != 0 {
			return false
		}
	}
	return true
}

// OnesCount returns the number of set cells.
func (r Row) OnesCount() int {
	c := 0
	for _, w := range r {
		c += w.OnesCount()
	}
	return c
}

// RotateLeft writes r rotated left (cell i moves to cell i+nbits) into dst.
// dst and r must have equal length and must not overlap.
func (r Row) RotateLeft(dst Row, nbits int) {
	n := len(r)
	nbits = mod(nbits, r.Cells())
	m, b := nbits/WordBits, uint(nbits%WordBits)
	if b == 0 {
		for k := 0; k < n; k++ {
			dst[(k+m)%n] = r[k]
		}
		return
	}
	prev := r[n-1]
	for k := 0; k < n; k++ {
		dst[(k+m)%n] = r[k]<<b | prev>>(WordBits-b)
		prev = r[k]
	}
}

// RotateRight writes r rotated right by nbits into dst.
func (r Row) RotateRight(dst Row, nbits int) {
	r.RotateLeft(dst, r.Cells()-mod(nbits, r.Cells()))
}

// Reverse writes r with its cell order reversed into dst.
func (r Row) Reverse(dst Row) {
	n := len(r)
	for k := 0; k < n; k++ {
		dst[n-1-k] = r[k].Reverse()
	}
}

// Equivalent returns the smallest rotation b such that o rotated left by b
// equals r, or -1 if o is not a rotation of r. Cost is O(m·n).
func (r Row) Equivalent(o Row) int {
	if len(r) != len(o) {
		return -1
	}
	return r.EquivalentInto(o, make(Row, len(o)))
}

// EquivalentInto is Equivalent with rot, of the same length, as the
// rotation buffer. It does not allocate.
func (r Row) EquivalentInto(o, rot Row) int {
	if len(r) != len(o) || len(rot) != len(o) {
		return -1
	}
	if r.OnesCount() != o.OnesCount() {
		return -1
	}
	for b := 0; b < r.Cells(); b++ {
		o.RotateLeft(rot, b)
		if rot.Equal(r) {
			return b
		}
	}
	return -1
}

// Window returns cells pos..pos+breadth-1 (cyclic) packed with cell pos in
// the least significant bit. breadth must be in [1, WordBits).
func (r Row) Window(pos, breadth int) Word {
	pos = mod(pos, r.Cells())
	k, i := pos/WordBits, uint(pos%WordBits)
	w := r[k] >> i
	if int(i)+breadth > WordBits {
		w |= r[(k+1)%len(r)] << (WordBits - i)
	}
	return w & lowMask(breadth)
}

// MatchPattern sets cell i of dst iff the breadth-wide window at i equals
// pattern.
func (r Row) MatchPattern(dst Row, breadth int, pattern Word) {
	for k := range dst {
		var w Word
		for i := 0; i < WordBits; i++ {
			if r.Window(k*WordBits+i, breadth) == pattern {
				w |= 1 << uint(i)
			}
		}
		dst[k] = w
	}
}

// Randomize fills r with uniformly random cells.
func (r Row) Randomize(src Source) {
	for k := range r {
		r[k] = RandomWord(src)
	}
}

// RandomizeBiased sets each cell independently with probability p.
func (r Row) RandomizeBiased(p float64, src Source) {
	for k := range r {
		r[k] = RandomWordBiased(p, src)
	}
}

// Noisify flips each cell independently with probability p.
func (r Row) Noisify(p float64, src Source) {
	for k := range r {
		r[k] ^= RandomWordBiased(p, src)
	}
}

// String renders the row as 0/1 characters, highest cell first.
func (r Row) String() string {
	var sb strings.Builder
	sb.Grow(r.Cells())
	for i := r.Cells() - 1; i >= 0; i-- {
		if r.Bit(i) == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func mod(a, m int) int {
	a %= m
	if a < 0 {
		a += m
	}
	return a
}
