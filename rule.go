package cadyn

import (
	"strings"
)

// MaxSequenceLength bounds the m-bit ring sequences handled by StepWord and
// the exhaustive entropy kernels.
const MaxSequenceLength = WordBits / 2

// fastBreadth is the widest rule the doubled-word row kernel handles.
const fastBreadth = WordBits / 2

// largeTable is the table size above which NewRule checks available memory.
const largeTable = 1 << 24

const hexDigits = "0123456789ABCDEF"

// MinBreadth is the narrowest rule. Narrower tables would share the
// single-digit id of breadth 2.
const MinBreadth = 2

// Rule is a breadth-B lookup table: Table[w] is the new value of a cell
// whose window (the cell and its B-1 upper neighbours, cell itself in the
// least significant bit) reads w. len(Table) == 1<<Breadth.
type Rule struct {
	Breadth int
	Table   []uint8
}

// NewRule allocates an all-zero rule of the given breadth.
func NewRule(breadth int) (*Rule, error) {
	if breadth < MinBreadth || breadth >= WordBits {
		return nil, configErrorf("rule breadth %d outside [%d,%d)", breadth, MinBreadth, WordBits)
	}
	size := uint64(1) << uint(breadth)
	if size > largeTable {
		if err := CheckMemory(size); err != nil {
			return nil, err
		}
	}
	return &Rule{Breadth: breadth, Table: make([]uint8, size)}, nil
}

// RandomRule returns a rule whose entries are 1 independently with
// probability lambda.
func RandomRule(breadth int, lambda float64, src Source) (*Rule, error) {
	r, err := NewRule(breadth)
	if err != nil {
		return nil, err
	}
	r.Randomize(lambda, src)
	return r, nil
}

// Size returns the number of table entries, 2^B.
func (r *Rule) Size() int { return len(r.Table) }

// Ones returns the number of 1 outputs.
func (r *Rule) Ones() int {
	c := 0
	for _, t := range r.Table {
		c += int(t)
	}
	return c
}

// Lambda returns Langton's lambda, the fraction of 1 outputs.
func (r *Rule) Lambda() float64 { return float64(r.Ones()) / float64(r.Size()) }

// Invert flips every output in place.
func (r *Rule) Invert() {
	for i := range r.Table {
		r.Table[i] ^= 1
	}
}

// Clone returns a deep copy.
func (r *Rule) Clone() *Rule {
	c := &Rule{Breadth: r.Breadth, Table: make([]uint8, len(r.Table))}
	copy(c.Table, r.Table)
	return c
}

// Equal reports whether both rules have the same breadth and table.
func (r *Rule) Equal(o *Rule) bool {
	if r.Breadth != o.Breadth {
		return false
	}
	for i, t := range r.Table {
		if o.Table[i] != t {
			return false
		}
	}
	return true
}

// Randomize sets each output to 1 with probability lambda.
func (r *Rule) Randomize(lambda float64, src Source) {
	for i := range r.Table {
		if src.Float64() < lambda {
			r.Table[i] = 1
		} else {
			r.Table[i] = 0
		}
	}
}

// RandomizeExact sets exactly ones outputs to 1, positions drawn by a
// partial Fisher-Yates shuffle.
func (r *Rule) RandomizeExact(ones int, src Source) error {
	size := r.Size()
	if ones < 0 || ones > size {
		return configErrorf("cannot place %d ones in a table of %d entries", ones, size)
	}
	for i := range r.Table {
		r.Table[i] = 0
	}
	for i := 0; i < ones; i++ {
		r.Table[i] = 1
	}
	for i := 0; i < ones; i++ {
		j := i + randIndex(src, size-i)
		r.Table[i], r.Table[j] = r.Table[j], r.Table[i]
	}
	return nil
}

// Words packs the table into ⌈2^B/64⌉ words, entry i at bit i%64 of word i/64.
func (r *Rule) Words() []Word {
	words := make([]Word, tableWords(r.Breadth))
	for i, t := range r.Table {
		words[i/WordBits] |= Word(t) << uint(i%WordBits)
	}
	return words
}

// RuleFromWords unpacks a table produced by Words.
func RuleFromWords(breadth int, words []Word) (*Rule, error) {
	r, err := NewRule(breadth)
	if err != nil {
		return nil, err
	}
	if len(words) != tableWords(breadth) {
		return nil, configErrorf("breadth %d needs %d table words, got %d", breadth, tableWords(breadth), len(words))
	}
	for i := range r.Table {
		r.Table[i] = uint8(words[i/WordBits].Bit(i % WordBits))
	}
	return r, nil
}

func tableWords(breadth int) int {
	if breadth > 6 {
		return 1 << uint(breadth-6)
	}
	return 1
}

// IDLength returns the number of hex digits in a breadth-B rule id.
func IDLength(breadth int) int {
	if breadth > 2 {
		return 1 << uint(breadth-2)
	}
	return 1
}

// ID encodes the table as hex, four entries per digit, entry 4c+i in bit i
// of digit c.
func (r *Rule) ID() string {
	var sb strings.Builder
	sb.Grow(IDLength(r.Breadth))
	var u, i int
	for _, t := range r.Table {
		u |= int(t) << uint(i)
		if i++; i == 4 {
			sb.WriteByte(hexDigits[u])
			u, i = 0, 0
		}
	}
	return sb.String()
}

func (r *Rule) String() string { return r.ID() }

// DecodeID parses a hex rule id of known breadth. Lower case digits are
// accepted.
func DecodeID(breadth int, id string) (*Rule, error) {
	r, err := NewRule(breadth)
	if err != nil {
		return nil, err
	}
	if len(id) != IDLength(breadth) {
		return nil, ErrIDLength
	}
	for c := 0; c < len(id); c++ {
		u, ok := hexValue(id[c])
		if !ok {
			return nil, ErrIDNonHex
		}
		for i := 0; i < 4; i++ {
			r.Table[4*c+i] = uint8(u>>uint(i)) & 1
		}
	}
	return r, nil
}

// ParseID infers the breadth from the id length (one digit is breadth 2,
// 2^(B-2) digits is breadth B) and decodes it.
func ParseID(id string) (*Rule, error) {
	n := len(id)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrIDLength
	}
	breadth := 2
	for l := 1; l < n; l <<= 1 {
		breadth++
	}
	if breadth >= WordBits {
		return nil, ErrIDLength
	}
	return DecodeID(breadth, id)
}

func hexValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	}
	return 0, false
}

// Step applies the rule once to every cell of src, writing into dst.
// dst and src must have equal length and must not overlap.
func (r *Rule) Step(dst, src Row) {
	if r.Breadth <= fastBreadth {
		r.stepFast(dst, src)
		return
	}
	r.stepGeneric(dst, src)
}

// stepFast splices the next word above the current one so each window is a
// shift and a mask; the last word wraps to word 0.
func (r *Rule) stepFast(dst, src Row) {
	n := len(src)
	b := r.Breadth
	mask := lowMask(b)
	tab := r.Table
	for k := 0; k < n; k++ {
		w := src[k]
		next := src[0]
		if k < n-1 {
			next = src[k+1]
		}
		var out Word
		i := 0
		for ; i < WordBits-b; i++ {
			out |= Word(tab[w&mask]) << uint(i)
			w >>= 1
		}
		w |= next << uint(b)
		for ; i < WordBits; i++ {
			out |= Word(tab[w&mask]) << uint(i)
			w >>= 1
		}
		dst[k] = out
	}
}

func (r *Rule) stepGeneric(dst, src Row) {
	tab := r.Table
	for k := range src {
		var out Word
		for i := 0; i < WordBits; i++ {
			out |= Word(tab[src.Window(k*WordBits+i, r.Breadth)]) << uint(i)
		}
		dst[k] = out
	}
}

// StepWord applies the rule once to the m-bit ring held in the low m bits
// of w. Requires Breadth <= m <= MaxSequenceLength.
func (r *Rule) StepWord(w Word, m int) Word {
	mask := lowMask(r.Breadth)
	w2 := w<<uint(m) | w
	var out Word
	for i := 0; i < m; i++ {
		out |= Word(r.Table[w2&mask]) << uint(i)
		w2 >>= 1
	}
	return out
}

// UniqueImages counts the distinct images of all 2^m ring sequences of
// length m under one step of the rule.
func (r *Rule) UniqueImages(m int) (int, error) {
	if err := checkSequenceLength(r, m); err != nil {
		return 0, err
	}
	size := uint64(1) << uint(m)
	if err := CheckMemory(size / 8); err != nil {
		return 0, err
	}
	seen := make([]Word, (size+WordBits-1)/WordBits)
	count := 0
	for x := Word(0); uint64(x) < size; x++ {
		y := r.StepWord(x, m)
		k, bit := y/WordBits, Word(1)<<uint(y%WordBits)
		if seen[k]&bit == 0 {
			seen[k] |= bit
			count++
		}
	}
	return count, nil
}

func checkSequenceLength(r *Rule, m int) error {
	if m < r.Breadth || m > MaxSequenceLength {
		return configErrorf("sequence length %d outside [%d,%d] for breadth %d rule", m, r.Breadth, MaxSequenceLength, r.Breadth)
	}
	return nil
}
