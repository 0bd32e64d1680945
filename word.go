package cadyn

import "math/bits"

// WordBits is the number of cells packed into one Word.
const WordBits = 64

// Word is 64 independent boolean cells; bit i is cell i.
type Word uint64

// Bit returns 1 if cell p is set, else 0.
func (w Word) Bit(p int) Word { return (w >> uint(p)) & 1 }

// RotL rotates w left (towards higher cell indices) by b bits.
func (w Word) RotL(b int) Word { return Word(bits.RotateLeft64(uint64(w), b)) }

// RotR rotates w right (towards lower cell indices) by b bits.
func (w Word) RotR(b int) Word { return Word(bits.RotateLeft64(uint64(w), -b)) }

// Reverse returns w with its cell order reversed.
func (w Word) Reverse() Word { return Word(bits.Reverse64(uint64(w))) }

// OnesCount returns the number of set cells.
func (w Word) OnesCount() int { return bits.OnesCount64(uint64(w)) }

// lowMask has the lowest b bits set, 0 <= b <= 64.
func lowMask(b int) Word {
	if b >= WordBits {
		return ^Word(0)
	}
	return Word(1)<<uint(b) - 1
}

// RandomWord returns a uniformly random word.
func RandomWord(src Source) Word { return Word(src.Uint64()) }

// RandomWordBiased returns a word whose cells are set independently with
// probability p.
func RandomWordBiased(p float64, src Source) Word {
	var w Word
	for i := 0; i < WordBits; i++ {
		if src.Float64() < p {
			w |= 1 << uint(i)
		}
	}
	return w
}
