package cadyn

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"github.com/seehuhn/mt19937"
)

// Source is the pseudo-random provider consumed by rule generation and
// row initialisation. Float64 is uniform on [0,1).
type Source interface {
	Float64() float64
	Uint64() uint64
}

// NewSource returns a 64-bit Mersenne Twister seeded with seed. A zero seed
// selects an unpredictable one.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = unpredictableSeed()
	}
	mt := mt19937.New()
	mt.Seed(int64(seed))
	return rand.New(mt)
}

func unpredictableSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err == nil {
		if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
			return s
		}
	}
	return uint64(time.Now().UnixNano()) | 1
}

// randIndex returns a uniform index in [0,n).
func randIndex(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
