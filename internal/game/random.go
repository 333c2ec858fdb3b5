package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// Stream is a restartable pseudo-random sequence derived from a 32-bit seed.
// Two streams built from the same seed yield the same values in the same order.
type Stream struct {
	seed uint32
	rng  *rand.Rand
}

// NewStream returns a stream positioned at the start of seed's sequence.
func NewStream(seed uint32) *Stream {
	// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
	// #nosec G404
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seedWord(seed, 'a'), seedWord(seed, 'b'))),
	}
}

// Seed reports the seed the stream was built from.
func (s *Stream) Seed() uint32 {
	return s.seed
}

// Float64 returns the next value in [0,1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// IntN returns the next value in [0,n). n <= 0 yields 0.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n)
}

// Chance reports whether the next draw falls under p.
func (s *Stream) Chance(p float64) bool {
	return s.Float64() < p
}

// Between returns lo + [0, span).
func (s *Stream) Between(lo, span float64) float64 {
	return lo + s.Float64()*span
}

// Salt combines a base seed with context salts so unrelated draws never share
// a running generator.
func Salt(base uint32, salts ...uint32) uint32 {
	out := base
	for _, salt := range salts {
		out ^= salt
	}
	return out
}

// HashName is 32-bit FNV-1a over name, used to salt streams by event name.
func HashName(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return h.Sum32()
}

func seedWord(seed uint32, lane byte) uint64 {
	var buf [5]byte
	binary.LittleEndian.PutUint32(buf[:4], seed)
	buf[4] = lane
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

// NewSeed draws a fresh character seed from crypto/rand.
func NewSeed() uint32 {
	var b [4]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}
