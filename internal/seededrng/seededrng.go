// Package seededrng turns string or integer seeds into small, reproducible
// pseudo-random streams. All arithmetic is 32-bit unsigned with wraparound so
// output matches across platforms bit for bit.
package seededrng

import "unicode/utf16"

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619

	mulberryIncrement uint32 = 0x6D2B79F5

	tileMulX      uint32 = 374761393
	tileMulY      uint32 = 668265263
	tileAvalanche uint32 = 1274126177
)

// StringToSeed folds text into a 32-bit seed with FNV-1a.
// Characters are folded as UTF-16 code units, which equals the code point for
// anything in the Basic Multilingual Plane.
func StringToSeed(text string) uint32 {
	h := fnvOffsetBasis
	for _, unit := range utf16.Encode([]rune(text)) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}

// HashTile mixes a base seed with tile coordinates into an independent tile seed.
func HashTile(baseSeed uint32, tileX, tileY int) uint32 {
	h := baseSeed ^ (uint32(tileX) * tileMulX) ^ (uint32(tileY) * tileMulY)
	h = (h ^ (h >> 13)) * tileAvalanche
	h ^= h >> 16
	return h
}

// Rand is a Mulberry32 generator. The zero value is a valid generator seeded with 0.
// A Rand is not safe for concurrent use.
type Rand struct {
	state uint32
}

// New returns a generator whose stream is fully determined by seed.
func New(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Uint32 returns the next raw 32-bit output.
func (r *Rand) Uint32() uint32 {
	r.state += mulberryIncrement
	t := r.state
	x := (t ^ (t >> 15)) * (t | 1)
	x ^= x + (x^(x>>7))*(x|61)
	return x ^ (x >> 14)
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / 4294967296.0
}

// Intn returns a value in [0, n) derived from one Float64 draw, the way the
// legacy cluster layout picks directions and indices. It returns 0 when n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// Chance reports whether a single draw falls below rate.
func (r *Rand) Chance(rate float64) bool {
	return r.Float64() < rate
}

// Between returns lo + draw*(hi-lo).
func (r *Rand) Between(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
