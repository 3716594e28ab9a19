// Package randutil derives reproducible random sources for card repair.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand whose two 64-bit seeds are both mixed from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns the sub-seed for the index-th stream of seed.
func Derive(seed int64, index int) int64 {
	return int64(mix(uint64(seed) ^ mix(uint64(index)+goldenRatio64)))
}

// ForHand is the source used to repair the hand at index. It depends only on the run
// seed and the index, never on processing order.
func ForHand(seed int64, index int) *rand.Rand {
	return New(Derive(seed, index))
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
