package util

import "math/rand"

// New returns a deterministic source for the given seed. A zero seed is
// treated as 1 so that an unset flag still yields a reproducible run.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// Derive returns the seed of the run-th battle of a batch. It only depends on
// the base seed and the run index, never on which worker picks the run up.
func Derive(base int64, run int) int64 {
	return base + int64(run)*7919
}
