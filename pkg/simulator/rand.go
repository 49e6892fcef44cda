package simulator

import (
	"math/rand/v2"
	"time"

	"pulse-node/pkg/ports"
)

var _ ports.Random = (*rand.Rand)(nil)

// NewRand returns the random source the simulation draws from. A zero seed is replaced by
// the current time, so only a non-zero seed reproduces a run.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
