package permutation

import (
	"math/rand"
	"time"

	"github.com/san-kum/tuna/internal/vonmises"
)

// DefaultShuffles is the number of permutations used when none is given.
const DefaultShuffles = 5000

// Options configures both permutation tests.
type Options struct {
	// Shuffles is the number of permutations drawn.
	Shuffles int
	// Balanced weights every sample equally in FastTuning. When false each
	// sample is weighted by the inverse repeat count of its angle.
	Balanced bool
	// Sequential makes FastTuning reshuffle one buffer per iteration instead
	// of materialising every permutation at once.
	Sequential bool
	// Workers bounds the number of goroutines. Zero or one runs inline.
	Workers int
	// Seed seeds the random source when Rand is nil, and every chunk source
	// when Workers > 1.
	Seed int64
	// Rand is the shared stream for single-worker runs.
	Rand *rand.Rand
	// Progress, if set, receives the number of completed shuffles. Calls are
	// serialised but may come from any goroutine.
	Progress func(done, total int)
}

// DefaultOptions returns the reference configuration: 5000 balanced,
// vectorised shuffles on one worker with a time-based seed.
func DefaultOptions() Options {
	return Options{
		Shuffles: DefaultShuffles,
		Balanced: true,
		Workers:  1,
		Seed:     time.Now().UnixNano(),
	}
}

func (o Options) validate() error {
	if o.Shuffles < 1 {
		return &vonmises.InputError{Field: "shuffles", Reason: "must be at least 1"}
	}
	if o.Workers < 0 {
		return &vonmises.InputError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	if o.Workers > o.Shuffles {
		return o.Shuffles
	}
	return o.Workers
}

func (o Options) source() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(o.Seed))
}

// pValue is (exceed + 0.5) / shuffles, capped at 1.
func pValue(exceed, shuffles int) float64 {
	return min((float64(exceed)+0.5)/float64(shuffles), 1)
}

func shuffle(rng *rand.Rand, v []float64) {
	rng.Shuffle(len(v), func(i, j int) { v[i], v[j] = v[j], v[i] })
}
