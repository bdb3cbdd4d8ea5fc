package permutation_test

import (
	"math"
	"math/rand"

	"github.com/san-kum/tuna/internal/vonmises"
)

// directions returns k evenly spaced angles, each repeated trials times.
func directions(k, trials int) []float64 {
	phi := make([]float64, 0, k*trials)
	for t := 0; t < trials; t++ {
		for i := 0; i < k; i++ {
			phi = append(phi, 2*math.Pi*float64(i)/float64(k))
		}
	}
	return phi
}

func tuned(phi []float64, noise float64, seed int64) []float64 {
	x := vonmises.VonMises2(phi, vonmises.Params{A0: 1, A1: 5, A2: 2, Theta: 1.2, W: 5})
	rng := rand.New(rand.NewSource(seed))
	for i := range x {
		x[i] += noise * rng.NormFloat64()
	}
	return x
}

func gaussian(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	return x
}
