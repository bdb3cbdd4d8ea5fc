package dataset

import (
	"math"
	"math/rand"

	"github.com/san-kum/tuna/internal/vonmises"
)

// Simulate draws trials responses at each of angles uniformly spaced
// directions from the two-peak model plus Gaussian noise. Samples are
// ordered trial by trial.
func Simulate(p vonmises.Params, angles, trials int, noise float64, rng *rand.Rand) (Samples, error) {
	switch {
	case angles < 1:
		return Samples{}, &vonmises.InputError{Field: "angles", Reason: "must be at least 1"}
	case trials < 1:
		return Samples{}, &vonmises.InputError{Field: "trials", Reason: "must be at least 1"}
	case noise < 0 || math.IsNaN(noise):
		return Samples{}, &vonmises.InputError{Field: "noise", Reason: "must not be negative"}
	}

	phi := make([]float64, 0, angles*trials)
	for t := 0; t < trials; t++ {
		for k := 0; k < angles; k++ {
			phi = append(phi, 2*math.Pi*float64(k)/float64(angles))
		}
	}

	x := vonmises.VonMises2(phi, p)
	if noise > 0 {
		for i := range x {
			x[i] += noise * rng.NormFloat64()
		}
	}
	return Samples{Phi: phi, X: x}, nil
}
