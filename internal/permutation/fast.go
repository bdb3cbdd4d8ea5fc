package permutation

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tuna/internal/vonmises"
)

// FastResult holds the second-harmonic statistic and its permutation p-value.
type FastResult struct {
	P    float64   `json:"p"`
	S    float64   `json:"s"`
	Null []float64 `json:"-"`
}

// harmonic is the weighted second-harmonic projection of a sample set,
// stored both as an n x 2 matrix and as its two columns.
type harmonic struct {
	basis    *mat.Dense
	cos, sin []float64
}

func newHarmonic(phi []float64, balanced bool) harmonic {
	n := len(phi)
	h := harmonic{
		basis: mat.NewDense(n, 2, nil),
		cos:   make([]float64, n),
		sin:   make([]float64, n),
	}

	var counts []float64
	if !balanced {
		counts = vonmises.UniqueAngles(phi).SampleCounts()
	}
	for i, p := range phi {
		weight := 1.0
		if counts != nil {
			weight = 1 / counts[i]
		}
		s, c := math.Sincos(2 * p)
		h.cos[i] = c * weight
		h.sin[i] = s * weight
		h.basis.Set(i, 0, h.cos[i])
		h.basis.Set(i, 1, h.sin[i])
	}
	return h
}

// magnitude is |sum_i y_i * w_i * exp(2j*phi_i)|.
func (h harmonic) magnitude(y []float64) float64 {
	return math.Hypot(floats.Dot(y, h.cos), floats.Dot(y, h.sin))
}

// FastTuning tests for orientation tuning without fitting. The statistic is
// the magnitude of the weighted second circular harmonic of y; p is the
// fraction of shuffles exceeding it plus 0.5/Shuffles, capped at 1.
//
// The angles need not be uniformly spaced.
func FastTuning(ctx context.Context, phi, y []float64, opts Options) (FastResult, error) {
	if err := opts.validate(); err != nil {
		return FastResult{}, err
	}
	if err := checkSamples(phi, y); err != nil {
		return FastResult{}, err
	}

	h := newHarmonic(phi, opts.Balanced)
	observed := h.magnitude(y)

	null := make([]float64, opts.Shuffles)
	nullChunk := h.batchNull
	if opts.Sequential {
		nullChunk = h.sequentialNull
	}
	err := runChunks(ctx, opts, func(ctx context.Context, rng *rand.Rand, start, end int, report func(int)) error {
		return nullChunk(ctx, rng, y, null[start:end], report)
	})
	if err != nil {
		return FastResult{}, err
	}

	exceed := 0
	for _, s := range null {
		if s > observed {
			exceed++
		}
	}

	return FastResult{
		P:    pValue(exceed, opts.Shuffles),
		S:    observed,
		Null: null,
	}, nil
}

// batchNull materialises one shuffled copy of y per row and projects them
// all onto the basis with a single matrix product.
func (h harmonic) batchNull(ctx context.Context, rng *rand.Rand, y, out []float64, report func(int)) error {
	rows, n := len(out), len(y)
	perms := mat.NewDense(rows, n, nil)
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := perms.RawRowView(r)
		copy(row, y)
		shuffle(rng, row)
	}

	var proj mat.Dense
	proj.Mul(perms, h.basis)
	for r := range out {
		out[r] = math.Hypot(proj.At(r, 0), proj.At(r, 1))
	}
	report(rows)
	return nil
}

// sequentialNull reshuffles a single buffer in place, so consecutive
// permutations are compositions of the previous one.
func (h harmonic) sequentialNull(ctx context.Context, rng *rand.Rand, y, out []float64, report func(int)) error {
	buf := make([]float64, len(y))
	copy(buf, y)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return err
		}
		shuffle(rng, buf)
		out[i] = h.magnitude(buf)
		report(1)
	}
	return nil
}

func checkSamples(phi, y []float64) error {
	switch {
	case len(phi) == 0:
		return &vonmises.InputError{Field: "phi", Reason: "no samples"}
	case len(y) != len(phi):
		return &vonmises.InputError{Field: "y", Reason: "length does not match phi"}
	}
	for _, v := range phi {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &vonmises.InputError{Field: "phi", Reason: "non-finite angle"}
		}
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &vonmises.InputError{Field: "y", Reason: "non-finite response"}
		}
	}
	return nil
}
