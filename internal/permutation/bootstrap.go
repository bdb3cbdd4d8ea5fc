package permutation

import (
	"context"
	"math/rand"

	"github.com/san-kum/tuna/internal/vonmises"
)

// BootstrapResult holds the fit to the observed responses and its
// permutation p-value.
type BootstrapResult struct {
	Fit vonmises.Result `json:"fit"`
	P   float64         `json:"p"`
	// Better counts shuffles whose residual was strictly below Fit.R2.
	Better   int       `json:"better"`
	Shuffles int       `json:"shuffles"`
	NullR2   []float64 `json:"-"`
}

// Bootstrap fits the two-peak model to (phi, x) and compares its residual
// against fits to randomly permuted copies of x. The p-value is
// (Better + 0.5) / Shuffles, capped at 1.
func Bootstrap(ctx context.Context, phi, x []float64, opts Options) (BootstrapResult, error) {
	if err := opts.validate(); err != nil {
		return BootstrapResult{}, err
	}

	fitter, err := vonmises.NewFitter(phi)
	if err != nil {
		return BootstrapResult{}, err
	}
	observed, err := fitter.Fit(x)
	if err != nil {
		return BootstrapResult{}, err
	}

	null := make([]float64, opts.Shuffles)
	err = runChunks(ctx, opts, func(ctx context.Context, rng *rand.Rand, start, end int, report func(int)) error {
		f := fitter
		if opts.workers() > 1 {
			var err error
			if f, err = vonmises.NewFitter(phi); err != nil {
				return err
			}
		}

		perm := make([]float64, len(x))
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			copy(perm, x)
			shuffle(rng, perm)

			res, err := f.Fit(perm)
			if err != nil {
				return err
			}
			null[i] = res.R2
			report(1)
		}
		return nil
	})
	if err != nil {
		return BootstrapResult{}, err
	}

	better := 0
	for _, r2 := range null {
		if r2 < observed.R2 {
			better++
		}
	}

	return BootstrapResult{
		Fit:      observed,
		P:        pValue(better, opts.Shuffles),
		Better:   better,
		Shuffles: opts.Shuffles,
		NullR2:   null,
	}, nil
}
