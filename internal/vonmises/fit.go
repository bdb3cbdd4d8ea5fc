package vonmises

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// pinvRcond is the relative singular value cutoff of the amplitude solve.
const pinvRcond = 1e-15

// Result is the outcome of a fit.
type Result struct {
	Params Params `json:"params"`
	// R2 is the residual sum of squares. It is not normalised and is not a
	// coefficient of determination.
	R2 float64 `json:"r2"`
}

// Fit estimates the two-peak parameters for responses x at angles phi.
func Fit(phi, x []float64) (Result, error) {
	f, err := NewFitter(phi)
	if err != nil {
		return Result{}, err
	}
	return f.Fit(x)
}

// Fitter fits many response vectors against one fixed set of angles. The
// angles are validated once in NewFitter.
//
// A Fitter keeps scratch buffers and is not safe for concurrent use.
type Fitter struct {
	phi   []float64
	set   AngleSet
	rot   []complex128 // exp(2j*phi) / count, per sample
	x     []float64
	c     []float64
	g0    []float64
	g1    []float64
	basis *mat.Dense
	xv    *mat.VecDense
	svd   mat.SVD
	sol   mat.VecDense
}

// NewFitter validates phi and prepares a Fitter for it.
func NewFitter(phi []float64) (*Fitter, error) {
	if len(phi) == 0 {
		return nil, invalid("phi", "no samples")
	}
	if !allFinite(phi) {
		return nil, invalid("phi", "contains NaN or Inf")
	}
	set := UniqueAngles(phi)
	if err := set.CheckUniform(); err != nil {
		return nil, err
	}

	n := len(phi)
	f := &Fitter{
		phi:   slices.Clone(phi),
		set:   set,
		rot:   make([]complex128, n),
		x:     make([]float64, n),
		c:     make([]float64, n),
		g0:    make([]float64, n),
		g1:    make([]float64, n),
		basis: mat.NewDense(n, 2, nil),
	}
	f.xv = mat.NewVecDense(n, f.x)
	for i, p := range f.phi {
		f.rot[i] = cmplx.Rect(1/float64(set.Counts[set.Index[i]]), 2*p)
	}
	return f, nil
}

// Angles returns the distinct angles the Fitter was built for.
func (f *Fitter) Angles() AngleSet { return f.set }

// Len returns the number of samples expected by Fit.
func (f *Fitter) Len() int { return len(f.phi) }

// Fit estimates the parameters for responses x.
func (f *Fitter) Fit(x []float64) (Result, error) {
	if len(x) != len(f.phi) {
		return Result{}, invalid("x", "length %d does not match phi length %d", len(x), len(f.phi))
	}
	if !allFinite(x) {
		return Result{}, invalid("x", "contains NaN or Inf")
	}

	theta := f.orientation(x)

	xm := floats.Sum(x) / float64(len(x))
	for i, v := range x {
		f.x[i] = v - xm
		f.c[i] = math.Cos(f.phi[i] - theta)
	}

	best, err := f.searchWidth()
	if err != nil {
		return Result{}, err
	}

	a0 := xm - best.a[0]*best.gm[0] - best.a[1]*best.gm[1]
	a1, a2 := best.a[0], best.a[1]
	if a1 < a2 {
		a1, a2 = a2, a1
		theta += math.Pi
	}

	return Result{
		Params: Params{A0: a0, A1: a1, A2: a2, Theta: wrapAngle(theta), W: best.width},
		R2:     best.r2,
	}, nil
}

// orientation locates the peak axis from the second circular harmonic. Each
// distinct angle contributes equally regardless of its repeat count.
func (f *Fitter) orientation(x []float64) float64 {
	var s complex128
	for i, v := range x {
		s += complex(v, 0) * f.rot[i]
	}
	return cmplx.Phase(s) / 2
}

type candidate struct {
	r2    float64
	a     [2]float64
	gm    [2]float64
	width float64
	dir   float64
}

// searchWidth bisects the sharpness grid. At each midpoint the sign of the
// residual projected on the derivative of the model with respect to w picks
// the half to keep. SSE(w) need not be unimodal so this is a heuristic; the
// lowest-SSE candidate visited is what gets returned.
func (f *Fitter) searchWidth() (candidate, error) {
	var best candidate
	found := false
	lo, hi := 0, NumWidths
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		cand, err := f.amplitudes(widths[mid])
		if err != nil {
			return candidate{}, err
		}
		if !found || cand.r2 < best.r2 {
			best = cand
			found = true
		}
		if cand.dir > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return best, nil
}

// amplitudes fits the two peak amplitudes at a fixed width by least squares
// on the demeaned basis, clamping each at zero.
func (f *Fitter) amplitudes(width float64) (candidate, error) {
	n := len(f.x)
	for i, c := range f.c {
		f.g0[i] = Peak(c, width)
		f.g1[i] = Peak(-c, width)
	}
	gm := [2]float64{floats.Sum(f.g0) / float64(n), floats.Sum(f.g1) / float64(n)}
	for i := 0; i < n; i++ {
		f.basis.Set(i, 0, f.g0[i]-gm[0])
		f.basis.Set(i, 1, f.g1[i]-gm[1])
	}

	if ok := f.svd.Factorize(f.basis, mat.SVDThin); !ok {
		return candidate{}, &NumericError{Width: width, Wrapped: fmt.Errorf("%w: svd did not converge", ErrNumericFailure)}
	}
	rank := f.svd.Rank(pinvRcond)
	if rank == 0 {
		return candidate{}, &NumericError{Width: width, Wrapped: fmt.Errorf("%w: amplitude basis has rank 0", ErrNumericFailure)}
	}
	f.svd.SolveVecTo(&f.sol, f.xv, rank)

	a := [2]float64{math.Max(f.sol.AtVec(0), 0), math.Max(f.sol.AtVec(1), 0)}

	var sse, slope float64
	for i := 0; i < n; i++ {
		d := f.x[i] - a[0]*f.basis.At(i, 0) - a[1]*f.basis.At(i, 1)
		sse += d * d
		slope += d * (a[0]*f.g0[i]*(1-f.c[i]) + a[1]*f.g1[i]*(1+f.c[i]))
	}

	return candidate{r2: sse, a: a, gm: gm, width: width, dir: sign(slope)}, nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// wrapAngle maps theta into [0, 2*pi).
func wrapAngle(theta float64) float64 {
	t := math.Mod(theta, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	if t >= 2*math.Pi {
		t = 0
	}
	return t
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
