// Package vonmises fits a two-peak von Mises curve to directional tuning data.
//
// The model has five parameters:
//
//	x(phi) = A0 + A1*g(cos(phi-Theta), W) + A2*g(-cos(phi-Theta), W)
//	g(c, w) = exp(-w * (1 - c))
//
// A1 is the amplitude of the peak at Theta, A2 the amplitude of the peak at
// Theta+pi and W the sharpness (higher is narrower).
//
//   - [Peak], [PeakTo]: the single peak shape g
//   - [VonMises2], [Params.Eval]: the two-peak model
//   - [Fit]: estimates [Params] and the residual sum of squares
//   - [UniqueAngles]: deduplicates stimulus directions
//
// # Fitting
//
// [Fit] estimates Theta in closed form from the second circular harmonic of the
// responses, then searches the fixed sharpness grid (see [Widths]) with a
// sign-guided bisection. At every candidate width the two amplitudes are a
// non-negative linear least-squares fit. Angles must come from a uniform
// partition of the circle; repeated trials per angle are allowed.
//
//	res, err := vonmises.Fit(phi, x)
//	if errors.Is(err, vonmises.ErrInvalidInput) {
//	    // phi and x are not usable
//	}
//	fmt.Println(res.Params.Theta, res.R2)
//
// # Thread Safety
//
// Package-level functions are safe for concurrent use. The sharpness grid is
// computed once at package initialisation and never written afterwards. A
// [Fitter] reuses scratch buffers and must not be shared between goroutines.
package vonmises
