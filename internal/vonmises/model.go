package vonmises

import (
	"fmt"
	"math"
)

// Peak returns the von Mises peak exp(-w*(1-c)) for a cosine c.
func Peak(c, w float64) float64 {
	return math.Exp(-w * (1 - c))
}

// PeakTo evaluates Peak elementwise over c into dst and returns dst.
// dst is allocated when nil; otherwise it must have the length of c.
func PeakTo(dst, c []float64, w float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(c))
	}
	if len(dst) != len(c) {
		panic("vonmises: slice length mismatch")
	}
	for i, v := range c {
		dst[i] = Peak(v, w)
	}
	return dst
}

// Params holds the two-peak model coefficients.
type Params struct {
	A0    float64 `json:"a0" yaml:"a0"`
	A1    float64 `json:"a1" yaml:"a1"`
	A2    float64 `json:"a2" yaml:"a2"`
	Theta float64 `json:"theta" yaml:"theta"`
	W     float64 `json:"w" yaml:"w"`
}

// Eval returns the model value at a single angle.
func (p Params) Eval(phi float64) float64 {
	c := math.Cos(phi - p.Theta)
	return p.A0 + p.A1*Peak(c, p.W) + p.A2*Peak(-c, p.W)
}

// VonMises2 evaluates the two-peak model at every angle in phi.
func VonMises2(phi []float64, p Params) []float64 {
	out := make([]float64, len(phi))
	for i, v := range phi {
		out[i] = p.Eval(v)
	}
	return out
}

var paramKeys = [...]string{"a0", "a1", "a2", "theta", "w"}

// Map returns the parameters keyed by name.
func (p Params) Map() map[string]float64 {
	return map[string]float64{
		"a0":    p.A0,
		"a1":    p.A1,
		"a2":    p.A2,
		"theta": p.Theta,
		"w":     p.W,
	}
}

// ParamsFromMap builds Params from named values. Keys other than a0, a1, a2,
// theta and w are ignored so that records carrying extra fields (r2, p, ...)
// can be passed straight through.
func ParamsFromMap(m map[string]float64) (Params, error) {
	for _, k := range paramKeys {
		if _, ok := m[k]; !ok {
			return Params{}, invalid("params", "missing %q", k)
		}
	}
	return Params{
		A0:    m["a0"],
		A1:    m["a1"],
		A2:    m["a2"],
		Theta: m["theta"],
		W:     m["w"],
	}, nil
}

func (p Params) String() string {
	return fmt.Sprintf("a0=%.4f a1=%.4f a2=%.4f theta=%.4f w=%.4f", p.A0, p.A1, p.A2, p.Theta, p.W)
}
