package vonmises

import "gonum.org/v1/gonum/floats"

const (
	// NumWidths is the size of the sharpness grid. Keep it a power of two so
	// the bisection in Fit visits every index but the first.
	NumWidths = 64

	// MaxWidth is the largest sharpness on the grid. The smallest is 1.
	MaxWidth = 30.0
)

// widths is log-spaced on [1, MaxWidth] and read-only after init.
var widths = newWidthGrid()

func newWidthGrid() [NumWidths]float64 {
	var grid [NumWidths]float64
	floats.LogSpan(grid[:], 1, MaxWidth)
	return grid
}

// Widths returns a copy of the sharpness grid.
func Widths() []float64 {
	out := make([]float64, NumWidths)
	copy(out, widths[:])
	return out
}
