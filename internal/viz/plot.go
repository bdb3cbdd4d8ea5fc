package viz

import (
	"fmt"
	"math"
	"slices"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/vonmises"
)

// CurvePlot draws per-angle mean responses over [0, 2*pi) and, if params is
// not nil, the fitted curve on top.
func CurvePlot(s dataset.Samples, params *vonmises.Params, width, height int) string {
	if s.Len() == 0 || width < 2 {
		return ""
	}
	angles, means := s.MeansByAngle()

	observed := make([]float64, width)
	for i := range observed {
		observed[i] = means[nearest(angles, 2*math.Pi*float64(i)/float64(width))]
	}
	series := [][]float64{observed}
	legends := []string{"mean response"}

	if params != nil {
		fitted := make([]float64, width)
		for i := range fitted {
			fitted[i] = params.Eval(2 * math.Pi * float64(i) / float64(width))
		}
		series = append(series, fitted)
		legends = append(legends, "fit")
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("response vs direction, 0 to 2π"),
	)
}

// NullHistogram draws the null distribution as a histogram and reports where
// the observed statistic falls.
func NullHistogram(null []float64, observed float64, bins, height int) string {
	if len(null) == 0 || bins < 1 {
		return ""
	}
	counts, edges := Histogram(null, bins)

	above := 0
	for _, v := range null {
		if v > observed {
			above++
		}
	}
	caption := fmt.Sprintf("null [%.3g, %.3g], observed %.3g, %d of %d shuffles above",
		edges[0], edges[len(edges)-1], observed, above, len(null))

	return graphStyle.Render(asciigraph.Plot(counts,
		asciigraph.Height(height),
		asciigraph.Width(max(bins, 2)),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
	))
}

// Histogram bins values into bins equal-width bins spanning their range.
// It returns the counts and the bins+1 edges.
func Histogram(values []float64, bins int) (counts, edges []float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	edges = floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram needs the top edge strictly above the maximum.
	edges[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, edges, sorted, nil)
	return counts, edges
}

func nearest(angles []float64, phi float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range angles {
		d := math.Abs(math.Remainder(a-phi, 2*math.Pi))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
