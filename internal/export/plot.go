// Package export renders tuning curves and null distributions to image
// files with gonum/plot. The format follows the file extension.
package export

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/vonmises"
)

const (
	DefaultBins = 40
	curveSteps  = 256
)

var ErrUnsupportedFormat = errors.New("export: unsupported image format")

var formats = []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tex", "tif", "tiff"}

// Formats lists the accepted file extensions without the dot.
func Formats() []string { return slices.Clone(formats) }

func checkFormat(path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !slices.Contains(formats, ext) {
		return fmt.Errorf("%w: %q (use one of %s)", ErrUnsupportedFormat, ext, strings.Join(formats, ", "))
	}
	return nil
}

// TuningCurve plots every trial, the per-angle means and, if params is not
// nil, the fitted two-peak curve.
func TuningCurve(path string, s dataset.Samples, params *vonmises.Params) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if s.Len() == 0 {
		return &vonmises.InputError{Field: "samples", Reason: "nothing to plot"}
	}

	p := plot.New()
	p.Title.Text = "Orientation tuning"
	p.X.Label.Text = "direction (rad)"
	p.Y.Label.Text = "response"
	p.X.Min, p.X.Max = 0, 2*math.Pi
	p.Add(plotter.NewGrid())

	trials := make(plotter.XYs, s.Len())
	for i := range trials {
		trials[i] = plotter.XY{X: s.Phi[i], Y: s.X[i]}
	}
	sc, err := plotter.NewScatter(trials)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Color = plotutil.Color(6)
	p.Add(sc)
	p.Legend.Add("trials", sc)

	angles, means := s.MeansByAngle()
	meanPts := make(plotter.XYs, len(angles))
	for i := range angles {
		meanPts[i] = plotter.XY{X: angles[i], Y: means[i]}
	}
	if err := plotutil.AddLinePoints(p, "mean", meanPts); err != nil {
		return err
	}

	if params != nil {
		fn := plotter.NewFunction(params.Eval)
		fn.XMin, fn.XMax = 0, 2*math.Pi
		fn.Samples = curveSteps
		fn.Color = plotutil.Color(1)
		fn.Width = vg.Points(2)
		p.Add(fn)
		p.Legend.Add(fmt.Sprintf("fit (θ=%.2f, w=%.2f)", params.Theta, params.W), fn)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// NullDistribution plots a histogram of the null statistic with a marker at
// the observed value.
func NullDistribution(path string, null []float64, observed float64, label string) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	if len(null) == 0 {
		return &vonmises.InputError{Field: "null", Reason: "nothing to plot"}
	}

	p := plot.New()
	p.Title.Text = "Permutation null distribution"
	p.X.Label.Text = label
	p.Y.Label.Text = "shuffles"

	h, err := plotter.NewHist(plotter.Values(null), DefaultBins)
	if err != nil {
		return err
	}
	h.FillColor = plotutil.Color(2)
	p.Add(h)

	top := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
	}
	marker, err := plotter.NewLine(plotter.XYs{{X: observed, Y: 0}, {X: observed, Y: top}})
	if err != nil {
		return err
	}
	marker.Color = plotutil.Color(0)
	marker.Width = vg.Points(2)
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(marker)
	p.Legend.Add("null", h)
	p.Legend.Add(fmt.Sprintf("observed %.3g", observed), marker)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
