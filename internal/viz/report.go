package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/tuna/internal/permutation"
	"github.com/san-kum/tuna/internal/vonmises"
)

// Alpha is the significance level used to colour p-values.
const Alpha = 0.05

// Stars returns the conventional significance marker for p.
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < Alpha:
		return "*"
	}
	return "n.s."
}

// RenderFit renders fitted parameters as a panel.
func RenderFit(source string, res vonmises.Result) string {
	p := res.Params
	var s strings.Builder
	s.WriteString(TitleStyle.Render("von Mises fit") + "  " + Subtle.Render(source) + "\n\n")
	s.WriteString(row("a0", fmt.Sprintf("%.4f", p.A0)) + "\n")
	s.WriteString(row("a1", fmt.Sprintf("%.4f", p.A1)) + "\n")
	s.WriteString(row("a2", fmt.Sprintf("%.4f", p.A2)) + "\n")
	s.WriteString(row("theta", fmt.Sprintf("%.4f rad (%.1f°)", p.Theta, p.Theta*180/math.Pi)) + "\n")
	s.WriteString(row("w", fmt.Sprintf("%.4f", p.W)) + "\n")
	s.WriteString(row("r2", fmt.Sprintf("%.6g", res.R2)))
	return Panel.Render(s.String())
}

// TestReport is the outcome of a permutation test in display form.
type TestReport struct {
	Method    string
	Source    string
	Statistic string
	Value     float64
	P         float64
	Shuffles  int
	Null      permutation.Summary
}

// RenderTest renders a permutation test outcome as a panel.
func RenderTest(r TestReport) string {
	pStyle := NotSignificant
	if r.P < Alpha {
		pStyle = Significant
	}

	var s strings.Builder
	s.WriteString(TitleStyle.Render(r.Method) + "  " + Subtle.Render(r.Source) + "\n\n")
	s.WriteString(row(r.Statistic, fmt.Sprintf("%.6g", r.Value)) + "\n")
	s.WriteString(MetricLabel.Render("p") + pStyle.Render(fmt.Sprintf("%.4g %s", r.P, Stars(r.P))) + "\n")
	s.WriteString(row("shuffles", fmt.Sprintf("%d", r.Shuffles)) + "\n")
	if r.Null.N > 0 {
		s.WriteString(row("null mean", fmt.Sprintf("%.4g ± %.4g", r.Null.Mean, r.Null.StdDev)) + "\n")
		s.WriteString(row("null 5-95%", fmt.Sprintf("[%.4g, %.4g]", r.Null.Q05, r.Null.Q95)))
	}
	return Panel.Render(strings.TrimRight(s.String(), "\n"))
}
