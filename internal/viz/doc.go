// Package viz renders tuning fits and permutation tests in the terminal.
//
// Static output is built from lipgloss panels ([RenderFit], [RenderTest])
// and asciigraph charts ([CurvePlot], [NullHistogram]). [ProgressModel] is
// a Bubble Tea model that follows a running test through [ProgressMsg]
// updates and exits on [DoneMsg].
//
// # Key Bindings
//
//	q, esc, ctrl+c - Cancel the running test
package viz
