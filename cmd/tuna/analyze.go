package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/tuna/internal/config"
	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/permutation"
	"github.com/san-kum/tuna/internal/storage"
	"github.com/san-kum/tuna/internal/viz"
	"github.com/san-kum/tuna/internal/vonmises"
)

func fitFile(cmd *cobra.Command, args []string) error {
	s, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := vonmises.Fit(s.Phi, s.X)
	if err != nil {
		return err
	}
	slog.Debug("fit complete", "elapsed", time.Since(start), "w", res.Params.W, "r2", res.R2)

	fmt.Println(viz.RenderFit(args[0], res))
	return nil
}

func bootstrapFile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	var res permutation.BootstrapResult
	err = runTest(cmd.Context(), "bootstrap", analysisOptions(cfg), func(ctx context.Context, opts permutation.Options) error {
		var err error
		res, err = permutation.Bootstrap(ctx, s.Phi, s.X, opts)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderFit(args[0], res.Fit))
	fmt.Println(viz.RenderTest(viz.TestReport{
		Method:    "bootstrap",
		Source:    args[0],
		Statistic: "r2",
		Value:     res.Fit.R2,
		P:         res.P,
		Shuffles:  res.Shuffles,
		Null:      permutation.Summarize(res.NullR2),
	}))

	if !save {
		return nil
	}
	return saveRun(cfg, storage.RunMetadata{
		Method:    storage.MethodBootstrap,
		Source:    args[0],
		Params:    res.Fit.Params.Map(),
		R2:        res.Fit.R2,
		P:         res.P,
		Statistic: res.Fit.R2,
	}, s, res.NullR2)
}

func permtestFile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	if note := weightingNote(s, cfg.Analysis.Balanced); note != "" {
		slog.Info(note)
	}

	var res permutation.FastResult
	err = runTest(cmd.Context(), "permutation test", analysisOptions(cfg), func(ctx context.Context, opts permutation.Options) error {
		var err error
		res, err = permutation.FastTuning(ctx, s.Phi, s.X, opts)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderTest(viz.TestReport{
		Method:    "permutation test",
		Source:    args[0],
		Statistic: "s",
		Value:     res.S,
		P:         res.P,
		Shuffles:  cfg.Analysis.Shuffles,
		Null:      permutation.Summarize(res.Null),
	}))

	if !save {
		return nil
	}
	return saveRun(cfg, storage.RunMetadata{
		Method:    storage.MethodPermTest,
		Source:    args[0],
		P:         res.P,
		Statistic: res.S,
	}, s, res.Null)
}

// weightingNote explains when inverse-count weights cannot change the
// outcome of the permutation test.
func weightingNote(s dataset.Samples, balanced bool) string {
	if balanced || !vonmises.UniqueAngles(s.Phi).Balanced() {
		return ""
	}
	return "every angle is repeated equally often; unbalanced weights only rescale the statistic"
}

// runTest runs a permutation test, either headless with debug progress logs
// or behind the live progress view.
func runTest(ctx context.Context, title string, opts permutation.Options, run func(context.Context, permutation.Options) error) error {
	start := time.Now()
	slog.Info("running "+title, "shuffles", opts.Shuffles, "workers", opts.Workers, "seed", opts.Seed)

	var err error
	if live {
		err = runLive(ctx, title, opts, run)
	} else {
		step := max(opts.Shuffles/10, 1)
		opts.Progress = func(done, total int) {
			if done%step == 0 || done == total {
				slog.Debug("progress", "done", done, "total", total)
			}
		}
		err = run(ctx, opts)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", title, err)
	}
	slog.Info(title+" complete", "elapsed", time.Since(start))
	return nil
}

func runLive(ctx context.Context, title string, opts permutation.Options, run func(context.Context, permutation.Options) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(viz.NewProgressModel(title, opts.Shuffles))
	opts.Progress = func(done, total int) {
		p.Send(viz.ProgressMsg{Done: done, Total: total})
	}

	errc := make(chan error, 1)
	go func() {
		err := run(ctx, opts)
		p.Send(viz.DoneMsg{Err: err})
		errc <- err
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-errc
		return err
	}
	if m, ok := final.(viz.ProgressModel); ok && m.Cancelled() {
		cancel()
	}
	return <-errc
}

func saveRun(cfg *config.Config, meta storage.RunMetadata, s dataset.Samples, null []float64) error {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	a := cfg.Analysis
	meta.Seed = a.Seed
	meta.Shuffles = a.Shuffles
	meta.Workers = a.Workers
	meta.Balanced = a.Balanced
	meta.Sequential = a.Sequential

	runID, err := st.Save(meta, s, null)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	slog.Info("run saved", "id", runID, "dir", cfg.DataDir)
	fmt.Printf("run id: %s\n", runID)
	return nil
}
