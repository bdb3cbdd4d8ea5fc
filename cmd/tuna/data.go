package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/viz"
	"github.com/san-kum/tuna/internal/vonmises"
)

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim := cfg.Simulation
	params := vonmises.Params{A0: sim.A0, A1: sim.A1, A2: sim.A2, Theta: sim.Theta, W: sim.W}

	rng := rand.New(rand.NewSource(cfg.Analysis.Seed))
	s, err := dataset.Simulate(params, sim.Angles, sim.Trials, sim.Noise, rng)
	if err != nil {
		return err
	}
	slog.Debug("simulated samples", "params", params.String(), "n", s.Len(), "seed", cfg.Analysis.Seed)

	if outFile == "" {
		return dataset.Write(os.Stdout, s)
	}
	if err := dataset.Save(outFile, s); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	slog.Info("samples written", "path", outFile, "n", s.Len())
	return nil
}

func plotFile(cmd *cobra.Command, args []string) error {
	s, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	res, err := vonmises.Fit(s.Phi, s.X)
	if err != nil {
		return err
	}

	fmt.Println(viz.CurvePlot(s, &res.Params, plotWidth, plotHeight))
	fmt.Println()
	fmt.Println(viz.RenderFit(args[0], res))
	return nil
}
