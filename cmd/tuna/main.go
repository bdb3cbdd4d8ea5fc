package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/tuna/internal/config"
	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/permutation"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	verbose    bool
	// Input files
	degrees bool
	// Permutation tests
	shuffles   int
	workers    int
	unbalanced bool
	sequential bool
	live       bool
	save       bool
	// Terminal plots
	plotWidth  int
	plotHeight int
	bins       int
	// Simulation
	simA0, simA1, simA2 float64
	simTheta, simW      float64
	simAngles           int
	simTrials           int
	simNoise            float64
	outFile             string
)

// main registers the tuna commands and executes the root command, exiting
// with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "tuna",
		Short:         "orientation tuning analysis with two-peak von Mises fits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run store directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "analysis preset")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	fitCmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "fit the two-peak von Mises model",
		Args:  cobra.ExactArgs(1),
		RunE:  fitFile,
	}
	fitCmd.Flags().BoolVar(&degrees, "degrees", false, "angles in the file are in degrees")

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap [file]",
		Short: "fit and test significance by refitting shuffled responses",
		Args:  cobra.ExactArgs(1),
		RunE:  bootstrapFile,
	}
	addTestFlags(bootstrapCmd)

	permtestCmd := &cobra.Command{
		Use:   "permtest [file]",
		Short: "fast second-harmonic permutation test",
		Args:  cobra.ExactArgs(1),
		RunE:  permtestFile,
	}
	addTestFlags(permtestCmd)
	permtestCmd.Flags().BoolVar(&unbalanced, "unbalanced", false, "weight samples by inverse repeat count")
	permtestCmd.Flags().BoolVar(&sequential, "sequential", false, "reshuffle one buffer instead of batching")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "generate synthetic tuning data as csv",
		Args:  cobra.NoArgs,
		RunE:  simulate,
	}
	simulateCmd.Flags().Float64Var(&simA0, "a0", 1, "baseline")
	simulateCmd.Flags().Float64Var(&simA1, "a1", 5, "primary peak amplitude")
	simulateCmd.Flags().Float64Var(&simA2, "a2", 2, "secondary peak amplitude")
	simulateCmd.Flags().Float64Var(&simTheta, "theta", 1, "preferred direction (rad)")
	simulateCmd.Flags().Float64Var(&simW, "w", 8, "sharpness")
	simulateCmd.Flags().IntVar(&simAngles, "angles", config.DefaultAngles, "number of directions")
	simulateCmd.Flags().IntVar(&simTrials, "trials", config.DefaultTrials, "trials per direction")
	simulateCmd.Flags().Float64Var(&simNoise, "noise", config.DefaultNoise, "gaussian noise sd")
	simulateCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	plotCmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "terminal plot of mean responses and the fitted curve",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFile,
	}
	plotCmd.Flags().BoolVar(&degrees, "degrees", false, "angles in the file are in degrees")
	plotCmd.Flags().IntVar(&plotWidth, "width", 72, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")
	showCmd.Flags().IntVar(&plotHeight, "height", 10, "histogram height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [out]",
		Short: "export a stored run as json or as plot images (svg, png, pdf, ...)",
		Long:  exportHelp(),
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list analysis presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(fitCmd, bootstrapCmd, permtestCmd, simulateCmd, plotCmd, runsCmd, showCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func addTestFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&degrees, "degrees", false, "angles in the file are in degrees")
	cmd.Flags().IntVar(&shuffles, "shuffles", config.DefaultShuffles, "number of permutations")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel workers")
	cmd.Flags().BoolVar(&live, "live", false, "show a live progress view")
	cmd.Flags().BoolVar(&save, "save", false, "store the run under --data")
}

// loadConfig layers defaults, the preset, the config file and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" && !cfg.Apply(preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if configFile != "" {
		loaded, err := config.Load(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("seed") {
		cfg.Analysis.Seed = seed
	}
	if cfg.Analysis.Seed == 0 {
		cfg.Analysis.Seed = time.Now().UnixNano()
	}
	if flags.Changed("shuffles") {
		cfg.Analysis.Shuffles = shuffles
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = workers
	}
	if flags.Changed("unbalanced") {
		cfg.Analysis.Balanced = !unbalanced
	}
	if flags.Changed("sequential") {
		cfg.Analysis.Sequential = sequential
	}

	sim := &cfg.Simulation
	overrides := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"a0", &sim.A0, simA0},
		{"a1", &sim.A1, simA1},
		{"a2", &sim.A2, simA2},
		{"theta", &sim.Theta, simTheta},
		{"w", &sim.W, simW},
		{"noise", &sim.Noise, simNoise},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			*o.dst = o.val
		}
	}
	if flags.Changed("angles") {
		sim.Angles = simAngles
	}
	if flags.Changed("trials") {
		sim.Trials = simTrials
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("configuration resolved",
		"data", cfg.DataDir,
		"seed", cfg.Analysis.Seed,
		"shuffles", cfg.Analysis.Shuffles,
		"workers", cfg.Analysis.Workers,
		"balanced", cfg.Analysis.Balanced,
		"sequential", cfg.Analysis.Sequential,
	)
	return cfg, nil
}

func analysisOptions(cfg *config.Config) permutation.Options {
	a := cfg.Analysis
	return permutation.Options{
		Shuffles:   a.Shuffles,
		Balanced:   a.Balanced,
		Sequential: a.Sequential,
		Workers:    a.Workers,
		Seed:       a.Seed,
	}
}

func loadSamples(path string) (dataset.Samples, error) {
	s, err := dataset.Load(path, degrees)
	if err != nil {
		return dataset.Samples{}, fmt.Errorf("failed to load samples: %w", err)
	}
	slog.Debug("samples loaded", "path", path, "n", s.Len(), "degrees", degrees)
	return s, nil
}
