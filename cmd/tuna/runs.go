package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/tuna/internal/config"
	"github.com/san-kum/tuna/internal/export"
	"github.com/san-kum/tuna/internal/storage"
	"github.com/san-kum/tuna/internal/viz"
	"github.com/san-kum/tuna/internal/vonmises"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMETHOD\tTIME\tSOURCE\tSHUFFLES\tSTAT\tP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4g\t%.4g %s\n",
			run.ID,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Source,
			run.Shuffles,
			run.Statistic,
			run.P,
			viz.Stars(run.P),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	null, err := st.LoadNull(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if len(null) > 0 {
		fmt.Println()
		fmt.Println(viz.NullHistogram(null, meta.Statistic, bins, plotHeight))
	}
	return nil
}

func exportHelp() string {
	return "Export a stored run. An OUT ending in .json receives the full run;\n" +
		"otherwise OUT receives the tuning curve and OUT_null the null distribution.\n\n" +
		"Image formats: " + strings.Join(export.Formats(), ", ")
}

// exportRun writes the run as JSON when out ends in .json. Otherwise it
// renders the tuning curve to out and the null distribution next to it.
func exportRun(cmd *cobra.Command, args []string) error {
	runID, out := args[0], args[1]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(out), ".json") {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := st.ExportJSON(f, runID); err != nil {
			f.Close()
			return err
		}
		slog.Info("run exported", "id", runID, "path", out)
		return f.Close()
	}

	run, err := st.LoadRun(runID)
	if err != nil {
		return err
	}

	var params *vonmises.Params
	if run.Params != nil {
		p, err := vonmises.ParamsFromMap(run.Params)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		params = &p
	}

	samples := run.Samples()
	if err := export.TuningCurve(out, samples, params); err != nil {
		return fmt.Errorf("failed to export curve: %w", err)
	}

	ext := filepath.Ext(out)
	nullPath := strings.TrimSuffix(out, ext) + "_null" + ext
	label := "s"
	if run.Method == storage.MethodBootstrap {
		label = "r2"
	}
	if err := export.NullDistribution(nullPath, run.NullDistr, run.Statistic, label); err != nil {
		return fmt.Errorf("failed to export null distribution: %w", err)
	}

	slog.Info("run exported", "id", runID, "curve", out, "null", nullPath)
	fmt.Printf("wrote %s\nwrote %s\n", out, nullPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSHUFFLES\tWORKERS\tSEQUENTIAL")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\n", name, p.Shuffles, p.Workers, p.Sequential)
	}
	return w.Flush()
}
