package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/tuna/internal/dataset"
	"github.com/san-kum/tuna/internal/permutation"
)

const (
	MethodBootstrap = "bootstrap"
	MethodPermTest  = "permtest"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string              `json:"id"`
	Method     string              `json:"method"`
	Timestamp  time.Time           `json:"timestamp"`
	Source     string              `json:"source,omitempty"`
	Seed       int64               `json:"seed"`
	Shuffles   int                 `json:"shuffles"`
	Workers    int                 `json:"workers"`
	Balanced   bool                `json:"balanced"`
	Sequential bool                `json:"sequential"`
	Params     map[string]float64  `json:"params,omitempty"`
	R2         float64             `json:"r2"`
	P          float64             `json:"p"`
	Statistic  float64             `json:"statistic"`
	Null       permutation.Summary `json:"null"`
}

// Run is a stored run with its data files.
type Run struct {
	RunMetadata
	Phi       []float64 `json:"phi"`
	X         []float64 `json:"x"`
	NullDistr []float64 `json:"null_distribution"`
}

func (r *Run) Samples() dataset.Samples {
	return dataset.Samples{Phi: r.Phi, X: r.X}
}

// Save writes a new run directory holding metadata.json, samples.csv and
// null.csv. ID and Timestamp are assigned here; the null summary is
// computed from null.
func (s *Store) Save(meta RunMetadata, samples dataset.Samples, null []float64) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Method, now.UnixNano())
	meta.Timestamp = now
	meta.Null = permutation.Summarize(null)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := dataset.Save(filepath.Join(runDir, "samples.csv"), samples); err != nil {
		return "", err
	}
	if err := writeNull(filepath.Join(runDir, "null.csv"), null); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) (dataset.Samples, error) {
	return dataset.Load(filepath.Join(s.baseDir, runID, "samples.csv"), false)
}

func (s *Store) LoadNull(runID string) ([]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "null.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	null := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", csvPath, i+2, err)
		}
		null = append(null, v)
	}
	return null, nil
}

// LoadRun reads the metadata and both data files of a run.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	null, err := s.LoadNull(runID)
	if err != nil {
		return nil, err
	}
	return &Run{RunMetadata: *meta, Phi: samples.Phi, X: samples.X, NullDistr: null}, nil
}

// ExportJSON writes the complete run as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	run, err := s.LoadRun(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeNull(path string, null []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"shuffle", "value"}); err != nil {
		return err
	}
	for i, v := range null {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
