// Package dataset reads and writes stimulus/response samples as CSV.
//
// A file has a header row naming at least an angle column "phi" and a
// response column "x" (also accepted: "y", "response"). Column names are
// case-insensitive and other columns are ignored.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/tuna/internal/vonmises"
)

var ErrMalformed = errors.New("dataset: malformed csv")

var responseColumns = []string{"x", "y", "response"}

// Samples pairs every stimulus angle with its response.
type Samples struct {
	Phi []float64
	X   []float64
}

func (s Samples) Len() int { return len(s.Phi) }

// MeansByAngle returns the distinct angles in ascending order and the mean
// response at each.
func (s Samples) MeansByAngle() (angles, means []float64) {
	set := vonmises.UniqueAngles(s.Phi)
	means = make([]float64, set.K())
	for i, k := range set.Index {
		means[k] += s.X[i]
	}
	for k, c := range set.Counts {
		means[k] /= float64(c)
	}
	return set.Angles, means
}

// Load reads samples from a CSV file. With degrees set, angles are converted
// to radians and wrapped into [0, 2*pi).
func Load(path string, degrees bool) (Samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return Samples{}, err
	}
	defer f.Close()

	s, err := Read(f, degrees)
	if err != nil {
		return Samples{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Read(r io.Reader, degrees bool) (Samples, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err == io.EOF {
		return Samples{}, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return Samples{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	phiCol, xCol, err := columns(header)
	if err != nil {
		return Samples{}, err
	}

	var s Samples
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Samples{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)

		if len(record) <= max(phiCol, xCol) {
			return Samples{}, fmt.Errorf("%w: line %d: expected at least %d fields, got %d",
				ErrMalformed, line, max(phiCol, xCol)+1, len(record))
		}
		phi, err := parseField(record[phiCol], "phi", line)
		if err != nil {
			return Samples{}, err
		}
		x, err := parseField(record[xCol], header[xCol], line)
		if err != nil {
			return Samples{}, err
		}
		if degrees {
			phi = wrap(phi * math.Pi / 180)
		}
		s.Phi = append(s.Phi, phi)
		s.X = append(s.X, x)
	}

	if s.Len() == 0 {
		return Samples{}, fmt.Errorf("%w: no samples", ErrMalformed)
	}
	return s, nil
}

func Write(w io.Writer, s Samples) error {
	if len(s.Phi) != len(s.X) {
		return &vonmises.InputError{Field: "x", Reason: "length does not match phi"}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"phi", "x"}); err != nil {
		return err
	}
	for i := range s.Phi {
		row := []string{
			strconv.FormatFloat(s.Phi[i], 'g', -1, 64),
			strconv.FormatFloat(s.X[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes samples to a CSV file.
func Save(path string, s Samples) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func columns(header []string) (phiCol, xCol int, err error) {
	phiCol, xCol = -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		header[i] = name
		switch {
		case name == "phi" && phiCol < 0:
			phiCol = i
		case xCol < 0 && slices.Contains(responseColumns, name):
			xCol = i
		}
	}
	if phiCol < 0 {
		return 0, 0, fmt.Errorf("%w: header has no phi column", ErrMalformed)
	}
	if xCol < 0 {
		return 0, 0, fmt.Errorf("%w: header has no response column (one of %s)",
			ErrMalformed, strings.Join(responseColumns, ", "))
	}
	return phiCol, xCol, nil
}

func parseField(field, column string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: column %s: %q is not a number", ErrMalformed, line, column, field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: line %d: column %s: non-finite value", ErrMalformed, line, column)
	}
	return v, nil
}

func wrap(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi
}
