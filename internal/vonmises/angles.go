package vonmises

import (
	"math"
	"slices"
)

// SpacingTolerance bounds how far a gap between neighbouring distinct angles
// may deviate from 2*pi/K.
const SpacingTolerance = 1e-6

// AngleSet describes the distinct stimulus directions of a sample set.
type AngleSet struct {
	// Angles holds the distinct values in ascending order.
	Angles []float64
	// Index maps every sample to its position in Angles.
	Index []int
	// Counts holds the number of samples at each distinct angle.
	Counts []int
}

// UniqueAngles deduplicates phi by exact equality.
func UniqueAngles(phi []float64) AngleSet {
	angles := slices.Clone(phi)
	slices.Sort(angles)
	angles = slices.Compact(angles)

	set := AngleSet{
		Angles: angles,
		Index:  make([]int, len(phi)),
		Counts: make([]int, len(angles)),
	}
	for i, v := range phi {
		k, _ := slices.BinarySearch(angles, v)
		set.Index[i] = k
		set.Counts[k]++
	}
	return set
}

// K returns the number of distinct angles.
func (s AngleSet) K() int { return len(s.Angles) }

// Balanced reports whether every distinct angle is repeated equally often.
func (s AngleSet) Balanced() bool {
	for _, c := range s.Counts {
		if c != s.Counts[0] {
			return false
		}
	}
	return true
}

// SampleCounts returns, for every sample, the repeat count of its angle.
func (s AngleSet) SampleCounts() []float64 {
	out := make([]float64, len(s.Index))
	for i, k := range s.Index {
		out[i] = float64(s.Counts[k])
	}
	return out
}

// CheckUniform returns an error unless the distinct angles are spaced 2*pi/K apart.
func (s AngleSet) CheckUniform() error {
	step := 2 * math.Pi / float64(s.K())
	for i := 1; i < len(s.Angles); i++ {
		gap := s.Angles[i] - s.Angles[i-1]
		if math.Abs(gap-step) >= SpacingTolerance {
			return invalid("phi", "non-uniform angles: gap %.6g between %.6g and %.6g, expected %.6g",
				gap, s.Angles[i-1], s.Angles[i], step)
		}
	}
	return nil
}
