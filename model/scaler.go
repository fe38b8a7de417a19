package model

import (
	"slices"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// StandardScaler computes (x - mean) / scale per feature
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// NewStandardScaler validates the parameters. A zero scale (constant
// training feature) is treated as 1, leaving the feature centred only.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 || len(mean) != len(scale) {
		return nil, modelError("scaler mean (%d) and scale (%d) must be non-empty and equal length", len(mean), len(scale))
	}
	if !common.AllFinite(mean) || !common.AllFinite(scale) {
		return nil, modelError("scaler parameters must be finite")
	}

	s := slices.Clone(scale)
	for i, v := range s {
		if v == 0 {
			s[i] = 1
		}
	}

	return &StandardScaler{mean: slices.Clone(mean), scale: s}, nil
}

// Dim returns the number of features
func (s *StandardScaler) Dim() int {
	return len(s.mean)
}

// Transform returns a scaled copy of x
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, modelError("scaler expects %d features, got %d", len(s.mean), len(x))
	}

	out := make([]float64, len(x))
	for i := range x {
		out[i] = (x[i] - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
