package features

import (
	"github.com/RyanBlaney/sonido-eeg/algorithms/spectral"
)

// ShapeExtractor derives peak frequency, spectral centroid and log-log
// spectral slope from a PSD
type ShapeExtractor struct{}

// NewShapeExtractor creates a new shape extractor
func NewShapeExtractor() *ShapeExtractor {
	return &ShapeExtractor{}
}

// GetName returns the extractor name
func (se *ShapeExtractor) GetName() string {
	return "shape"
}

// GetFeatureNames returns the keys Extract produces, in order
func (se *ShapeExtractor) GetFeatureNames() []string {
	return []string{KeyPeakFrequency, KeyCentroid, KeySlope}
}

// Extract fails with DegenerateSpectrum when the spectrum has no power or
// a non-DC bin cannot be log-transformed
func (se *ShapeExtractor) Extract(est *spectral.Estimate) ([]Feature, error) {
	peak, err := spectral.PeakFrequency(est)
	if err != nil {
		return nil, err
	}

	centroid, err := spectral.Centroid(est)
	if err != nil {
		return nil, err
	}

	slope, err := spectral.Slope(est)
	if err != nil {
		return nil, err
	}

	return []Feature{
		{Name: KeyPeakFrequency, Value: peak},
		{Name: KeyCentroid, Value: centroid},
		{Name: KeySlope, Value: slope},
	}, nil
}
