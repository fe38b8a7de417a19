package features

import (
	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/spectral"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// FeatureExtractor turns one PSD estimate into an ordered list of features
type FeatureExtractor interface {
	Extract(est *spectral.Estimate) ([]Feature, error)
	GetFeatureNames() []string
	GetName() string
}

// Extractor runs a fixed sequence of extractors and merges their output
type Extractor struct {
	extractors []FeatureExtractor
	names      []string
	logger     logging.Logger
}

// NewExtractor chains extractors. Their combined keys must be unique.
func NewExtractor(extractors ...FeatureExtractor) (*Extractor, error) {
	var names []string
	seen := make(map[string]string)
	for _, ex := range extractors {
		for _, name := range ex.GetFeatureNames() {
			if owner, ok := seen[name]; ok {
				return nil, common.InvalidParameter("feature_extractor",
					"feature %q produced by both %s and %s", name, owner, ex.GetName())
			}
			seen[name] = ex.GetName()
			names = append(names, name)
		}
	}

	return &Extractor{
		extractors: extractors,
		names:      names,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}, nil
}

// NewDefaultExtractor returns the band + shape extractor producing FeatureNames
func NewDefaultExtractor() *Extractor {
	band, _ := NewBandExtractor(nil)
	ex, _ := NewExtractor(band, NewShapeExtractor())
	return ex
}

// GetFeatureNames returns the merged key order
func (e *Extractor) GetFeatureNames() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Compute runs every extractor over est and merges the results. Any value
// that is not finite fails the window instead of reaching the vector.
func (e *Extractor) Compute(est *spectral.Estimate) (Vector, error) {
	merged := make([]Feature, 0, len(e.names))

	for _, ex := range e.extractors {
		out, err := ex.Extract(est)
		if err != nil {
			e.logger.Debug("Extractor failed", logging.Fields{
				"extractor": ex.GetName(),
				"error":     err.Error(),
			})
			return Vector{}, err
		}
		merged = append(merged, out...)
	}

	for _, f := range merged {
		if !common.AllFinite([]float64{f.Value}) {
			return Vector{}, common.DegenerateSpectrum("feature_extractor", "feature %s is not finite", f.Name)
		}
	}

	return NewVector(merged...)
}
