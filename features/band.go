package features

import (
	"slices"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/spectral"
)

// Band is a named frequency range with inclusive bounds in Hz
type Band struct {
	Name string  `json:"name" mapstructure:"name"`
	Low  float64 `json:"low" mapstructure:"low"`
	High float64 `json:"high" mapstructure:"high"`
}

// Key returns the feature key for the band's energy, e.g. "E_alpha"
func (b Band) Key() string {
	return "E_" + b.Name
}

// DefaultBands returns the EEG rhythm table in feature order
func DefaultBands() []Band {
	return []Band{
		{Name: "alpha", Low: 8, High: 13},
		{Name: "beta", Low: 14, High: 30},
		{Name: "theta", Low: 4, High: 7},
		{Name: "delta", Low: 0.5, High: 3},
	}
}

// BandExtractor integrates PSD energy over each band and derives the
// alpha/beta ratio
type BandExtractor struct {
	bands []Band
}

// NewBandExtractor validates the band table. A nil table uses DefaultBands.
// The table must contain "alpha" and "beta" for the ratio feature.
func NewBandExtractor(bands []Band) (*BandExtractor, error) {
	if bands == nil {
		bands = DefaultBands()
	}

	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if b.Name == "" {
			return nil, common.InvalidParameter("band_features", "band with empty name")
		}
		if seen[b.Name] {
			return nil, common.InvalidParameter("band_features", "duplicate band %q", b.Name)
		}
		if b.Low < 0 || b.High < b.Low {
			return nil, common.InvalidParameter("band_features",
				"band %q has invalid range [%g, %g]", b.Name, b.Low, b.High)
		}
		seen[b.Name] = true
	}
	if !seen["alpha"] || !seen["beta"] {
		return nil, common.InvalidParameter("band_features", "band table must define alpha and beta")
	}

	return &BandExtractor{bands: slices.Clone(bands)}, nil
}

// GetName returns the extractor name
func (be *BandExtractor) GetName() string {
	return "band"
}

// GetFeatureNames returns the keys Extract produces, in order
func (be *BandExtractor) GetFeatureNames() []string {
	names := make([]string, 0, len(be.bands)+1)
	for _, b := range be.bands {
		names = append(names, b.Key())
	}
	return append(names, KeyAlphaBetaRatio)
}

// Extract sums band energies in table order and appends alpha_beta_ratio.
// The ratio is E_alpha/E_beta when E_beta > 0 and exactly 0 otherwise.
func (be *BandExtractor) Extract(est *spectral.Estimate) ([]Feature, error) {
	out := make([]Feature, 0, len(be.bands)+1)
	energy := make(map[string]float64, len(be.bands))

	for _, b := range be.bands {
		e := spectral.BandEnergy(est, b.Low, b.High)
		energy[b.Name] = e
		out = append(out, Feature{Name: b.Key(), Value: e})
	}

	ratio := 0.0
	if energy["beta"] > 0 {
		ratio = energy["alpha"] / energy["beta"]
	}

	return append(out, Feature{Name: KeyAlphaBetaRatio, Value: ratio}), nil
}
