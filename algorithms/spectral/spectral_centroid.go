package spectral

import (
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// Centroid returns the power-weighted mean frequency sum(f*P)/sum(P).
// A spectrum with no power has no centroid and fails with DegenerateSpectrum.
func Centroid(est *Estimate) (float64, error) {
	if est == nil || est.Len() == 0 {
		return 0, common.DegenerateSpectrum("spectral_centroid", "empty spectrum")
	}

	total := floats.Sum(est.Power)
	if !(total > 0) {
		return 0, common.DegenerateSpectrum("spectral_centroid", "total power %g is not positive", total)
	}

	return floats.Dot(est.Frequencies, est.Power) / total, nil
}
