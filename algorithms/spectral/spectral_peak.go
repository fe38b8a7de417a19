package spectral

import (
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// PeakFrequency returns the frequency of the bin with maximal power. Ties
// resolve to the lowest frequency.
func PeakFrequency(est *Estimate) (float64, error) {
	if est == nil || est.Len() == 0 {
		return 0, common.DegenerateSpectrum("peak_frequency", "empty spectrum")
	}
	return est.Frequencies[floats.MaxIdx(est.Power)], nil
}
