package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// Slope fits ln(P) = slope*ln(f) + c by least squares over every bin except
// DC and returns the slope.
//
// Bins are never clamped or silently dropped: a retained bin with power <= 0
// or a non-finite value, fewer than 2 non-DC bins, or a non-finite fit all
// fail with DegenerateSpectrum.
func Slope(est *Estimate) (float64, error) {
	if est == nil {
		return 0, common.DegenerateSpectrum("spectral_slope", "nil spectrum")
	}

	logF := make([]float64, 0, est.Len())
	logP := make([]float64, 0, est.Len())

	for i := range est.Len() {
		f := est.Frequencies[i]
		if f <= 0 {
			continue // DC
		}

		p := est.Power[i]
		if !(p > 0) || math.IsInf(p, 0) {
			return 0, common.DegenerateSpectrum("spectral_slope",
				"power %g at %g Hz has no logarithm", p, f)
		}

		logF = append(logF, math.Log(f))
		logP = append(logP, math.Log(p))
	}

	if len(logF) < 2 {
		return 0, common.DegenerateSpectrum("spectral_slope",
			"need at least 2 non-DC bins, have %d", len(logF))
	}

	slope, _, _ := common.LinRegression(logF, logP)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, common.DegenerateSpectrum("spectral_slope", "fit produced non-finite slope")
	}

	return slope, nil
}
