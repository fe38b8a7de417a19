package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// DesignNotch designs a second-order IIR notch filter removing centerFreq
// (e.g. 50 Hz mains) from a signal sampled at fs.
//
// The -3 dB bandwidth is centerFreq/qFactor. With w0 = centerFreq/(fs/2):
//
//	beta = tan(pi*w0/(2*Q))
//	g    = 1/(1+beta)
//	b    = g * [1, -2cos(pi*w0), 1]
//	a    = [1, -2g*cos(pi*w0), 2g-1]
func DesignNotch(centerFreq, qFactor, fs float64) (FilterSpec, error) {
	if fs <= 0 {
		return FilterSpec{}, common.InvalidParameter("notch_design", "sampling rate must be positive, got %g", fs)
	}
	if qFactor <= 0 {
		return FilterSpec{}, common.InvalidParameter("notch_design", "quality factor must be positive, got %g", qFactor)
	}

	nyquist := fs / 2.0
	if centerFreq <= 0 || centerFreq >= nyquist {
		return FilterSpec{}, common.InvalidParameter("notch_design",
			"notch frequency %g Hz must be between 0 and Nyquist (%g Hz)", centerFreq, nyquist)
	}

	w0 := centerFreq / nyquist
	bw := w0 / qFactor

	w0 *= math.Pi
	bw *= math.Pi

	// Attenuation at the band edges is -3 dB, so sqrt(1-gb^2)/gb == 1
	beta := math.Tan(bw / 2.0)
	gain := 1.0 / (1.0 + beta)
	cosW0 := math.Cos(w0)

	b := []float64{gain, -2.0 * gain * cosW0, gain}
	a := []float64{1.0, -2.0 * gain * cosW0, 2.0*gain - 1.0}

	return NewFilterSpec("notch", b, a)
}
