package filters

import (
	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// FiltFilt applies the filter forward and then backward over window, which
// cancels the phase response and squares the magnitude response.
//
// Edge transients are suppressed with an odd extension of PadLength()
// samples on each side and per-stage steady-state initial conditions scaled
// to the first sample of each pass. The returned slice has the same length
// as window; window itself is left untouched.
func FiltFilt(f FilterSpec, window []float64) ([]float64, error) {
	edge := f.PadLength()
	if len(window) <= edge {
		return nil, common.WindowTooShort("filtfilt_"+f.name,
			"window length %d must exceed padding length %d (filter order %d)", len(window), edge, f.Order())
	}

	ext := oddExtend(window, edge)

	forward := f.ApplyWithState(ext, f.scaledState(ext[0]))

	backward := common.Reverse(forward)
	backward = f.ApplyWithState(backward, f.scaledState(backward[0]))

	result := common.Reverse(backward)
	out := make([]float64, len(window))
	copy(out, result[edge:edge+len(window)])
	return out, nil
}

// oddExtend reflects n samples about each endpoint:
// [2x0-x[n]..2x0-x[1], x..., 2xN-x[N-1]..2xN-x[N-n]]
func oddExtend(x []float64, n int) []float64 {
	last := len(x) - 1
	ext := make([]float64, 0, len(x)+2*n)

	for i := n; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= n; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}

	return ext
}
