package filters

import (
	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// Conditioner applies the notch stage then the band-pass stage to a window,
// both zero-phase
type Conditioner struct {
	notch    FilterSpec
	bandpass FilterSpec
	logger   logging.Logger
}

// NewConditioner creates a conditioner for the given filter pair
func NewConditioner(notch, bandpass FilterSpec) *Conditioner {
	return &Conditioner{
		notch:    notch,
		bandpass: bandpass,
		logger: logging.WithFields(logging.Fields{
			"component": "signal_conditioner",
		}),
	}
}

// MinWindowLength returns the shortest window both stages accept
func (c *Conditioner) MinWindowLength() int {
	return max(MinWindowLength(c.notch), MinWindowLength(c.bandpass))
}

// Condition filters window and returns a new slice of the same length
func (c *Conditioner) Condition(window []float64) ([]float64, error) {
	out, err := Condition(window, c.notch, c.bandpass)
	if err != nil {
		c.logger.Debug("Conditioning failed", logging.Fields{
			"window_length": len(window),
			"error":         err.Error(),
		})
		return nil, err
	}
	return out, nil
}

// Condition runs notch then band-pass zero-phase filtering over window
func Condition(window []float64, notch, bandpass FilterSpec) ([]float64, error) {
	if !common.AllFinite(window) {
		return nil, common.InvalidParameter("condition", "window contains NaN or Inf samples")
	}

	notched, err := FiltFilt(notch, window)
	if err != nil {
		return nil, err
	}

	return FiltFilt(bandpass, notched)
}
