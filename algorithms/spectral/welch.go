package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/windowing"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// Estimate is a one-sided power spectral density: Power[i] is the density
// (units²/Hz) at Frequencies[i]. Bins run from 0 to the Nyquist frequency.
type Estimate struct {
	Frequencies    []float64 `json:"frequencies"`
	Power          []float64 `json:"power"`
	SampleRate     float64   `json:"sample_rate"`
	SegmentLength  int       `json:"segment_length"`
	Segments       int       `json:"segments"`
	FreqResolution float64   `json:"freq_resolution"` // Hz per bin
}

// Len returns the number of frequency bins
func (e *Estimate) Len() int {
	return len(e.Power)
}

// WelchConfig configures the estimator. A zero SegmentLength means one
// segment spanning the whole window, i.e. a single tapered periodogram.
type WelchConfig struct {
	SegmentLength int            `json:"segment_length" mapstructure:"segment_length"`
	Overlap       int            `json:"overlap" mapstructure:"overlap"`
	Window        windowing.Type `json:"window" mapstructure:"window"`
}

// DefaultWelchConfig returns the single-segment Hann configuration
func DefaultWelchConfig() *WelchConfig {
	return &WelchConfig{
		SegmentLength: 0,
		Overlap:       0,
		Window:        windowing.TypeHann,
	}
}

// Welch estimates power spectral density with Welch's method: the signal is
// split into (possibly overlapping) segments, each segment is mean-detrended
// and tapered, and the periodograms are averaged.
type Welch struct {
	sampleRate float64
	config     WelchConfig
	fft        *FFT
	logger     logging.Logger
}

// NewWelch creates an estimator for sampling rate fs. A nil config uses
// DefaultWelchConfig.
func NewWelch(fs float64, config *WelchConfig) (*Welch, error) {
	if config == nil {
		config = DefaultWelchConfig()
	}
	if fs <= 0 {
		return nil, common.InvalidParameter("welch", "sampling rate must be positive, got %g", fs)
	}
	if config.SegmentLength < 0 || config.Overlap < 0 {
		return nil, common.InvalidParameter("welch", "segment length and overlap must be non-negative")
	}
	if config.SegmentLength > 0 && config.Overlap >= config.SegmentLength {
		return nil, common.InvalidParameter("welch",
			"overlap %d must be smaller than segment length %d", config.Overlap, config.SegmentLength)
	}
	if config.Window == "" {
		config.Window = windowing.TypeHann
	}
	if _, err := windowing.New(config.Window, 1, false); err != nil {
		return nil, common.NewPipelineError(common.KindInvalidParameter, "welch", "bad taper", err)
	}

	return &Welch{
		sampleRate: fs,
		config:     *config,
		fft:        NewFFT(),
		logger: logging.WithFields(logging.Fields{
			"component":   "welch_estimator",
			"sample_rate": fs,
		}),
	}, nil
}

// SampleRate returns the sampling rate the estimator was built for
func (w *Welch) SampleRate() float64 {
	return w.sampleRate
}

// Estimate computes the PSD of window. The result is a pure function of the
// window contents and the configuration.
func (w *Welch) Estimate(window []float64) (*Estimate, error) {
	if len(window) == 0 {
		return nil, common.InvalidParameter("welch", "empty window")
	}

	nperseg := w.config.SegmentLength
	noverlap := w.config.Overlap
	if nperseg == 0 || nperseg > len(window) {
		nperseg = len(window)
		noverlap = 0
	}
	step := nperseg - noverlap
	numSegments := (len(window) - noverlap) / step

	taper, err := windowing.New(w.config.Window, nperseg, false)
	if err != nil {
		return nil, common.NewPipelineError(common.KindInvalidParameter, "welch", "bad taper", err)
	}

	// Density scaling: |X|^2 / (fs * sum(w^2))
	scale := 1.0 / (w.sampleRate * taper.SumSquares())
	numBins := nperseg/2 + 1
	power := make([]float64, numBins)

	for s := range numSegments {
		segment := window[s*step : s*step+nperseg]

		mean := common.Mean(segment)
		detrended := make([]float64, nperseg)
		for i, v := range segment {
			detrended[i] = v - mean
		}

		tapered, err := taper.Apply(detrended)
		if err != nil {
			return nil, common.NewPipelineError(common.KindInvalidParameter, "welch", "taper failed", err)
		}

		spectrum := w.fft.ComputeOneSided(tapered)
		for k, c := range spectrum {
			mag := cmplx.Abs(c)
			power[k] += mag * mag * scale
		}
	}

	for k := range power {
		power[k] /= float64(numSegments)
	}

	// Fold negative frequencies into the one-sided estimate. DC and, for
	// even lengths, Nyquist have no mirror image.
	last := numBins
	if nperseg%2 == 0 {
		last = numBins - 1
	}
	for k := 1; k < last; k++ {
		power[k] *= 2
	}

	resolution := w.sampleRate / float64(nperseg)
	freqs := make([]float64, numBins)
	for k := range freqs {
		freqs[k] = float64(k) * resolution
	}

	w.logger.Debug("PSD estimated", logging.Fields{
		"window_length": len(window),
		"segments":      numSegments,
		"freq_bins":     numBins,
	})

	return &Estimate{
		Frequencies:    freqs,
		Power:          power,
		SampleRate:     w.sampleRate,
		SegmentLength:  nperseg,
		Segments:       numSegments,
		FreqResolution: resolution,
	}, nil
}
