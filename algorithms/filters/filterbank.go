package filters

import (
	"fmt"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// MinSampleRate is the lowest sampling rate accepted by a FilterBank. The
// 30 Hz passband edge needs a Nyquist margin above it.
const MinSampleRate = 60.0

// BankConfig holds the fixed design parameters of a FilterBank
type BankConfig struct {
	NotchFrequency float64 `json:"notch_frequency" mapstructure:"notch_frequency"` // Mains frequency in Hz
	NotchQ         float64 `json:"notch_q" mapstructure:"notch_q"`
	BandpassLow    float64 `json:"bandpass_low" mapstructure:"bandpass_low"`     // Hz
	BandpassHigh   float64 `json:"bandpass_high" mapstructure:"bandpass_high"`   // Hz
	BandpassOrder  int     `json:"bandpass_order" mapstructure:"bandpass_order"` // Prototype order
}

// DefaultBankConfig returns the 50 Hz notch / 0.5-30 Hz band-pass design
func DefaultBankConfig() *BankConfig {
	return &BankConfig{
		NotchFrequency: 50.0,
		NotchQ:         30.0,
		BandpassLow:    0.5,
		BandpassHigh:   30.0,
		BandpassOrder:  4,
	}
}

// FilterBank holds the notch and band-pass designs for one sampling rate
type FilterBank struct {
	sampleRate float64
	config     BankConfig
	notch      FilterSpec
	bandpass   FilterSpec
}

// NewFilterBank designs both filters for sampling rate fs. A nil config uses
// DefaultBankConfig.
func NewFilterBank(fs float64, config *BankConfig) (*FilterBank, error) {
	if config == nil {
		config = DefaultBankConfig()
	}

	if fs <= MinSampleRate {
		return nil, common.InvalidParameter("filter_bank",
			"sampling rate %g Hz must exceed %g Hz", fs, MinSampleRate)
	}

	logger := logging.WithFields(logging.Fields{
		"component":   "filter_bank",
		"sample_rate": fs,
	})

	notch, err := DesignNotch(config.NotchFrequency, config.NotchQ, fs)
	if err != nil {
		return nil, err
	}

	bandpass, err := DesignButterworthBandpass(config.BandpassOrder, config.BandpassLow, config.BandpassHigh, fs)
	if err != nil {
		return nil, err
	}

	for _, spec := range []FilterSpec{notch, bandpass} {
		if !spec.IsStable() {
			return nil, common.InvalidParameter("filter_bank",
				"%s design is unstable at %g Hz", spec.Name(), fs)
		}
	}

	logger.Debug("Filter bank designed", logging.Fields{
		"notch_frequency": config.NotchFrequency,
		"notch_q":         config.NotchQ,
		"passband":        fmt.Sprintf("[%g, %g]", config.BandpassLow, config.BandpassHigh),
		"bandpass_order":  config.BandpassOrder,
	})

	return &FilterBank{
		sampleRate: fs,
		config:     *config,
		notch:      notch,
		bandpass:   bandpass,
	}, nil
}

// Notch returns the notch stage
func (fb *FilterBank) Notch() FilterSpec {
	return fb.notch
}

// Bandpass returns the band-pass stage
func (fb *FilterBank) Bandpass() FilterSpec {
	return fb.bandpass
}

// SampleRate returns the sampling rate the filters were designed for
func (fb *FilterBank) SampleRate() float64 {
	return fb.sampleRate
}

// Config returns a copy of the design parameters
func (fb *FilterBank) Config() BankConfig {
	return fb.config
}

// Conditioner returns a zero-phase conditioner over both stages
func (fb *FilterBank) Conditioner() *Conditioner {
	return NewConditioner(fb.notch, fb.bandpass)
}
