package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/filters"
	"github.com/RyanBlaney/sonido-eeg/algorithms/spectral"
	"github.com/RyanBlaney/sonido-eeg/config"
	"github.com/RyanBlaney/sonido-eeg/features"
	"github.com/RyanBlaney/sonido-eeg/logging"
	"github.com/RyanBlaney/sonido-eeg/model"
	"github.com/RyanBlaney/sonido-eeg/stream"
)

// Predictor scales and classifies a feature vector. *model.Model implements it.
type Predictor interface {
	Classify(v features.Vector) (int, error)
}

// Result is delivered to the handler once per full window
type Result struct {
	Index     int             `json:"index" yaml:"index"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Features  features.Vector `json:"-" yaml:"-"`
	Label     *int            `json:"label,omitempty" yaml:"label,omitempty"`
	Action    model.Action    `json:"action,omitempty" yaml:"action,omitempty"`
	Err       error           `json:"-" yaml:"-"`
}

// Handler receives results. Returning an error stops Run.
type Handler func(Result) error

// Stats counts what the ingestion loop has seen
type Stats struct {
	Samples          int `json:"samples"`
	WindowsProcessed int `json:"windows_processed"`
	WindowsFailed    int `json:"windows_failed"`
	Malformed        int `json:"malformed_samples"`
}

// Pipeline owns one channel's filter bank, estimator, extractors and
// windower. Instances share no mutable state and can run one per channel.
type Pipeline struct {
	config    config.Config
	bank      *filters.FilterBank
	welch     *spectral.Welch
	extractor *features.Extractor
	windower  *stream.Windower
	predictor Predictor
	stats     Stats
	logger    logging.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithPredictor enables classification of every feature vector
func WithPredictor(p Predictor) Option {
	return func(pl *Pipeline) {
		pl.predictor = p
	}
}

// WithLogger replaces the component logger
func WithLogger(l logging.Logger) Option {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

// New builds a pipeline from cfg. Filter design errors and a window size that
// cannot hold the zero-phase filter padding are fatal here rather than per
// window.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bank, err := filters.NewFilterBank(cfg.SampleRate, &cfg.Filters)
	if err != nil {
		return nil, err
	}

	if minLen := bank.Conditioner().MinWindowLength(); cfg.WindowSize < minLen {
		return nil, common.WindowTooShort("pipeline",
			"window_size %d is below the %d samples the filters need", cfg.WindowSize, minLen)
	}

	welchCfg := cfg.Spectral
	welch, err := spectral.NewWelch(cfg.SampleRate, &welchCfg)
	if err != nil {
		return nil, err
	}

	band, err := features.NewBandExtractor(cfg.BandTable())
	if err != nil {
		return nil, err
	}
	extractor, err := features.NewExtractor(band, features.NewShapeExtractor())
	if err != nil {
		return nil, err
	}

	windower, err := stream.NewWindower(cfg.WindowSize, stream.WithHop(cfg.HopSize))
	if err != nil {
		return nil, common.NewPipelineError(common.KindInvalidParameter, "pipeline", "bad window size", err)
	}

	p := &Pipeline{
		config:    *cfg,
		bank:      bank,
		welch:     welch,
		extractor: extractor,
		windower:  windower,
		logger: logging.WithFields(logging.Fields{
			"component":   "pipeline",
			"sample_rate": cfg.SampleRate,
			"window_size": cfg.WindowSize,
		}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if fm, ok := p.predictor.(interface{ Features() []string }); ok {
		if want := fm.Features(); !slices.Equal(want, p.FeatureNames()) {
			return nil, common.NewPipelineError(common.KindModel, "pipeline",
				fmt.Sprintf("model expects features %v, pipeline produces %v", want, p.FeatureNames()), nil)
		}
	}

	return p, nil
}

// FilterBank returns the designed filters
func (p *Pipeline) FilterBank() *filters.FilterBank {
	return p.bank
}

// FeatureNames returns the key order of the vectors this pipeline produces
func (p *Pipeline) FeatureNames() []string {
	return p.extractor.GetFeatureNames()
}

// Stats returns a snapshot of the counters
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// Process runs one full window through conditioning, spectral estimation
// and feature extraction. raw is not modified.
func (p *Pipeline) Process(raw []float64) (features.Vector, error) {
	if len(raw) != p.config.WindowSize {
		return features.Vector{}, common.InvalidParameter("pipeline",
			"window has %d samples, want %d", len(raw), p.config.WindowSize)
	}
	return processWindow(raw, p.bank.Notch(), p.bank.Bandpass(), p.welch, p.extractor)
}

// ProcessWindow is the one-shot form of the core: condition raw with the
// notch and band-pass filters, estimate its PSD at fs and extract the
// default feature vector (FeatureNames order).
func ProcessWindow(raw []float64, fs float64, notch, bandpass filters.FilterSpec) (features.Vector, error) {
	minLen := max(filters.MinWindowLength(notch), filters.MinWindowLength(bandpass))
	if len(raw) < minLen {
		return features.Vector{}, common.WindowTooShort("process_window",
			"window has %d samples, filters need at least %d", len(raw), minLen)
	}

	welch, err := spectral.NewWelch(fs, nil)
	if err != nil {
		return features.Vector{}, err
	}

	return processWindow(raw, notch, bandpass, welch, features.NewDefaultExtractor())
}

func processWindow(raw []float64, notch, bandpass filters.FilterSpec, welch *spectral.Welch, extractor *features.Extractor) (features.Vector, error) {
	conditioned, err := filters.Condition(raw, notch, bandpass)
	if err != nil {
		return features.Vector{}, err
	}

	est, err := welch.Estimate(conditioned)
	if err != nil {
		return features.Vector{}, err
	}

	return extractor.Compute(est)
}

// Run pulls samples from src until it is exhausted, ctx ends, or handler
// returns an error. Each full window is processed and delivered to handler.
//
// A window that fails processing is logged, delivered with Result.Err set
// and skipped; the loop continues with the next window. Source failures and
// context cancellation stop the loop and are returned. io.EOF ends the loop
// cleanly, discarding any partial window. Each Run starts with an empty
// window; Stats accumulate across runs.
func (p *Pipeline) Run(ctx context.Context, src stream.Source, handler Handler) error {
	logger := p.logger.WithContext(ctx)
	logger.Info("Pipeline started", logging.Fields{
		"hop_size": p.config.HopSize,
		"features": p.FeatureNames(),
	})

	// samples left over from an earlier run belong to another stream
	p.windower.Reset()

	defer func() {
		if mc, ok := src.(stream.MalformedCounter); ok {
			p.stats.Malformed = mc.Malformed()
		}
	}()

	index := 0
	for {
		sample, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("Source exhausted", logging.Fields{
					"windows_processed": p.stats.WindowsProcessed,
					"windows_failed":    p.stats.WindowsFailed,
					"pending_samples":   p.windower.Len(),
				})
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return err
			}
			logger.Error(err, "Source failed")
			if common.KindOf(err) == common.KindSource {
				return err
			}
			return common.NewPipelineError(common.KindSource, "source", "sample read failed", err)
		}
		p.stats.Samples++

		state, err := p.windower.SampleReceived(sample)
		if err != nil {
			return err
		}
		if state != stream.Ready {
			continue
		}

		window, _ := p.windower.Window()
		result := p.processResult(index, window, logger)
		p.windower.WindowConsumed()
		index++

		if handler != nil {
			if err := handler(result); err != nil {
				return err
			}
		}
	}
}

func (p *Pipeline) processResult(index int, window []float64, logger logging.Logger) Result {
	result := Result{Index: index, Timestamp: time.Now()}

	vector, err := p.Process(window)
	if err == nil && p.predictor != nil {
		var label int
		label, err = p.predictor.Classify(vector)
		if err == nil {
			result.Label = &label
			result.Action = model.ActionFor(label)
		}
	}

	if err != nil {
		p.stats.WindowsFailed++
		result.Err = err
		logger.Warn("Window skipped", logging.Fields{
			"window": index,
			"kind":   string(common.KindOf(err)),
			"error":  err.Error(),
		})
		return result
	}

	p.stats.WindowsProcessed++
	result.Features = vector
	logger.Debug("Window processed", logging.Fields{
		"window":   index,
		"rms":      common.RMS(window),
		"features": vector.String(),
	})
	return result
}
