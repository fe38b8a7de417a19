package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/filters"
	"github.com/RyanBlaney/sonido-eeg/algorithms/spectral"
	"github.com/RyanBlaney/sonido-eeg/features"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// EnvPrefix prefixes environment overrides, e.g. SONIDO_EEG_SAMPLE_RATE
const EnvPrefix = "SONIDO_EEG"

// Config represents the pipeline configuration
type Config struct {
	// Acquisition
	SampleRate float64 `mapstructure:"sample_rate"`
	WindowSize int     `mapstructure:"window_size"` // 0 means one second of samples
	HopSize    int     `mapstructure:"hop_size"`    // 0 means non-overlapping windows

	// Application settings
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	Filters  filters.BankConfig   `mapstructure:"filters"`
	Spectral spectral.WelchConfig `mapstructure:"spectral"`
	Bands    []features.Band      `mapstructure:"bands"` // empty means the default EEG rhythm table

	Source SourceConfig `mapstructure:"source"`
	Model  ModelConfig  `mapstructure:"model"`
}

// SourceConfig selects where samples come from
type SourceConfig struct {
	Path string `mapstructure:"path"` // file or device path, "-" for stdin
}

// ModelConfig points at the exported scaler + classifier document
type ModelConfig struct {
	Path string `mapstructure:"path"` // empty disables classification
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	bank := filters.DefaultBankConfig()
	welch := spectral.DefaultWelchConfig()

	v.SetDefault("sample_rate", 512.0)
	v.SetDefault("window_size", 0)
	v.SetDefault("hop_size", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")

	v.SetDefault("filters.notch_frequency", bank.NotchFrequency)
	v.SetDefault("filters.notch_q", bank.NotchQ)
	v.SetDefault("filters.bandpass_low", bank.BandpassLow)
	v.SetDefault("filters.bandpass_high", bank.BandpassHigh)
	v.SetDefault("filters.bandpass_order", bank.BandpassOrder)

	v.SetDefault("spectral.segment_length", welch.SegmentLength)
	v.SetDefault("spectral.overlap", welch.Overlap)
	v.SetDefault("spectral.window", string(welch.Window))

	v.SetDefault("source.path", "-")
	v.SetDefault("model.path", "")
}

// NewViper returns a viper instance with defaults and environment overrides
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadFile reads a YAML/JSON/TOML config file on top of the defaults. An
// empty path loads defaults and environment only.
func LoadFile(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read configuration %s: %w", path, err)
		}
	}
	return Load(v)
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the validated default configuration
func Default() *Config {
	cfg, _ := Load(NewViper())
	return cfg
}

// applyDerived fills values that default relative to others
func (c *Config) applyDerived() {
	if c.WindowSize == 0 {
		c.WindowSize = int(c.SampleRate)
	}
	if c.HopSize == 0 {
		c.HopSize = c.WindowSize
	}
}

// Validate checks ranges that do not depend on filter design
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return common.InvalidParameter("config", "sample_rate must be positive, got %g", c.SampleRate)
	}
	if c.WindowSize <= 0 {
		return common.InvalidParameter("config", "window_size must be positive, got %d", c.WindowSize)
	}
	if c.HopSize <= 0 || c.HopSize > c.WindowSize {
		return common.InvalidParameter("config", "hop_size must be in [1, %d], got %d", c.WindowSize, c.HopSize)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return common.NewPipelineError(common.KindInvalidParameter, "config", "bad log_level", err)
	}
	switch c.OutputFormat {
	case "table", "json", "yaml":
	default:
		return common.InvalidParameter("config", "output_format must be table, json or yaml, got %q", c.OutputFormat)
	}
	return nil
}

// BandTable returns the configured bands, or nil for the defaults
func (c *Config) BandTable() []features.Band {
	if len(c.Bands) == 0 {
		return nil
	}
	return c.Bands
}
