package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/algorithms/windowing"
	"github.com/RyanBlaney/sonido-eeg/features"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 512.0, cfg.SampleRate)
	assert.Equal(t, 512, cfg.WindowSize)
	assert.Equal(t, 512, cfg.HopSize)
	assert.Equal(t, 50.0, cfg.Filters.NotchFrequency)
	assert.Equal(t, 30.0, cfg.Filters.NotchQ)
	assert.Equal(t, 0.5, cfg.Filters.BandpassLow)
	assert.Equal(t, 30.0, cfg.Filters.BandpassHigh)
	assert.Equal(t, 4, cfg.Filters.BandpassOrder)
	assert.Equal(t, windowing.TypeHann, cfg.Spectral.Window)
	assert.Nil(t, cfg.BandTable())
	assert.Equal(t, "-", cfg.Source.Path)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeg.yaml")
	content := `
sample_rate: 1000
window_size: 500
hop_size: 250
log_level: debug
output_format: json
filters:
  notch_frequency: 60
bands:
  - {name: alpha, low: 8, high: 12}
  - {name: beta, low: 13, high: 30}
model:
  path: /opt/models/eeg.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.SampleRate)
	assert.Equal(t, 500, cfg.WindowSize)
	assert.Equal(t, 250, cfg.HopSize)
	assert.Equal(t, 60.0, cfg.Filters.NotchFrequency)
	assert.Equal(t, 30.0, cfg.Filters.NotchQ)
	require.Len(t, cfg.BandTable(), 2)
	assert.Equal(t, 12.0, cfg.Bands[0].High)
	assert.Equal(t, "/opt/models/eeg.yaml", cfg.Model.Path)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SONIDO_EEG_SAMPLE_RATE", "256")
	t.Setenv("SONIDO_EEG_FILTERS_NOTCH_FREQUENCY", "60")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 256.0, cfg.SampleRate)
	assert.Equal(t, 256, cfg.WindowSize)
	assert.Equal(t, 60.0, cfg.Filters.NotchFrequency)
}

func TestValidation(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.WindowSize = -1 },
		func(c *Config) { c.HopSize = c.WindowSize + 1 },
		func(c *Config) { c.LogLevel = "chatty" },
		func(c *Config) { c.OutputFormat = "xml" },
	}

	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		err := cfg.Validate()
		assert.ErrorIs(t, err, common.ErrInvalidParameter, "case %d", i)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShippedConfig(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "configs", "sonido-eeg.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Filters, cfg.Filters)
	assert.Equal(t, features.DefaultBands(), cfg.BandTable())
	assert.Equal(t, 512, cfg.WindowSize)
}
