package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/features"
	"github.com/RyanBlaney/sonido-eeg/pipeline"
	"github.com/RyanBlaney/sonido-eeg/stream"
)

func writeSamples(t *testing.T, n int, freq float64) string {
	t.Helper()
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "%.9f\n", math.Sin(2*math.Pi*freq*float64(i)/512))
	}
	path := filepath.Join(t.TempDir(), "samples.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func TestFeaturesCommandJSON(t *testing.T) {
	path := writeSamples(t, 600, 10)

	out, err := execute(t, "features", path, "--output", "json", "--log-level", "error")
	require.NoError(t, err)

	var report featureReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 512, report.WindowSize)
	assert.InDelta(t, 10.0, report.Features[features.KeyPeakFrequency], 1.0)
	assert.Len(t, report.Features, len(features.FeatureNames))
}

func TestFeaturesCommandShortInput(t *testing.T) {
	path := writeSamples(t, 100, 10)

	_, err := execute(t, "features", path, "--output", "table", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrWindowTooShort)
}

func TestResultWriterTable(t *testing.T) {
	var out bytes.Buffer
	names := []string{"a", "b"}
	w := newResultWriter("table", &out, names)

	v, err := features.NewVector(features.Feature{Name: "a", Value: 1.5}, features.Feature{Name: "b", Value: 2})
	require.NoError(t, err)

	require.NoError(t, w.Write(pipeline.Result{Index: 0, Features: v}))
	require.NoError(t, w.Write(pipeline.Result{Index: 1, Err: common.DegenerateSpectrum("centroid", "zero power")}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "window")
	assert.Contains(t, lines[1], "1.5")
	assert.Contains(t, lines[2], string(common.KindDegenerateSpectrum))
}

func TestResultWriterJSON(t *testing.T) {
	var out bytes.Buffer
	w := newResultWriter("json", &out, nil)

	v, err := features.NewVector(features.Feature{Name: "a", Value: 1.5})
	require.NoError(t, err)
	label := 3
	require.NoError(t, w.Write(pipeline.Result{Index: 4, Features: v, Label: &label, Action: "front"}))

	var rec resultRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, 4, rec.Index)
	assert.Equal(t, 1.5, rec.Features["a"])
	require.NotNil(t, rec.Label)
	assert.Equal(t, 3, *rec.Label)
	assert.Equal(t, "front", rec.Action)
}

func TestFiltersCommandMarksProbesAboveNyquist(t *testing.T) {
	out, err := execute(t, "filters", "--probe", "10,300", "--output", "table", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Stage 4:")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "|H| at 300 Hz") {
			assert.Contains(t, line, "n/a")
			assert.NotContains(t, line, "dB")
		}
		if strings.Contains(line, "|H| at 10 Hz") {
			assert.Contains(t, line, "dB")
		}
	}
	assert.Contains(t, out, "|H| at 300 Hz")
}

func TestCancelUnblocksIdleInput(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, func() { r.Close() })
	defer stop()

	src := stream.NewLineSource(r, "pipe")
	done := make(chan error, 1)
	go func() {
		_, err := src.Next(ctx)
		done <- err
	}()

	// nothing is ever written, so only the close can end the read
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("read stayed blocked after cancel")
	}
}

func TestOpenInputCloseIsIdempotent(t *testing.T) {
	path := writeSamples(t, 10, 10)

	input, closeInput, err := openInput(path)
	require.NoError(t, err)
	require.NotNil(t, input)

	closeInput()
	closeInput()

	_, _, err = openInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
