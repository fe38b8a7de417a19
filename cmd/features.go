package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/pipeline"
	"github.com/RyanBlaney/sonido-eeg/stream"
)

var featuresOffset int

var featuresCmd = &cobra.Command{
	Use:   "features [file]",
	Short: "Extract the feature vector of a single window",
	Long: `Reads samples from a file (or stdin when omitted), skips --offset
samples and extracts the feature vector of the next full window.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().IntVar(&featuresOffset, "offset", 0,
		"number of samples to skip before the window")
}

type featureReport struct {
	Source     string             `json:"source" yaml:"source"`
	Offset     int                `json:"offset" yaml:"offset"`
	WindowSize int                `json:"window_size" yaml:"window_size"`
	SampleRate float64            `json:"sample_rate" yaml:"sample_rate"`
	Features   map[string]float64 `json:"features" yaml:"features"`
}

func runFeatures(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	if featuresOffset < 0 {
		return common.InvalidParameter("features", "offset must be non-negative, got %d", featuresOffset)
	}

	p, err := pipeline.New(appConfig)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(path)
	if err != nil {
		return err
	}
	defer closeInput()

	window, err := readWindow(cmd, stream.NewLineSource(input, path), featuresOffset, appConfig.WindowSize)
	if err != nil {
		return err
	}

	vector, err := p.Process(window)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := featureReport{
		Source:     path,
		Offset:     featuresOffset,
		WindowSize: len(window),
		SampleRate: appConfig.SampleRate,
		Features:   vector.Map(),
	}
	if ok, err := encode(appConfig.OutputFormat, out, report); ok {
		return err
	}

	fmt.Fprintf(out, "Features of %s [%d:%d] at %g Hz\n", path, featuresOffset, featuresOffset+len(window), appConfig.SampleRate)
	fmt.Fprintln(out, strings.Repeat("=", 40))
	for _, f := range vector.Features() {
		printKeyValue(cmd, f.Name, fmt.Sprintf("%.6g", f.Value))
	}
	return nil
}

func readWindow(cmd *cobra.Command, src stream.Source, offset, size int) ([]float64, error) {
	window := make([]float64, 0, size)
	for i := 0; len(window) < size; i++ {
		sample, err := src.Next(cmd.Context())
		if errors.Is(err, io.EOF) {
			return nil, common.WindowTooShort("features",
				"input ended after %d samples, need %d", i, offset+size)
		}
		if err != nil {
			return nil, err
		}
		if i >= offset {
			window = append(window, sample)
		}
	}
	return window, nil
}

func log10(x float64) float64 {
	// JSON has no -Inf; floor at -300 dB
	return math.Log10(math.Max(x, 1e-15))
}
