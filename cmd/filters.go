package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-eeg/algorithms/filters"
)

var filterProbeFrequencies []float64

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Print the designed notch and band-pass filters",
	Long: `Designs the filters for the configured sampling rate and prints their
coefficients, poles, stability and magnitude response at a few probe
frequencies. Useful to check a configuration before streaming.`,
	Args: cobra.NoArgs,
	RunE: runFilters,
}

func init() {
	rootCmd.AddCommand(filtersCmd)

	filtersCmd.Flags().Float64SliceVar(&filterProbeFrequencies, "probe", []float64{0.5, 10, 30, 50},
		"frequencies (Hz) at which to report the magnitude response")
}

type filterReport struct {
	Name     string             `json:"name" yaml:"name"`
	B        []float64          `json:"b" yaml:"b"`
	A        []float64          `json:"a" yaml:"a"`
	Stages   []filters.Stage    `json:"stages" yaml:"stages"`
	Poles    []string           `json:"poles" yaml:"poles"`
	Stable   bool               `json:"stable" yaml:"stable"`
	PadLen   int                `json:"pad_length" yaml:"pad_length"`
	Response map[string]float64 `json:"response_db" yaml:"response_db"`
}

type bankReport struct {
	SampleRate      float64        `json:"sample_rate" yaml:"sample_rate"`
	MinWindowLength int            `json:"min_window_length" yaml:"min_window_length"`
	Filters         []filterReport `json:"filters" yaml:"filters"`
}

func runFilters(cmd *cobra.Command, args []string) error {
	bank, err := filters.NewFilterBank(appConfig.SampleRate, &appConfig.Filters)
	if err != nil {
		return err
	}

	report := bankReport{
		SampleRate:      bank.SampleRate(),
		MinWindowLength: bank.Conditioner().MinWindowLength(),
	}
	for _, f := range []filters.FilterSpec{bank.Notch(), bank.Bandpass()} {
		fr, err := newFilterReport(f, bank.SampleRate())
		if err != nil {
			return err
		}
		report.Filters = append(report.Filters, fr)
	}

	out := cmd.OutOrStdout()
	if ok, err := encode(appConfig.OutputFormat, out, report); ok {
		return err
	}

	fmt.Fprintf(out, "Filter bank at %g Hz\n", report.SampleRate)
	fmt.Fprintln(out, strings.Repeat("=", 40))
	printKeyValue(cmd, "Minimum window", fmt.Sprintf("%d samples", report.MinWindowLength))
	for _, fr := range report.Filters {
		fmt.Fprintf(out, "\n%s\n", fr.Name)
		fmt.Fprintln(out, strings.Repeat("-", len(fr.Name)))
		printKeyValue(cmd, "b", fmt.Sprintf("%.10g", fr.B))
		printKeyValue(cmd, "a", fmt.Sprintf("%.10g", fr.A))
		for i, st := range fr.Stages {
			printKeyValue(cmd, fmt.Sprintf("Stage %d", i+1), fmt.Sprintf("b=%.10g a=%.10g", st.B, st.A))
		}
		printKeyValue(cmd, "Poles", strings.Join(fr.Poles, " "))
		printKeyValue(cmd, "Stable", fmt.Sprintf("%t", fr.Stable))
		printKeyValue(cmd, "Pad length", fmt.Sprintf("%d", fr.PadLen))
		for _, freq := range filterProbeFrequencies {
			key := probeKey(freq)
			value := "n/a"
			if db, ok := fr.Response[key]; ok {
				value = fmt.Sprintf("%.2f dB", db)
			}
			printKeyValue(cmd, "|H| at "+key+" Hz", value)
		}
	}
	return nil
}

func newFilterReport(f filters.FilterSpec, fs float64) (filterReport, error) {
	poles, err := f.Poles()
	if err != nil {
		return filterReport{}, err
	}

	fr := filterReport{
		Name:     f.Name(),
		B:        f.B(),
		A:        f.A(),
		Stages:   f.Stages(),
		Stable:   f.IsStable(),
		PadLen:   f.PadLength(),
		Response: make(map[string]float64, len(filterProbeFrequencies)),
	}
	for _, p := range poles {
		fr.Poles = append(fr.Poles, fmt.Sprintf("%.4f", p))
	}
	for _, freq := range filterProbeFrequencies {
		if freq <= 0 || freq >= fs/2 {
			continue
		}
		mag, _ := f.Response(freq, fs)
		fr.Response[probeKey(freq)] = 20 * log10(mag)
	}
	return fr, nil
}

func probeKey(freq float64) string {
	return fmt.Sprintf("%g", freq)
}

func printKeyValue(cmd *cobra.Command, key, value string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", key+":", value)
}
