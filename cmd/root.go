package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-eeg/config"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

var (
	configFile string
	verbose    bool

	v         = config.NewViper()
	appConfig *config.Config
)

// flagKeys maps CLI flag names to configuration keys
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"output":      "output_format",
	"sample-rate": "sample_rate",
	"window":      "window_size",
	"hop":         "hop_size",
	"input":       "source.path",
	"model":       "model.path",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonido-eeg",
	Short: "Streaming EEG conditioning and feature extraction",
	Long: `Reads a single-channel EEG sample stream, removes mains interference,
band-limits it to the 0.5-30 Hz range and turns every window into a spectral
feature vector: band energies, alpha/beta ratio, peak frequency, centroid and
slope. With a model configured each vector is also classified.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table",
		"output format (table, json, yaml)")
	rootCmd.PersistentFlags().Float64P("sample-rate", "r", 512,
		"sampling rate in Hz")
	rootCmd.PersistentFlags().IntP("window", "w", 0,
		"window size in samples (default one second)")
}

// initializeConfig reads the config file, binds flags and installs the logger
func initializeConfig(cmd *cobra.Command) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read configuration %s: %w", configFile, err)
		}
	}

	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	if verbose {
		v.Set("log_level", "debug")
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// stdout carries results, so every log line goes to stderr
	logger := logging.NewDefaultLoggerWithWriters(os.Stderr, os.Stderr, isTerminal(os.Stderr))
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	if configFile != "" {
		logging.Debug("Using config file", logging.Fields{"path": v.ConfigFileUsed()})
	}
	return nil
}

// bindFlags binds each known cobra flag to its configuration key
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func isTerminal(f *os.File) bool {
	if fileInfo, _ := f.Stat(); fileInfo != nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
