package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-eeg/logging"
	"github.com/RyanBlaney/sonido-eeg/model"
	"github.com/RyanBlaney/sonido-eeg/pipeline"
	"github.com/RyanBlaney/sonido-eeg/stream"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream samples through the pipeline and print one result per window",
	Long: `Reads one sample per line from a file, a serial device or stdin ("-"),
windows the stream and prints the feature vector of every full window.

Malformed lines are skipped and counted. A window that cannot be processed is
reported and skipped; a read failure on the source stops the run.

SIGINT or SIGTERM closes the input, which interrupts a read blocked on an
idle device, and ends the run without an error. A partial window is dropped.`,
	Example: `  sonido-eeg run --input /dev/ttyUSB0 --model model.yaml
  cat recording.txt | sonido-eeg run -o json`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "-",
		`sample source: file or device path, "-" for stdin`)
	runCmd.Flags().StringP("model", "m", "",
		"scaler + classifier document (yaml or json)")
	runCmd.Flags().Int("hop", 0,
		"samples between window starts (default the window size)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []pipeline.Option
	if appConfig.Model.Path != "" {
		m, err := model.Load(appConfig.Model.Path)
		if err != nil {
			return err
		}
		logging.Info("Model loaded", logging.Fields{
			"model":    m.Name(),
			"features": m.Features(),
			"classes":  m.Classes(),
		})
		opts = append(opts, pipeline.WithPredictor(m))
	}

	p, err := pipeline.New(appConfig, opts...)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(appConfig.Source.Path)
	if err != nil {
		return err
	}
	defer closeInput()
	// unblocks a Scan waiting on a quiet tty
	stopClose := context.AfterFunc(ctx, closeInput)
	defer stopClose()

	out := newResultWriter(appConfig.OutputFormat, cmd.OutOrStdout(), p.FeatureNames())
	src := stream.NewLineSource(input, appConfig.Source.Path)

	runErr := p.Run(ctx, src, out.Write)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = err
	}

	stats := p.Stats()
	logging.Info("Run finished", logging.Fields{
		"samples":           stats.Samples,
		"windows_processed": stats.WindowsProcessed,
		"windows_failed":    stats.WindowsFailed,
		"malformed_samples": stats.Malformed,
		"lines_read":        src.Lines(),
	})

	if ctx.Err() != nil {
		// interrupted; a read failing on the closed input is expected
		return nil
	}
	return runErr
}

// openInput opens path, or stdin for "-". The returned close function may be
// called more than once.
func openInput(path string) (io.Reader, func(), error) {
	f := os.Stdin
	if path != "" && path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, nil, fmt.Errorf("unable to open input %s: %w", path, err)
		}
	}
	return f, sync.OnceFunc(func() { f.Close() }), nil
}
