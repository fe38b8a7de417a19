package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/logging"
)

// Source produces samples in acquisition order. Next returns io.EOF when the
// stream ends; any other error is a SourceError the caller must surface.
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// LineSource reads one decimal sample per line, the framing used by serial
// EEG boards. Bytes are decoded as latin-1 and surrounding whitespace is
// trimmed. Blank lines are skipped; malformed lines are counted, logged and
// skipped.
type LineSource struct {
	scanner   *bufio.Scanner
	name      string
	lines     int
	malformed int
	logger    logging.Logger
}

// NewLineSource wraps r. name identifies the source in logs and errors.
func NewLineSource(r io.Reader, name string) *LineSource {
	return &LineSource{
		scanner: bufio.NewScanner(transform.NewReader(r, charmap.ISO8859_1.NewDecoder())),
		name:    name,
		logger: logging.WithFields(logging.Fields{
			"component": "line_source",
			"source":    name,
		}),
	}
}

// Next returns the next well-formed sample
func (ls *LineSource) Next(ctx context.Context) (float64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if !ls.scanner.Scan() {
			if err := ls.scanner.Err(); err != nil {
				return 0, common.NewPipelineError(common.KindSource, "source_"+ls.name, "read failed", err)
			}
			return 0, io.EOF
		}
		ls.lines++

		raw := strings.TrimSpace(ls.scanner.Text())
		if raw == "" {
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
			err = errors.New("non-finite sample")
		}
		if err != nil {
			ls.malformed++
			ls.logger.Warn("Skipping malformed sample", logging.Fields{
				"line":      ls.lines,
				"raw":       raw,
				"malformed": ls.malformed,
			})
			continue
		}

		return value, nil
	}
}

// Malformed returns how many non-blank lines could not be parsed
func (ls *LineSource) Malformed() int {
	return ls.malformed
}

// Lines returns how many lines have been read
func (ls *LineSource) Lines() int {
	return ls.lines
}

// SliceSource replays a fixed set of samples; useful for files already in
// memory and for tests
type SliceSource struct {
	samples []float64
	pos     int
}

// NewSliceSource creates a source over samples
func NewSliceSource(samples []float64) *SliceSource {
	return &SliceSource{samples: samples}
}

// Next returns the next sample or io.EOF
func (ss *SliceSource) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if ss.pos >= len(ss.samples) {
		return 0, io.EOF
	}
	v := ss.samples[ss.pos]
	ss.pos++
	return v, nil
}

// MalformedCounter is implemented by sources that track unparsable input
type MalformedCounter interface {
	Malformed() int
}
