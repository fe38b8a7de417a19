package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/pipeline"
)

// resultRecord is the serialized form of one window result
type resultRecord struct {
	Index     int                `json:"index" yaml:"index"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Features  map[string]float64 `json:"features,omitempty" yaml:"features,omitempty"`
	Label     *int               `json:"label,omitempty" yaml:"label,omitempty"`
	Action    string             `json:"action,omitempty" yaml:"action,omitempty"`
	Error     string             `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string             `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

func newResultRecord(r pipeline.Result) resultRecord {
	rec := resultRecord{
		Index:     r.Index,
		Timestamp: r.Timestamp,
		Label:     r.Label,
		Action:    string(r.Action),
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
		rec.ErrorKind = string(common.KindOf(r.Err))
		return rec
	}
	rec.Features = r.Features.Map()
	return rec
}

// resultWriter renders results in the configured output format
type resultWriter struct {
	format  string
	out     io.Writer
	names   []string
	table   *tabwriter.Writer
	yamlEnc *yaml.Encoder
	jsonEnc *json.Encoder
	header  bool
}

func newResultWriter(format string, out io.Writer, names []string) *resultWriter {
	w := &resultWriter{format: format, out: out, names: names}
	switch format {
	case "json":
		w.jsonEnc = json.NewEncoder(out)
	case "yaml":
		w.yamlEnc = yaml.NewEncoder(out)
		w.yamlEnc.SetIndent(2)
	default:
		w.table = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	}
	return w
}

// Write emits one result. Table rows are flushed per window so a live
// stream stays readable.
func (w *resultWriter) Write(r pipeline.Result) error {
	switch w.format {
	case "json":
		return w.jsonEnc.Encode(newResultRecord(r))
	case "yaml":
		return w.yamlEnc.Encode(newResultRecord(r))
	}

	if !w.header {
		fmt.Fprintf(w.table, "window\t%s\taction\t\n", strings.Join(w.names, "\t"))
		w.header = true
	}

	cells := make([]string, 0, len(w.names)+2)
	cells = append(cells, fmt.Sprintf("%d", r.Index))
	if r.Err != nil {
		for range w.names {
			cells = append(cells, "-")
		}
		cells = append(cells, string(common.KindOf(r.Err)))
	} else {
		for _, v := range r.Features.Values() {
			cells = append(cells, fmt.Sprintf("%.4g", v))
		}
		cells = append(cells, string(r.Action))
	}
	fmt.Fprintf(w.table, "%s\t\n", strings.Join(cells, "\t"))
	return w.table.Flush()
}

// Close finishes the output stream
func (w *resultWriter) Close() error {
	if w.yamlEnc != nil {
		return w.yamlEnc.Close()
	}
	if w.table != nil {
		return w.table.Flush()
	}
	return nil
}

// encode writes a single value as json or yaml. ok is false for the table format.
func encode(format string, out io.Writer, value any) (ok bool, err error) {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}
