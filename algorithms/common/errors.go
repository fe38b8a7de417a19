package common

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures by how the caller should react to them
type Kind string

const (
	// KindInvalidParameter is a bad sampling rate, band or filter configuration. Fatal at construction.
	KindInvalidParameter Kind = "INVALID_PARAMETER"
	// KindWindowTooShort means the window cannot hold the zero-phase filter padding. Fatal at construction.
	KindWindowTooShort Kind = "WINDOW_TOO_SHORT"
	// KindDegenerateSpectrum means a single window produced an unusable PSD. The window is skipped.
	KindDegenerateSpectrum Kind = "DEGENERATE_SPECTRUM"
	// KindSource is an upstream acquisition failure. Never recovered inside the pipeline.
	KindSource Kind = "SOURCE_ERROR"
	// KindModel is a model/scaler load or prediction failure
	KindModel Kind = "MODEL_ERROR"
)

// Sentinels for errors.Is matching against a PipelineError's kind
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrWindowTooShort     = errors.New("window too short")
	ErrDegenerateSpectrum = errors.New("degenerate spectrum")
	ErrSource             = errors.New("source error")
	ErrModel              = errors.New("model error")
)

var kindSentinels = map[Kind]error{
	KindInvalidParameter:   ErrInvalidParameter,
	KindWindowTooShort:     ErrWindowTooShort,
	KindDegenerateSpectrum: ErrDegenerateSpectrum,
	KindSource:             ErrSource,
	KindModel:              ErrModel,
}

// PipelineError carries the failing stage alongside the error kind
type PipelineError struct {
	Kind    Kind   `json:"kind"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s [%s]: %s", e.Stage, e.Kind, e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind
func (e *PipelineError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// NewPipelineError creates a new pipeline error
func NewPipelineError(kind Kind, stage, message string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    kind,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// InvalidParameter builds a KindInvalidParameter error with a formatted message
func InvalidParameter(stage, format string, args ...any) *PipelineError {
	return NewPipelineError(KindInvalidParameter, stage, fmt.Sprintf(format, args...), nil)
}

// WindowTooShort builds a KindWindowTooShort error with a formatted message
func WindowTooShort(stage, format string, args ...any) *PipelineError {
	return NewPipelineError(KindWindowTooShort, stage, fmt.Sprintf(format, args...), nil)
}

// DegenerateSpectrum builds a KindDegenerateSpectrum error with a formatted message
func DegenerateSpectrum(stage, format string, args ...any) *PipelineError {
	return NewPipelineError(KindDegenerateSpectrum, stage, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the first PipelineError in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
