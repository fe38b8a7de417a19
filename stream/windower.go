package stream

import (
	"errors"
	"fmt"
)

// State is the windower's position in its fill cycle
type State int

const (
	// Filling accepts samples until the window reaches capacity
	Filling State = iota
	// Ready holds a full window that must be consumed before more samples are accepted
	Ready
)

func (s State) String() string {
	switch s {
	case Filling:
		return "filling"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrWindowPending is returned when a sample arrives while a full window has
// not been consumed yet
var ErrWindowPending = errors.New("window is full and has not been consumed")

// Windower accumulates samples into fixed-size windows.
//
// Transitions:
//
//	Filling --SampleReceived--> Filling   (count < size)
//	Filling --SampleReceived--> Ready     (count == size)
//	Ready   --WindowConsumed--> Filling
//
// With the default hop (== size) consecutive windows never overlap. A
// smaller hop keeps the trailing size-hop samples after each consume.
type Windower struct {
	buffer []float64
	size   int
	hop    int
	count  int
	state  State
}

// WindowerOption configures a Windower
type WindowerOption func(*Windower)

// WithHop sets the number of samples discarded on each consume. Values
// outside [1, size] are ignored.
func WithHop(hop int) WindowerOption {
	return func(w *Windower) {
		if hop >= 1 && hop <= w.size {
			w.hop = hop
		}
	}
}

// NewWindower creates an empty windower for windows of size samples
func NewWindower(size int, opts ...WindowerOption) (*Windower, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	w := &Windower{
		buffer: make([]float64, size),
		size:   size,
		hop:    size,
		state:  Filling,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SampleReceived appends one sample and returns the resulting state
func (w *Windower) SampleReceived(sample float64) (State, error) {
	if w.state == Ready {
		return w.state, ErrWindowPending
	}

	w.buffer[w.count] = sample
	w.count++

	if w.count == w.size {
		w.state = Ready
	}
	return w.state, nil
}

// Window returns a copy of the full window. ok is false while filling.
func (w *Windower) Window() (window []float64, ok bool) {
	if w.state != Ready {
		return nil, false
	}
	out := make([]float64, w.size)
	copy(out, w.buffer)
	return out, true
}

// WindowConsumed releases the current window and returns to Filling. It is
// a no-op while filling.
func (w *Windower) WindowConsumed() {
	if w.state != Ready {
		return
	}

	if w.hop < w.size {
		copy(w.buffer, w.buffer[w.hop:])
		w.count = w.size - w.hop
	} else {
		w.count = 0
	}
	w.state = Filling
}

// Reset discards any buffered samples
func (w *Windower) Reset() {
	w.count = 0
	w.state = Filling
	for i := range w.buffer {
		w.buffer[i] = 0.0
	}
}

// State returns the current state
func (w *Windower) State() State {
	return w.state
}

// Len returns the number of buffered samples
func (w *Windower) Len() int {
	return w.count
}

// GetWindowSize returns the window size
func (w *Windower) GetWindowSize() int {
	return w.size
}

// GetHopSize returns the hop size
func (w *Windower) GetHopSize() int {
	return w.hop
}
