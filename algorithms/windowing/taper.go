package windowing

import (
	"fmt"
	"math"
)

// Type names a taper applied to a segment before spectral estimation
type Type string

const (
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeRectangular Type = "rectangular"
)

// Taper holds precomputed window coefficients for a fixed segment size
type Taper struct {
	kind         Type
	size         int
	symmetric    bool
	coefficients []float64
}

// New creates a taper of the given type. Spectral estimation uses the
// periodic form (symmetric=false).
func New(kind Type, size int, symmetric bool) (*Taper, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	t := &Taper{
		kind:      kind,
		size:      size,
		symmetric: symmetric,
	}

	switch kind {
	case TypeHann:
		t.generateCosine(0.5, 0.5)
	case TypeHamming:
		t.generateCosine(0.54, 0.46)
	case TypeRectangular:
		t.coefficients = make([]float64, size)
		for i := range t.coefficients {
			t.coefficients[i] = 1.0
		}
	default:
		return nil, fmt.Errorf("unsupported window type: %s", kind)
	}

	return t, nil
}

// NewHann creates a Hann taper
func NewHann(size int, symmetric bool) *Taper {
	t, _ := New(TypeHann, max(size, 1), symmetric)
	return t
}

// generateCosine fills a0 - a1*cos(2*pi*i/N) coefficients
func (t *Taper) generateCosine(a0, a1 float64) {
	t.coefficients = make([]float64, t.size)
	if t.size == 1 {
		t.coefficients[0] = 1.0
		return
	}

	denominator := float64(t.size)
	if t.symmetric {
		denominator = float64(t.size - 1)
	}

	for i := range t.size {
		t.coefficients[i] = a0 - a1*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}

// Apply multiplies signal by the taper and returns a new slice
func (t *Taper) Apply(signal []float64) ([]float64, error) {
	if len(signal) != t.size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), t.size)
	}

	windowed := make([]float64, t.size)
	for i := range t.size {
		windowed[i] = signal[i] * t.coefficients[i]
	}

	return windowed, nil
}

// SumSquares returns sum(w^2), the normalization for density scaling
func (t *Taper) SumSquares() float64 {
	sum := 0.0
	for _, c := range t.coefficients {
		sum += c * c
	}
	return sum
}

// GetCoefficients returns a copy of the window coefficients
func (t *Taper) GetCoefficients() []float64 {
	coeffs := make([]float64, len(t.coefficients))
	copy(coeffs, t.coefficients)
	return coeffs
}

// GetSize returns the window size
func (t *Taper) GetSize() int {
	return t.size
}

// GetType returns the window type
func (t *Taper) GetType() Type {
	return t.kind
}
