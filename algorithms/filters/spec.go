package filters

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// Stage is one IIR section of a cascade, H(z) = B(z)/A(z)
type Stage struct {
	B []float64 `json:"b" yaml:"b"`
	A []float64 `json:"a" yaml:"a"`
}

// stage is a normalized Stage (a[0] == 1) with its steady-state delay line
type stage struct {
	b  []float64
	a  []float64
	zi []float64
}

// FilterSpec is an immutable IIR filter stored as a cascade of stages.
//
// High-order designs keep their poles in second-order sections; expanding
// them into one polynomial moves poles clustered near z=1 outside the unit
// circle. B and A return the expanded transfer function for reporting only.
// Accessors return copies, so a FilterSpec can be shared between pipelines
// without locking.
type FilterSpec struct {
	name   string
	stages []stage
}

// NewFilterSpec creates a single-stage filter from numerator and denominator
// coefficients. The denominator's leading coefficient must be non-zero.
func NewFilterSpec(name string, b, a []float64) (FilterSpec, error) {
	return NewCascade(name, []Stage{{B: b, A: a}})
}

// NewCascade creates a filter applying stages in order. Steady-state initial
// conditions are solved here, so a FilterSpec that constructs can always be
// run with FiltFilt.
func NewCascade(name string, stages []Stage) (FilterSpec, error) {
	if len(stages) == 0 {
		return FilterSpec{}, common.InvalidParameter("filter_design", "%s: no stages", name)
	}

	f := FilterSpec{name: name, stages: make([]stage, 0, len(stages))}
	for i, s := range stages {
		if len(s.B) == 0 || len(s.A) == 0 {
			return FilterSpec{}, common.InvalidParameter("filter_design", "%s: stage %d has an empty coefficient vector", name, i)
		}
		if s.A[0] == 0 {
			return FilterSpec{}, common.InvalidParameter("filter_design", "%s: stage %d leading denominator coefficient is zero", name, i)
		}
		if !common.AllFinite(s.B) || !common.AllFinite(s.A) {
			return FilterSpec{}, common.InvalidParameter("filter_design", "%s: stage %d has a non-finite coefficient", name, i)
		}

		nb := make([]float64, len(s.B))
		na := make([]float64, len(s.A))
		for j := range s.B {
			nb[j] = s.B[j] / s.A[0]
		}
		for j := range s.A {
			na[j] = s.A[j] / s.A[0]
		}
		f.stages = append(f.stages, stage{b: nb, a: na})
	}

	if err := f.solveInitialConditions(); err != nil {
		return FilterSpec{}, err
	}
	return f, nil
}

// Name returns the filter's label, e.g. "notch" or "bandpass"
func (f FilterSpec) Name() string {
	return f.name
}

// Stages returns a copy of the normalized stage coefficients
func (f FilterSpec) Stages() []Stage {
	out := make([]Stage, len(f.stages))
	for i, s := range f.stages {
		out[i] = Stage{B: clone(s.b), A: clone(s.a)}
	}
	return out
}

// B returns the numerator of the expanded transfer function
func (f FilterSpec) B() []float64 {
	out := []float64{1}
	for _, s := range f.stages {
		out = convolve(out, s.b)
	}
	return out
}

// A returns the denominator of the expanded transfer function
func (f FilterSpec) A() []float64 {
	out := []float64{1}
	for _, s := range f.stages {
		out = convolve(out, s.a)
	}
	return out
}

// Order returns the filter order (total number of delay elements)
func (f FilterSpec) Order() int {
	order := 0
	for _, s := range f.stages {
		order += s.order()
	}
	return order
}

// PadLength is the number of samples of odd extension applied at each edge
// by zero-phase filtering
func (f FilterSpec) PadLength() int {
	return 3 * (f.Order() + 1)
}

// MinWindowLength returns the shortest window FiltFilt accepts for this filter
func MinWindowLength(f FilterSpec) int {
	return f.PadLength() + 1
}

// Poles returns the roots of every stage denominator, computed as the
// eigenvalues of each stage's companion matrix.
func (f FilterSpec) Poles() ([]complex128, error) {
	var poles []complex128
	for _, s := range f.stages {
		p, err := companionRoots(s.a)
		if err != nil {
			return nil, common.NewPipelineError(common.KindInvalidParameter, "filter_design",
				f.name+": eigen decomposition of denominator failed", err)
		}
		poles = append(poles, p...)
	}
	return poles, nil
}

// IsStable reports whether every pole lies strictly inside the unit circle
func (f FilterSpec) IsStable() bool {
	poles, err := f.Poles()
	if err != nil {
		return false
	}
	for _, p := range poles {
		if cmplx.Abs(p) >= 1.0 {
			return false
		}
	}
	return true
}

// Response computes the magnitude (linear) and phase (radians) of the
// frequency response at frequency Hz for sample rate fs.
//
// H(e^jw) = prod(sum(b[k]*e^-jwk) / sum(a[k]*e^-jwk)), w = 2*pi*frequency/fs
func (f FilterSpec) Response(frequency, fs float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / fs

	h := complex(1, 0)
	for _, s := range f.stages {
		h *= evalPoly(s.b, w) / evalPoly(s.a, w)
	}
	return cmplx.Abs(h), cmplx.Phase(h)
}

func (s stage) order() int {
	return max(len(s.a), len(s.b)) - 1
}

func evalPoly(c []float64, w float64) complex128 {
	var sum complex128
	for k, v := range c {
		sum += complex(v, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return sum
}

func companionRoots(a []float64) ([]complex128, error) {
	a = trimTrailingZeros(a)
	n := len(a) - 1
	if n < 1 {
		return nil, nil
	}

	companion := mat.NewDense(n, n, nil)
	for j := range n {
		companion.Set(0, j, -a[j+1]/a[0])
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, mat.ErrFailedEigen
	}
	return eig.Values(nil), nil
}

func convolve(x, y []float64) []float64 {
	out := make([]float64, len(x)+len(y)-1)
	for i, xv := range x {
		for j, yv := range y {
			out[i+j] += xv * yv
		}
	}
	return out
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func trimTrailingZeros(a []float64) []float64 {
	end := len(a)
	for end > 1 && a[end-1] == 0 {
		end--
	}
	return a[:end]
}
