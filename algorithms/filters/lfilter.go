package filters

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// paddedCoefficients returns b and a zero-padded to a common length
func (s stage) paddedCoefficients() ([]float64, []float64) {
	n := max(len(s.a), len(s.b))
	b := make([]float64, n)
	a := make([]float64, n)
	copy(b, s.b)
	copy(a, s.a)
	return b, a
}

// apply runs the stage causally over input using the transposed direct
// form II structure, starting from the delay line state (nil for zeros)
func (s stage) apply(input, state []float64) []float64 {
	b, a := s.paddedCoefficients()
	n := len(b)

	z := make([]float64, n-1)
	copy(z, state)

	output := make([]float64, len(input))
	for i, x := range input {
		y := b[0] * x
		if n > 1 {
			y += z[0]
			for k := 0; k < n-2; k++ {
				z[k] = b[k+1]*x + z[k+1] - a[k+1]*y
			}
			z[n-2] = b[n-1]*x - a[n-1]*y
		}
		output[i] = y
	}

	return output
}

// steadyState solves (I - C^T) zi = b[1:] - a[1:]*b[0], where C is the
// companion matrix of a: the delay line left behind by a unit step.
func (s stage) steadyState() ([]float64, error) {
	b, a := s.paddedCoefficients()
	n := len(b) - 1
	if n == 0 {
		return []float64{}, nil
	}

	m := mat.NewDense(n, n, nil)
	for i := range n {
		m.Set(i, i, 1)
	}
	for i := range n {
		m.Set(i, 0, m.At(i, 0)+a[i+1])
		if i+1 < n {
			m.Set(i, i+1, m.At(i, i+1)-1)
		}
	}

	rhs := mat.NewVecDense(n, nil)
	for i := range n {
		rhs.SetVec(i, b[i+1]-a[i+1]*b[0])
	}

	var zi mat.VecDense
	if err := zi.SolveVec(m, rhs); err != nil {
		// a finite Condition is a warning; the solution is still returned
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, err
		}
	}

	out := make([]float64, n)
	for i := range n {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// dcGain returns H(1) = sum(b)/sum(a)
func (s stage) dcGain() float64 {
	var num, den float64
	for _, v := range s.b {
		num += v
	}
	for _, v := range s.a {
		den += v
	}
	return num / den
}

// solveInitialConditions fills each stage's zi so that a unit step entering
// the cascade passes through every stage without a transient. A stage sees
// the step scaled by the DC gain of the stages before it.
func (f *FilterSpec) solveInitialConditions() error {
	scale := 1.0
	for i := range f.stages {
		zi, err := f.stages[i].steadyState()
		if err != nil {
			return common.NewPipelineError(common.KindInvalidParameter, "filter_design",
				"cannot compute steady-state initial conditions for "+f.name, err)
		}
		for j := range zi {
			zi[j] *= scale
		}
		if !common.AllFinite(zi) {
			return common.InvalidParameter("filter_design",
				"%s: stage %d has no finite steady state", f.name, i)
		}
		f.stages[i].zi = zi
		scale *= f.stages[i].dcGain()
	}
	return nil
}

// Apply runs the cascade causally over input from zero initial conditions.
// input is not modified.
func (f FilterSpec) Apply(input []float64) []float64 {
	return f.ApplyWithState(input, nil)
}

// ApplyWithState runs the cascade causally, starting stage i from state[i].
// A nil state, or a nil entry, means zero initial conditions.
func (f FilterSpec) ApplyWithState(input []float64, state [][]float64) []float64 {
	if len(f.stages) == 0 {
		return clone(input)
	}

	out := input
	for i, s := range f.stages {
		var zi []float64
		if i < len(state) {
			zi = state[i]
		}
		out = s.apply(out, zi)
	}
	return out
}

// SteadyStateInitial returns the per-stage delay lines for a unit step
// input; scale them by the first sample to start a signal without a
// transient
func (f FilterSpec) SteadyStateInitial() [][]float64 {
	return f.scaledState(1)
}

func (f FilterSpec) scaledState(x0 float64) [][]float64 {
	state := make([][]float64, len(f.stages))
	for i, s := range f.stages {
		state[i] = make([]float64, len(s.zi))
		for j, v := range s.zi {
			state[i][j] = v * x0
		}
	}
	return state
}
