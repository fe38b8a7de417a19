package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// LinearClassifier scores each class as w·x + b and predicts the best one.
// With a single coefficient row and two classes the sign of the score picks
// between them.
type LinearClassifier struct {
	coef      *mat.Dense
	intercept *mat.VecDense
	classes   []int
}

// NewLinearClassifier validates dimensions and builds the classifier
func NewLinearClassifier(coef [][]float64, intercept []float64, classes []int) (*LinearClassifier, error) {
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, modelError("classifier has no coefficients")
	}

	rows, cols := len(coef), len(coef[0])
	data := make([]float64, 0, rows*cols)
	for i, row := range coef {
		if len(row) != cols {
			return nil, modelError("coefficient row %d has %d values, want %d", i, len(row), cols)
		}
		if !common.AllFinite(row) {
			return nil, modelError("coefficient row %d is not finite", i)
		}
		data = append(data, row...)
	}

	if len(intercept) != rows {
		return nil, modelError("intercept has %d values, want %d", len(intercept), rows)
	}

	switch {
	case rows == 1 && len(classes) != 2:
		return nil, modelError("a single coefficient row needs exactly 2 classes, got %d", len(classes))
	case rows > 1 && len(classes) != rows:
		return nil, modelError("%d classes for %d coefficient rows", len(classes), rows)
	}

	return &LinearClassifier{
		coef:      mat.NewDense(rows, cols, data),
		intercept: mat.NewVecDense(rows, append([]float64(nil), intercept...)),
		classes:   append([]int(nil), classes...),
	}, nil
}

// Dim returns the number of input features
func (c *LinearClassifier) Dim() int {
	_, cols := c.coef.Dims()
	return cols
}

// Classes returns the class labels
func (c *LinearClassifier) Classes() []int {
	return append([]int(nil), c.classes...)
}

// DecisionFunction returns the raw score per coefficient row
func (c *LinearClassifier) DecisionFunction(x []float64) ([]float64, error) {
	if len(x) != c.Dim() {
		return nil, modelError("classifier expects %d features, got %d", c.Dim(), len(x))
	}

	rows, _ := c.coef.Dims()
	var scores mat.VecDense
	scores.MulVec(c.coef, mat.NewVecDense(len(x), append([]float64(nil), x...)))
	scores.AddVec(&scores, c.intercept)

	out := make([]float64, rows)
	for i := range out {
		out[i] = scores.AtVec(i)
	}
	return out, nil
}

// Predict returns the label with the highest score
func (c *LinearClassifier) Predict(x []float64) (int, error) {
	scores, err := c.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if !common.AllFinite(scores) {
		return 0, modelError("decision function is not finite")
	}

	if len(scores) == 1 {
		if scores[0] > 0 {
			return c.classes[1], nil
		}
		return c.classes[0], nil
	}
	return c.classes[floats.MaxIdx(scores)], nil
}
