package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/features"
)

func vectorOf(t *testing.T, values ...float64) features.Vector {
	t.Helper()
	require.Len(t, values, len(features.FeatureNames))
	list := make([]features.Feature, len(values))
	for i, v := range values {
		list[i] = features.Feature{Name: features.FeatureNames[i], Value: v}
	}
	v, err := features.NewVector(list...)
	require.NoError(t, err)
	return v
}

func TestLoadYAMLModel(t *testing.T) {
	m, err := Load("testdata/model.yaml")
	require.NoError(t, err)

	assert.Equal(t, "eeg-direction-demo", m.Name())
	assert.Equal(t, features.FeatureNames, m.Features())
	assert.Equal(t, []int{0, 1, 2, 3}, m.Classes())

	// Strong alpha and a high ratio score class 3
	label, err := m.Classify(vectorOf(t, 0.6, 0.1, 0.05, 0.05, 6.0, 10, 12, -1.5))
	require.NoError(t, err)
	assert.Equal(t, 3, label)
	assert.Equal(t, ActionFront, ActionFor(label))

	// Weak alpha and a low ratio score class 0
	label, err = m.Classify(vectorOf(t, 0.0, 0.1, 0.05, 0.05, 0.0, 10, 12, -1.5))
	require.NoError(t, err)
	assert.Equal(t, 0, label)
	assert.Equal(t, ActionStop, ActionFor(label))
}

func TestParseJSONModel(t *testing.T) {
	doc := `{
		"name": "binary",
		"features": ["a", "b"],
		"scaler": {"mean": [1, 2], "scale": [2, 0]},
		"classifier": {"classes": [0, 3], "coef": [[1, 1]], "intercept": [0]}
	}`
	m, err := Parse([]byte(doc))
	require.NoError(t, err)

	scaled, err := m.Transform([]float64{3, 5})
	require.NoError(t, err)
	// Zero scale is treated as 1
	assert.Equal(t, []float64{1, 3}, scaled)

	label, err := m.Predict(scaled)
	require.NoError(t, err)
	assert.Equal(t, 3, label)

	label, err = m.Predict([]float64{-1, -1})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestClassifyRejectsWrongLayout(t *testing.T) {
	m, err := Load("testdata/model.yaml")
	require.NoError(t, err)

	v, err := features.NewVector(features.Feature{Name: "E_beta", Value: 1})
	require.NoError(t, err)

	_, err = m.Classify(v)
	assert.ErrorIs(t, err, common.ErrModel)
}

func TestModelValidation(t *testing.T) {
	cases := map[string]string{
		"scaler length":   `{"features": ["a"], "scaler": {"mean": [0, 0], "scale": [1]}, "classifier": {"classes": [0, 1], "coef": [[1]], "intercept": [0]}}`,
		"feature count":   `{"features": ["a", "b"], "scaler": {"mean": [0], "scale": [1]}, "classifier": {"classes": [0, 1], "coef": [[1]], "intercept": [0]}}`,
		"ragged coef":     `{"features": ["a", "b"], "scaler": {"mean": [0, 0], "scale": [1, 1]}, "classifier": {"classes": [0, 1], "coef": [[1, 1], [1]], "intercept": [0, 0]}}`,
		"intercept":       `{"features": ["a"], "scaler": {"mean": [0], "scale": [1]}, "classifier": {"classes": [0, 1], "coef": [[1]], "intercept": []}}`,
		"single row":      `{"features": ["a"], "scaler": {"mean": [0], "scale": [1]}, "classifier": {"classes": [7], "coef": [[1]], "intercept": [0]}}`,
		"class count":     `{"features": ["a"], "scaler": {"mean": [0], "scale": [1]}, "classifier": {"classes": [0, 1, 2], "coef": [[1], [2]], "intercept": [0, 0]}}`,
		"no coefficients": `{"features": ["a"], "scaler": {"mean": [0], "scale": [1]}, "classifier": {"classes": [0]}}`,
		"not a document":  `[1, 2, 3]`,
	}

	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, common.ErrModel, name)
	}

	_, err := Load("testdata/missing.yaml")
	assert.ErrorIs(t, err, common.ErrModel)
}

func TestSingleRowClassifierNeedsTwoClasses(t *testing.T) {
	_, err := NewLinearClassifier([][]float64{{1, 0}}, []float64{0}, []int{7})
	assert.ErrorIs(t, err, common.ErrModel)

	_, err = NewLinearClassifier([][]float64{{1, 0}}, []float64{0}, []int{4, 5, 6})
	assert.ErrorIs(t, err, common.ErrModel)

	c, err := NewLinearClassifier([][]float64{{1, 0}}, []float64{0}, []int{4, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 9}, c.Classes())

	label, err := c.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 9, label)
	label, err = c.Predict([]float64{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, label)
}

func TestScalerDimensionCheck(t *testing.T) {
	s, err := NewStandardScaler([]float64{0, 0}, []float64{1, 1})
	require.NoError(t, err)

	_, err = s.Transform([]float64{1})
	assert.ErrorIs(t, err, common.ErrModel)
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, ActionStop, ActionFor(0))
	assert.Equal(t, ActionLeft, ActionFor(1))
	assert.Equal(t, ActionLeft, ActionFor(2))
	assert.Equal(t, ActionFront, ActionFor(3))
	assert.Equal(t, ActionUnknown, ActionFor(7))
}
