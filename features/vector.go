package features

import (
	"fmt"
	"slices"
	"strings"
)

// Canonical feature keys, in the order the downstream model consumes them
const (
	KeyAlpha          = "E_alpha"
	KeyBeta           = "E_beta"
	KeyTheta          = "E_theta"
	KeyDelta          = "E_delta"
	KeyAlphaBetaRatio = "alpha_beta_ratio"
	KeyPeakFrequency  = "peak_frequency"
	KeyCentroid       = "spectral_centroid"
	KeySlope          = "spectral_slope"
)

// FeatureNames is the fixed key order of a default Vector. It is a contract
// with the trained model: never reorder or rename.
var FeatureNames = []string{
	KeyAlpha,
	KeyBeta,
	KeyTheta,
	KeyDelta,
	KeyAlphaBetaRatio,
	KeyPeakFrequency,
	KeyCentroid,
	KeySlope,
}

// Feature is a single named scalar
type Feature struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Vector is an ordered name -> value mapping built fresh for every window
type Vector struct {
	names  []string
	values []float64
}

// NewVector builds a vector from features in the given order. Names must be unique.
func NewVector(features ...Feature) (Vector, error) {
	v := Vector{
		names:  make([]string, 0, len(features)),
		values: make([]float64, 0, len(features)),
	}
	for _, f := range features {
		if slices.Contains(v.names, f.Name) {
			return Vector{}, fmt.Errorf("duplicate feature %q", f.Name)
		}
		v.names = append(v.names, f.Name)
		v.values = append(v.values, f.Value)
	}
	return v, nil
}

// Len returns the number of features
func (v Vector) Len() int {
	return len(v.names)
}

// Names returns a copy of the feature keys in order
func (v Vector) Names() []string {
	return slices.Clone(v.names)
}

// Values returns a copy of the feature values in key order
func (v Vector) Values() []float64 {
	return slices.Clone(v.values)
}

// Get returns the value for name
func (v Vector) Get(name string) (float64, bool) {
	i := slices.Index(v.names, name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Map returns the features as an unordered map
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v.names))
	for i, name := range v.names {
		m[name] = v.values[i]
	}
	return m
}

// Features returns the vector as an ordered list
func (v Vector) Features() []Feature {
	out := make([]Feature, len(v.names))
	for i := range v.names {
		out[i] = Feature{Name: v.names[i], Value: v.values[i]}
	}
	return out
}

// HasLayout reports whether the vector's keys equal names, in order
func (v Vector) HasLayout(names []string) bool {
	return slices.Equal(v.names, names)
}

func (v Vector) String() string {
	parts := make([]string, len(v.names))
	for i, name := range v.names {
		parts[i] = fmt.Sprintf("%s=%.6g", name, v.values[i])
	}
	return strings.Join(parts, " ")
}
