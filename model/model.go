package model

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
	"github.com/RyanBlaney/sonido-eeg/features"
)

// Scaler standardizes a feature vector before classification
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier maps a scaled feature vector to a class label
type Classifier interface {
	Predict(x []float64) (int, error)
}

// Document is the portable on-disk model: a standard scaler followed by a
// linear classifier, as exported from a trained pipeline. YAML and JSON
// encodings are both accepted.
type Document struct {
	Name       string           `yaml:"name" json:"name"`
	Features   []string         `yaml:"features" json:"features"`
	Scaler     ScalerParams     `yaml:"scaler" json:"scaler"`
	Classifier ClassifierParams `yaml:"classifier" json:"classifier"`
}

// ScalerParams holds per-feature mean and scale
type ScalerParams struct {
	Mean  []float64 `yaml:"mean" json:"mean"`
	Scale []float64 `yaml:"scale" json:"scale"`
}

// ClassifierParams holds a linear decision function: one coefficient row
// per class (or a single row for a binary model)
type ClassifierParams struct {
	Classes   []int       `yaml:"classes" json:"classes"`
	Coef      [][]float64 `yaml:"coef" json:"coef"`
	Intercept []float64   `yaml:"intercept" json:"intercept"`
}

// Model bundles the scaler and classifier with the feature layout they were
// trained on
type Model struct {
	name       string
	features   []string
	scaler     *StandardScaler
	classifier *LinearClassifier
}

// Load reads a model document from path
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewPipelineError(common.KindModel, "model_load", "cannot read "+path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON model document
func Parse(data []byte) (*Model, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.NewPipelineError(common.KindModel, "model_load", "cannot decode model document", err)
	}
	return FromDocument(&doc)
}

// FromDocument validates doc and builds the model
func FromDocument(doc *Document) (*Model, error) {
	names := doc.Features
	if len(names) == 0 {
		names = features.FeatureNames
	}

	scaler, err := NewStandardScaler(doc.Scaler.Mean, doc.Scaler.Scale)
	if err != nil {
		return nil, err
	}
	if scaler.Dim() != len(names) {
		return nil, modelError("scaler has %d features, model declares %d", scaler.Dim(), len(names))
	}

	classifier, err := NewLinearClassifier(doc.Classifier.Coef, doc.Classifier.Intercept, doc.Classifier.Classes)
	if err != nil {
		return nil, err
	}
	if classifier.Dim() != len(names) {
		return nil, modelError("classifier has %d features, model declares %d", classifier.Dim(), len(names))
	}

	return &Model{
		name:       doc.Name,
		features:   slices.Clone(names),
		scaler:     scaler,
		classifier: classifier,
	}, nil
}

// Name returns the model's label
func (m *Model) Name() string {
	return m.name
}

// Features returns the feature order the model expects
func (m *Model) Features() []string {
	return slices.Clone(m.features)
}

// Classes returns the labels the classifier can predict
func (m *Model) Classes() []int {
	return m.classifier.Classes()
}

// Transform applies the scaler
func (m *Model) Transform(x []float64) ([]float64, error) {
	return m.scaler.Transform(x)
}

// Predict applies the classifier to an already scaled vector
func (m *Model) Predict(x []float64) (int, error) {
	return m.classifier.Predict(x)
}

// Classify checks the vector layout, scales it and predicts a label
func (m *Model) Classify(v features.Vector) (int, error) {
	if !v.HasLayout(m.features) {
		return 0, modelError("feature layout %v does not match model layout %v", v.Names(), m.features)
	}

	scaled, err := m.Transform(v.Values())
	if err != nil {
		return 0, err
	}
	return m.Predict(scaled)
}

func modelError(format string, args ...any) error {
	return common.NewPipelineError(common.KindModel, "model", fmt.Sprintf(format, args...), nil)
}
