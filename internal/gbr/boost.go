// Package gbr implements a small gradient-boosted regression tree ensemble
// with squared-error loss, k-fold grid search, and JSON persistence.
package gbr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Params are the ensemble hyperparameters.
type Params struct {
	Trees          int     `json:"trees"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
}

func (p Params) String() string {
	return fmt.Sprintf("trees=%d lr=%g depth=%d", p.Trees, p.LearningRate, p.MaxDepth)
}

func (p Params) validate() error {
	switch {
	case p.Trees <= 0:
		return fmt.Errorf("trees must be positive, got %d", p.Trees)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return fmt.Errorf("learning rate must be in (0, 1], got %g", p.LearningRate)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max depth must be positive, got %d", p.MaxDepth)
	}
	return nil
}

// Model is a fitted ensemble. It is immutable after Fit and safe for
// concurrent prediction.
type Model struct {
	Columns     []string  `json:"columns,omitempty"`
	Variant     string    `json:"variant,omitempty"`
	Params      Params    `json:"params"`
	Init        float64   `json:"init"`
	Trees       []Tree    `json:"trees"`
	Importances []float64 `json:"importances"`
	TrainedAt   time.Time `json:"trained_at"`
}

// ErrShape reports inconsistent training or prediction input dimensions.
var ErrShape = errors.New("shape mismatch")

// Fit trains an ensemble on rows x and targets y.
func Fit(x [][]float64, y []float64, p Params) (*Model, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShape, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrShape)
	}
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), width)
		}
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}

	m := &Model{
		Params:    p,
		Init:      stat.Mean(y, nil),
		Trees:     make([]Tree, 0, p.Trees),
		TrainedAt: time.Now().UTC(),
	}

	rows := make([]int, len(x))
	for i := range rows {
		rows[i] = i
	}
	sorted := presort(x, rows)

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m.Init
	}
	residual := make([]float64, len(y))
	b := newTreeBuilder(x, residual, p.MaxDepth, p.MinSamplesLeaf)

	for range p.Trees {
		floats.SubTo(residual, y, pred)
		t := b.grow(sorted)
		for i, row := range x {
			pred[i] += p.LearningRate * t.Predict(row)
		}
		m.Trees = append(m.Trees, t)
	}

	m.Importances = b.gain
	if total := floats.Sum(m.Importances); total > 0 {
		floats.Scale(1/total, m.Importances)
	}
	return m, nil
}

// NumFeatures returns the row width the model expects.
func (m *Model) NumFeatures() int {
	return len(m.Importances)
}

// Predict returns the raw ensemble output for one row.
func (m *Model) Predict(row []float64) (float64, error) {
	if len(row) != m.NumFeatures() {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShape, len(row), m.NumFeatures())
	}
	out := m.Init
	for i := range m.Trees {
		out += m.Params.LearningRate * m.Trees[i].Predict(row)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("non-finite prediction")
	}
	return out, nil
}

// PredictClipped predicts every row and bounds the results to [lo, hi].
func (m *Model) PredictClipped(x [][]float64, lo, hi float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		v, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = math.Max(lo, math.Min(hi, v))
	}
	return out, nil
}

// Importance is one column's share of the total split gain.
type Importance struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// RankedImportances returns importances in descending order, labeled with the
// model's column names when present.
func (m *Model) RankedImportances() []Importance {
	out := make([]Importance, len(m.Importances))
	for i, v := range m.Importances {
		name := fmt.Sprintf("f%d", i)
		if i < len(m.Columns) {
			name = m.Columns[i]
		}
		out[i] = Importance{Feature: name, Value: v}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	return out
}
