package gbr

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		a, b := rng.Float64()*10, rng.Float64()*10
		x[i] = []float64{a, b, rng.Float64()}
		y[i] = 5*a + 2*b
	}
	return x, y
}

func TestTreeFitsStep(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{0, 0, 0, 50, 50, 50}

	m, err := Fit(x, y, Params{Trees: 1, LearningRate: 1, MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, m.Trees, 1)

	root := m.Trees[0].Nodes[0]
	assert.Equal(t, 0, root.Feature)
	assert.InDelta(t, 6.5, root.Threshold, 1e-9)

	for i, row := range x {
		got, err := m.Predict(row)
		require.NoError(t, err)
		assert.InDelta(t, y[i], got, 1e-9)
	}
	assert.InDelta(t, 1.0, m.Importances[0], 1e-9)
}

func TestFitConstantTargetMakesLeaves(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []float64{7, 7, 7}

	m, err := Fit(x, y, Params{Trees: 3, LearningRate: 0.5, MaxDepth: 3})
	require.NoError(t, err)
	for _, tr := range m.Trees {
		assert.Len(t, tr.Nodes, 1)
	}
	got, err := m.Predict([]float64{100, 100})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, got, 1e-9)
	assert.Equal(t, []float64{0, 0}, m.Importances)
}

func TestFitReducesError(t *testing.T) {
	x, y := linearData(600, 3)
	m, err := Fit(x, y, Params{Trees: 100, LearningRate: 0.1, MaxDepth: 4})
	require.NoError(t, err)

	pred, err := m.PredictClipped(x, -1e9, 1e9)
	require.NoError(t, err)
	assert.Less(t, MAE(y, pred), BaselineMAE(y, y)/4)

	ranked := m.RankedImportances()
	require.Len(t, ranked, 3)
	assert.Equal(t, "f0", ranked[0].Feature)
	assert.Equal(t, "f2", ranked[2].Feature)
}

func TestFitRejectsBadInput(t *testing.T) {
	good := Params{Trees: 1, LearningRate: 0.1, MaxDepth: 1}
	tests := []struct {
		name   string
		x      [][]float64
		y      []float64
		p      Params
		wantSh bool
	}{
		{"no rows", nil, nil, good, true},
		{"target mismatch", [][]float64{{1}}, []float64{1, 2}, good, true},
		{"ragged", [][]float64{{1, 2}, {1}}, []float64{1, 2}, good, true},
		{"zero width", [][]float64{{}}, []float64{1}, good, true},
		{"zero trees", [][]float64{{1}}, []float64{1}, Params{LearningRate: 0.1, MaxDepth: 1}, false},
		{"bad rate", [][]float64{{1}}, []float64{1}, Params{Trees: 1, LearningRate: 2, MaxDepth: 1}, false},
		{"zero depth", [][]float64{{1}}, []float64{1}, Params{Trees: 1, LearningRate: 0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.x, tt.y, tt.p)
			require.Error(t, err)
			assert.Equal(t, tt.wantSh, errors.Is(err, ErrShape))
		})
	}
}

func TestPredictWrongWidth(t *testing.T) {
	m, err := Fit([][]float64{{1, 2}, {3, 4}}, []float64{1, 2}, Params{Trees: 1, LearningRate: 0.1, MaxDepth: 1})
	require.NoError(t, err)
	_, err = m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestSaveLoad(t *testing.T) {
	x, y := linearData(200, 9)
	m, err := Fit(x, y, Params{Trees: 20, LearningRate: 0.1, MaxDepth: 3})
	require.NoError(t, err)
	m.Columns = []string{"a", "b", "c"}
	m.Variant = "ordinal3"

	path := filepath.Join(t.TempDir(), "models", "grade.json")
	require.NoError(t, m.Save(path, BackupPath(path)))

	for _, p := range []string{path, BackupPath(path)} {
		got, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, "ordinal3", got.Variant)
		assert.Equal(t, m.Columns, got.Columns)
		for _, row := range x[:20] {
			want, _ := m.Predict(row)
			have, err := got.Predict(row)
			require.NoError(t, err)
			assert.InDelta(t, want, have, 1e-9)
		}
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		m    Model
	}{
		{"no trees", Model{Importances: []float64{1}}},
		{"no importances", Model{Trees: []Tree{{Nodes: []Node{{Left: leaf, Right: leaf}}}}}},
		{"bad child", Model{
			Importances: []float64{1},
			Trees:       []Tree{{Nodes: []Node{{Feature: 0, Left: 5, Right: 6}}}},
		}},
		{"bad feature", Model{
			Importances: []float64{1},
			Trees: []Tree{{Nodes: []Node{
				{Feature: 3, Left: 1, Right: 2},
				{Left: leaf, Right: leaf},
				{Left: leaf, Right: leaf},
			}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, tt.m.Save(path))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
