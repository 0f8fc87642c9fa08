package predict

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/pavelanni/gradewizard/internal/features"
	"github.com/pavelanni/gradewizard/internal/gbr"
	"github.com/pavelanni/gradewizard/internal/synth"
)

// Source tells where the active model came from.
type Source string

const (
	SourceArtifact Source = "artifact"
	SourceBackup   Source = "backup"
	SourceNoise    Source = "noise"
)

// Loaded is a model ready for serving.
type Loaded struct {
	Model    *gbr.Model
	Variant  synth.Variant
	Source   Source
	Path     string
	LoadedAt time.Time
}

const (
	noiseRows = 1000
	noiseSeed = 42
)

// LoadModel loads the artifact at path, then its backup, and finally falls
// back to a model fitted on uniform noise. It never returns nil.
func LoadModel(path string) *Loaded {
	for _, c := range []struct {
		path string
		src  Source
	}{
		{path, SourceArtifact},
		{gbr.BackupPath(path), SourceBackup},
	} {
		l, err := loadArtifact(c.path)
		if err == nil {
			l.Source = c.src
			slog.Info("model loaded", "path", c.path, "source", c.src, "variant", l.Variant.Name, "trees", len(l.Model.Trees))
			return l
		}
		slog.Warn("model artifact unusable", "path", c.path, "error", err)
	}

	m, err := NoiseModel(noiseSeed)
	if err != nil {
		// Fit only fails on malformed input, which NoiseModel never builds.
		panic(fmt.Sprintf("fitting noise model: %v", err))
	}
	slog.Error("no trained model available, serving a noise model; predictions are meaningless", "path", path)
	return &Loaded{
		Model:    m,
		Variant:  synth.Default,
		Source:   SourceNoise,
		Path:     path,
		LoadedAt: time.Now(),
	}
}

func loadArtifact(path string) (*Loaded, error) {
	m, err := gbr.Load(path)
	if err != nil {
		return nil, err
	}
	if m.NumFeatures() != len(features.Columns) {
		return nil, fmt.Errorf("model expects %d features, schema has %d", m.NumFeatures(), len(features.Columns))
	}
	if len(m.Columns) > 0 && !slices.Equal(m.Columns, features.Columns) {
		return nil, fmt.Errorf("model columns %v do not match schema", m.Columns)
	}
	v, err := synth.Lookup(m.Variant)
	if err != nil {
		return nil, err
	}
	return &Loaded{Model: m, Variant: v, Path: path, LoadedAt: time.Now()}, nil
}

// NoiseModel fits a small ensemble on uniform random features with uniform
// targets in [0, 100].
func NoiseModel(seed uint64) (*gbr.Model, error) {
	rng := rand.New(rand.NewPCG(seed, seed))
	x := make([][]float64, noiseRows)
	y := make([]float64, noiseRows)
	for i := range x {
		x[i] = make([]float64, len(features.Columns))
		for j := range x[i] {
			x[i][j] = rng.Float64()
		}
		y[i] = rng.Float64() * 100
	}
	m, err := gbr.Fit(x, y, gbr.Params{Trees: 50, LearningRate: 0.1, MaxDepth: 5})
	if err != nil {
		return nil, err
	}
	m.Columns = append([]string(nil), features.Columns...)
	m.Variant = synth.Default.Name
	return m, nil
}

// Holder publishes the active model to concurrent readers.
type Holder struct {
	p atomic.Pointer[Loaded]
}

// NewHolder returns a holder serving l.
func NewHolder(l *Loaded) *Holder {
	h := &Holder{}
	h.p.Store(l)
	return h
}

// Load returns the active model.
func (h *Holder) Load() *Loaded {
	return h.p.Load()
}

// Reload runs the fallback chain for path and swaps in the result.
func (h *Holder) Reload(path string) *Loaded {
	l := LoadModel(path)
	h.p.Store(l)
	return l
}
