package gbr

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// TrainConfig controls the full training pipeline.
type TrainConfig struct {
	Grid         Grid
	Folds        int
	TestFraction float64
	Seed         uint64
	Workers      int
}

// DefaultTrainConfig returns the 80/20, 3-fold configuration over DefaultGrid.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Grid:         DefaultGrid,
		Folds:        3,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// Report summarizes one training run.
type Report struct {
	Best        CVResult      `json:"best"`
	Results     []CVResult    `json:"results"`
	TestMAE     float64       `json:"test_mae"`
	BaselineMAE float64       `json:"baseline_mae"`
	TrainRows   int           `json:"train_rows"`
	TestRows    int           `json:"test_rows"`
	Importances []Importance  `json:"importances"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Train splits the data, grid-searches on the training part, refits the best
// candidate on the whole training part and scores it on the held-out part.
// Columns are attached to the returned model.
func Train(ctx context.Context, x [][]float64, y []float64, columns []string, cfg TrainConfig) (*Model, *Report, error) {
	start := time.Now()
	if len(x) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 rows, got %d", ErrShape, len(x))
	}
	if len(columns) > 0 && len(columns) != len(x[0]) {
		return nil, nil, fmt.Errorf("%w: %d columns for %d features", ErrShape, len(columns), len(x[0]))
	}
	if cfg.Folds == 0 {
		cfg.Folds = 3
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	split := TrainTestSplit(x, y, cfg.TestFraction, rng)
	slog.Info("split dataset", "train", len(split.TrainX), "test", len(split.TestX))

	best, results, err := GridSearch(ctx, split.TrainX, split.TrainY, cfg.Grid, cfg.Folds, cfg.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("grid search: %w", err)
	}
	for _, r := range results {
		slog.Debug("cv result", "params", r.Params.String(), "mae", r.MAE)
	}
	slog.Info("best parameters", "params", best.Params.String(), "cv_mae", best.MAE)

	m, err := Fit(split.TrainX, split.TrainY, best.Params)
	if err != nil {
		return nil, nil, fmt.Errorf("refit: %w", err)
	}
	m.Columns = append([]string(nil), columns...)

	pred, err := m.PredictClipped(split.TestX, 0, 100)
	if err != nil {
		return nil, nil, fmt.Errorf("score test split: %w", err)
	}

	rep := &Report{
		Best:        best,
		Results:     results,
		TestMAE:     MAE(split.TestY, pred),
		BaselineMAE: BaselineMAE(split.TrainY, split.TestY),
		TrainRows:   len(split.TrainX),
		TestRows:    len(split.TestX),
		Importances: m.RankedImportances(),
		Elapsed:     time.Since(start),
	}
	return m, rep, nil
}
