package gbr

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Grid is the hyperparameter search space.
type Grid struct {
	Trees         []int     `json:"trees"`
	LearningRates []float64 `json:"learning_rates"`
	MaxDepths     []int     `json:"max_depths"`
}

// DefaultGrid is the search space used by the train command.
var DefaultGrid = Grid{
	Trees:         []int{100, 200},
	LearningRates: []float64{0.01, 0.05},
	MaxDepths:     []int{5, 7},
}

// Candidates expands the grid in trees, learning rate, depth order.
func (g Grid) Candidates() []Params {
	var out []Params
	for _, t := range g.Trees {
		for _, lr := range g.LearningRates {
			for _, d := range g.MaxDepths {
				out = append(out, Params{Trees: t, LearningRate: lr, MaxDepth: d})
			}
		}
	}
	return out
}

// CVResult is the mean validation MAE of one candidate across folds.
type CVResult struct {
	Params Params  `json:"params"`
	MAE    float64 `json:"mae"`
}

// GridSearch scores every candidate with k-fold cross-validation and returns
// the one with the lowest mean MAE along with all results in candidate order.
// Candidates run concurrently, at most workers at a time (NumCPU when <= 0).
// Ties keep the earlier candidate.
func GridSearch(ctx context.Context, x [][]float64, y []float64, grid Grid, folds, workers int) (CVResult, []CVResult, error) {
	cands := grid.Candidates()
	if len(cands) == 0 {
		return CVResult{}, nil, fmt.Errorf("empty parameter grid")
	}
	if folds < 2 {
		return CVResult{}, nil, fmt.Errorf("need at least 2 folds, got %d", folds)
	}
	if len(x) < folds {
		return CVResult{}, nil, fmt.Errorf("%w: %d rows for %d folds", ErrShape, len(x), folds)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]CVResult, len(cands))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range cands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mae, err := crossValidate(x, y, p, folds)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", p, err)
			}
			results[i] = CVResult{Params: p, MAE: mae}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CVResult{}, nil, err
	}

	best := CVResult{MAE: math.Inf(1)}
	for _, r := range results {
		if r.MAE < best.MAE {
			best = r
		}
	}
	return best, results, nil
}

func crossValidate(x [][]float64, y []float64, p Params, folds int) (float64, error) {
	total := 0.0
	for k := range folds {
		trainIdx, validIdx := fold(len(x), k, folds)
		m, err := Fit(pick(x, trainIdx), pick(y, trainIdx), p)
		if err != nil {
			return 0, err
		}
		pred, err := m.PredictClipped(pick(x, validIdx), 0, 100)
		if err != nil {
			return 0, err
		}
		total += MAE(pick(y, validIdx), pred)
	}
	return total / float64(folds), nil
}
