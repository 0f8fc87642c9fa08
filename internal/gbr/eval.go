package gbr

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MAE is the mean absolute error between targets and predictions.
func MAE(want, got []float64) float64 {
	if len(want) == 0 {
		return 0
	}
	diff := make([]float64, len(want))
	floats.SubTo(diff, want, got)
	for i, d := range diff {
		diff[i] = math.Abs(d)
	}
	return stat.Mean(diff, nil)
}

// BaselineMAE is the MAE of always predicting the mean of train on test.
func BaselineMAE(train, test []float64) float64 {
	mean := stat.Mean(train, nil)
	pred := make([]float64, len(test))
	for i := range pred {
		pred[i] = mean
	}
	return MAE(test, pred)
}

// Split holds a shuffled train/test partition.
type Split struct {
	TrainX [][]float64
	TrainY []float64
	TestX  [][]float64
	TestY  []float64
}

// TrainTestSplit shuffles rows with rng and holds out testFraction of them.
// At least one row lands on each side.
func TrainTestSplit(x [][]float64, y []float64, testFraction float64, rng *rand.Rand) Split {
	perm := rng.Perm(len(x))
	nTest := int(math.Round(float64(len(x)) * testFraction))
	nTest = max(1, min(nTest, len(x)-1))

	var s Split
	for k, i := range perm {
		if k < nTest {
			s.TestX = append(s.TestX, x[i])
			s.TestY = append(s.TestY, y[i])
		} else {
			s.TrainX = append(s.TrainX, x[i])
			s.TrainY = append(s.TrainY, y[i])
		}
	}
	return s
}

// fold returns the k-th of n contiguous folds as (train, validation) index sets.
func fold(rows, k, n int) (train, valid []int) {
	lo := rows * k / n
	hi := rows * (k + 1) / n
	for i := 0; i < rows; i++ {
		if i >= lo && i < hi {
			valid = append(valid, i)
		} else {
			train = append(train, i)
		}
	}
	return train, valid
}

func pick[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for j, i := range idx {
		out[j] = src[i]
	}
	return out
}
