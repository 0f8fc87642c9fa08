package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pavelanni/gradewizard/internal/features"
	"github.com/pavelanni/gradewizard/internal/model"
)

// GradeColumn is the CSV header of the target.
const GradeColumn = "grade"

// Dataset is an ordered training table.
type Dataset struct {
	Variant string
	Samples []Sample
}

// Build generates exactly n independent samples.
func Build(g *Generator, n int) (*Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample count must be positive, got %d", model.ErrInvalidInput, n)
	}
	ds := &Dataset{
		Variant: g.Variant().Name,
		Samples: make([]Sample, n),
	}
	for i := range ds.Samples {
		ds.Samples[i] = g.Sample()
	}
	return ds, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Matrix returns the feature rows in column order and the targets.
func (d *Dataset) Matrix() ([][]float64, []float64, error) {
	x := make([][]float64, len(d.Samples))
	y := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		row, err := s.Features.Row()
		if err != nil {
			return nil, nil, fmt.Errorf("sample %d: %w", i, err)
		}
		x[i] = row
		y[i] = s.Grade
	}
	return x, y, nil
}

// WriteCSV writes the dataset with a header of the feature columns plus grade.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, features.Columns...), GradeColumn)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for i, s := range d.Samples {
		row, err := s.Features.Row()
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		rec[len(rec)-1] = strconv.FormatFloat(s.Grade, 'f', -1, 64)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
