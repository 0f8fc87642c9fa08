package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/gradewizard/internal/model"
)

const runColumns = `id, created_at, variant, samples, trees, learning_rate, max_depth,
	cv_mae, test_mae, baseline_mae, model_path, model_sha256, importances`

// InsertTrainingRun stores a training run. A zero CreatedAt is set to now.
func (s *Store) InsertTrainingRun(r model.TrainingRun) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	imp, err := json.Marshal(r.Importances)
	if err != nil {
		return 0, fmt.Errorf("encode importances: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO training_runs (created_at, variant, samples, trees, learning_rate, max_depth,
			cv_mae, test_mae, baseline_mae, model_path, model_sha256, importances)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt, r.Variant, r.Samples, r.Trees, r.LearningRate, r.MaxDepth,
		r.CVMAE, r.TestMAE, r.BaselineMAE, r.ModelPath, r.ModelSHA256, string(imp),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListTrainingRuns returns all runs, newest first.
func (s *Store) ListTrainingRuns() ([]model.TrainingRun, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM training_runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.TrainingRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestTrainingRun returns the most recent run, or nil if there is none.
func (s *Store) LatestTrainingRun() (*model.TrainingRun, error) {
	row := s.db.QueryRow(`SELECT ` + runColumns + ` FROM training_runs ORDER BY id DESC LIMIT 1`)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.TrainingRun, error) {
	var r model.TrainingRun
	var imp string
	if err := sc.Scan(&r.ID, &r.CreatedAt, &r.Variant, &r.Samples, &r.Trees, &r.LearningRate, &r.MaxDepth,
		&r.CVMAE, &r.TestMAE, &r.BaselineMAE, &r.ModelPath, &r.ModelSHA256, &imp); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(imp), &r.Importances); err != nil {
		return r, fmt.Errorf("decode importances of run %d: %w", r.ID, err)
	}
	return r, nil
}
