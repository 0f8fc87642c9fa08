package store

import (
	"time"

	"github.com/pavelanni/gradewizard/internal/model"
)

// InsertPrediction logs a served prediction. A zero CreatedAt is set to now.
func (s *Store) InsertPrediction(p model.PredictionLog) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO predictions (created_at, features, predicted_grade, model_source) VALUES (?, ?, ?, ?)`,
		p.CreatedAt, p.Features, p.PredictedGrade, p.ModelSource,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPredictions returns up to limit predictions, newest first. A limit of
// zero or less returns all of them.
func (s *Store) ListPredictions(limit int) ([]model.PredictionLog, error) {
	query := `SELECT id, created_at, features, predicted_grade, model_source FROM predictions ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PredictionLog
	for rows.Next() {
		var p model.PredictionLog
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.Features, &p.PredictedGrade, &p.ModelSource); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PredictionCount returns the number of logged predictions.
func (s *Store) PredictionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM predictions`).Scan(&count)
	return count, err
}
