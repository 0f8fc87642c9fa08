package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/gradewizard/internal/model"
)

// Export collects metadata, training history and the prediction log.
// A predictionLimit of zero or less exports every prediction.
func (s *Store) Export(predictionLimit int) (*model.Export, error) {
	meta, err := s.AllMetadata()
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	runs, err := s.ListTrainingRuns()
	if err != nil {
		return nil, fmt.Errorf("list training runs: %w", err)
	}
	preds, err := s.ListPredictions(predictionLimit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return &model.Export{
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		Metadata:     meta,
		TrainingRuns: runs,
		Predictions:  preds,
	}, nil
}
