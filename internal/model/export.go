package model

// Export is the top-level JSON structure written by the export command.
type Export struct {
	GeneratedAt  string            `json:"generated_at"`
	Metadata     map[string]string `json:"metadata"`
	TrainingRuns []TrainingRun     `json:"training_runs"`
	Predictions  []PredictionLog   `json:"predictions"`
}
