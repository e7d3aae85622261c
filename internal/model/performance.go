package model

import "time"

// ModelScore holds accuracy metrics for one sub-model, computed by the
// external evaluation job.
type ModelScore struct {
	Accuracy float64
	MAE      float64
	MAPE     float64
	Samples  int
}

// ModelPerformance is the latest externally computed per-model performance
// document. Absent entirely when the evaluation job has not run yet.
type ModelPerformance struct {
	UpdatedAt  time.Time
	WindowDays int
	Models     map[string]ModelScore
}
