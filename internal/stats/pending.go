package stats

import (
	"time"

	"prediction-dashboard/internal/model"
)

// PendingDue returns the unvalidated records whose target time has already
// passed, i.e. those due for external validation. Records with an
// unparseable target time are never claimed as due.
func PendingDue(records []model.Prediction, now time.Time) []model.Prediction {
	due := make([]model.Prediction, 0, len(records))
	for _, p := range records {
		if p.Validated {
			continue
		}
		if p.TargetTime.IsZero() {
			continue
		}
		if p.TargetTime.After(now) {
			continue
		}
		due = append(due, p)
	}
	return due
}
