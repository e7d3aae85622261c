package model

import "time"

// Heartbeat is the periodic liveness record written by the external
// prediction process. All resource metrics and counters are optional; a
// writer that does not report them leaves the pointers nil.
type Heartbeat struct {
	Status   string
	LastSeen time.Time // zero when the source timestamp was unparseable

	UptimeSeconds *float64
	MemoryMB      *float64
	CPUPercent    *float64

	HeartbeatCount       *int64
	PredictionsSucceeded *int64
	PredictionsFailed    *int64
}
