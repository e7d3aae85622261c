package model

import "time"

// Status is the derived liveness classification of the prediction process.
type Status string

const (
	StatusOnline   Status = "online"
	StatusDelayed  Status = "delayed"
	StatusOffline  Status = "offline"
	StatusError    Status = "error"
	StatusStarting Status = "starting"
)

// SystemStatus is a point-in-time snapshot derived from one heartbeat
// record plus the wall clock. It is recomputed on every poll and never
// persisted.
type SystemStatus struct {
	Status   Status
	Message  string
	LastSeen time.Time

	UptimeSeconds *float64
	MemoryMB      *float64
	CPUPercent    *float64

	HeartbeatCount       *int64
	PredictionsSucceeded *int64
	PredictionsFailed    *int64
}
