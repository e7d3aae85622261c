// Package status derives the discrete system status from a heartbeat
// record and the wall clock.
package status

import (
	"fmt"
	"strings"
	"time"

	"prediction-dashboard/internal/model"
)

// Thresholds hold the elapsed-time cutoffs for the delayed and offline
// bands. Both the resolver and any client-side re-derivation must share
// one instance; the bands had drifted apart when the cutoffs were
// duplicated.
type Thresholds struct {
	DelayedAfter time.Duration
	OfflineAfter time.Duration
}

// DefaultThresholds returns the standard 2m/10m cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DelayedAfter: 2 * time.Minute,
		OfflineAfter: 10 * time.Minute,
	}
}

// Resolver turns heartbeat records into SystemStatus snapshots.
type Resolver struct {
	thresholds Thresholds
}

// NewResolver constructs a Resolver, substituting defaults for unset or
// inverted thresholds.
func NewResolver(t Thresholds) *Resolver {
	defaults := DefaultThresholds()
	if t.DelayedAfter <= 0 {
		t.DelayedAfter = defaults.DelayedAfter
	}
	if t.OfflineAfter <= t.DelayedAfter {
		t.OfflineAfter = defaults.OfflineAfter
	}
	if t.OfflineAfter <= t.DelayedAfter {
		t.OfflineAfter = t.DelayedAfter * 5
	}
	return &Resolver{thresholds: t}
}

// Resolve derives a SystemStatus from the latest heartbeat (nil when no
// heartbeat document exists) and the current time. Pure function of its
// inputs.
//
// An explicit status reported by the process always wins over elapsed
// time; the elapsed-time bands only apply when the reported status carries
// no signal of its own.
func (r *Resolver) Resolve(hb *model.Heartbeat, now time.Time) model.SystemStatus {
	if hb == nil {
		return model.SystemStatus{
			Status:  model.StatusOffline,
			Message: "no heartbeat data found",
		}
	}

	lastSeen := hb.LastSeen
	if lastSeen.IsZero() {
		// Unparseable timestamp: assume just seen rather than failing.
		lastSeen = now
	}

	out := model.SystemStatus{
		LastSeen:             lastSeen,
		UptimeSeconds:        hb.UptimeSeconds,
		MemoryMB:             hb.MemoryMB,
		CPUPercent:           hb.CPUPercent,
		HeartbeatCount:       hb.HeartbeatCount,
		PredictionsSucceeded: hb.PredictionsSucceeded,
		PredictionsFailed:    hb.PredictionsFailed,
	}

	switch strings.ToLower(strings.TrimSpace(hb.Status)) {
	case "offline":
		out.Status = model.StatusOffline
		out.Message = "reported offline"
	case "error":
		out.Status = model.StatusError
		out.Message = "reported error"
	case "starting":
		out.Status = model.StatusStarting
		out.Message = "starting"
	case "running":
		out.Status = model.StatusOnline
		out.Message = "running"
	default:
		elapsed := now.Sub(lastSeen)
		switch {
		case elapsed < r.thresholds.DelayedAfter:
			out.Status = model.StatusOnline
			out.Message = "online"
		case elapsed < r.thresholds.OfflineAfter:
			out.Status = model.StatusDelayed
			out.Message = fmt.Sprintf("no heartbeat for %s", elapsed.Round(time.Second))
		default:
			out.Status = model.StatusOffline
			out.Message = fmt.Sprintf("no heartbeat for %s", elapsed.Round(time.Second))
		}
	}

	return out
}
