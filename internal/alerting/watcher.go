package alerting

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/observability"
)

// Watcher tracks resolved status across refreshes and dispatches one alert
// per transition into offline or error, subject to a cooldown.
type Watcher struct {
	notifier Notifier
	cooldown time.Duration
	metrics  *observability.Metrics
	logger   zerolog.Logger

	prev     model.Status
	hasPrev  bool
	lastSent time.Time
}

// NewWatcher constructs a Watcher. notifier may be nil, in which case the
// watcher is inert.
func NewWatcher(notifier Notifier, cooldown time.Duration, metrics *observability.Metrics, logger zerolog.Logger) *Watcher {
	return &Watcher{
		notifier: notifier,
		cooldown: cooldown,
		metrics:  metrics,
		logger:   logger.With().Str("component", "alert_watcher").Logger(),
	}
}

// Observe records the status resolved at now and alerts on a transition
// into a bad state. Callers invoke it from the refresh path, which is
// already serialized, so no locking is needed here.
func (w *Watcher) Observe(ctx context.Context, st model.SystemStatus, now time.Time) {
	if w == nil || w.notifier == nil {
		return
	}

	if !w.hasPrev {
		w.prev = st.Status
		w.hasPrev = true
		return
	}
	if st.Status == w.prev {
		return
	}

	previous := w.prev
	w.prev = st.Status

	if st.Status != model.StatusOffline && st.Status != model.StatusError {
		return
	}
	if !w.lastSent.IsZero() && w.cooldown > 0 && now.Sub(w.lastSent) < w.cooldown {
		w.logger.Debug().Str("status", string(st.Status)).Msg("alert suppressed by cooldown")
		return
	}

	change := StatusChange{
		Previous: previous,
		Current:  st.Status,
		Message:  st.Message,
		LastSeen: st.LastSeen,
		At:       now,
	}
	if err := w.notifier.Notify(ctx, change); err != nil {
		w.logger.Error().Err(err).Msg("failed to dispatch status alert")
		return
	}
	w.lastSent = now
	w.metrics.RecordAlertSent()
}
