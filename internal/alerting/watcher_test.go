package alerting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"prediction-dashboard/internal/model"
)

type recordingNotifier struct {
	changes []StatusChange
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, change StatusChange) error {
	if r.err != nil {
		return r.err
	}
	r.changes = append(r.changes, change)
	return nil
}

func observeStatus(w *Watcher, st model.Status, at time.Time) {
	w.Observe(context.Background(), model.SystemStatus{Status: st, Message: string(st)}, at)
}

func TestWatcherAlertsOnBadTransition(t *testing.T) {
	n := &recordingNotifier{}
	w := NewWatcher(n, 30*time.Minute, nil, zerolog.Nop())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	observeStatus(w, model.StatusOnline, now)
	observeStatus(w, model.StatusOffline, now.Add(time.Minute))

	if len(n.changes) != 1 {
		t.Fatalf("应发送 1 条告警, 实际 %d", len(n.changes))
	}
	if n.changes[0].Previous != model.StatusOnline || n.changes[0].Current != model.StatusOffline {
		t.Errorf("状态迁移不符: %+v", n.changes[0])
	}
}

// The first observation only seeds the baseline; a system that starts
// offline does not alert until it transitions.
func TestWatcherFirstObservationSeedsOnly(t *testing.T) {
	n := &recordingNotifier{}
	w := NewWatcher(n, 0, nil, zerolog.Nop())
	now := time.Now()

	observeStatus(w, model.StatusOffline, now)

	if len(n.changes) != 0 {
		t.Fatalf("首次观测不应告警, 实际发送 %d 条", len(n.changes))
	}
}

func TestWatcherNoAlertOnRecovery(t *testing.T) {
	n := &recordingNotifier{}
	w := NewWatcher(n, 0, nil, zerolog.Nop())
	now := time.Now()

	observeStatus(w, model.StatusOffline, now)
	observeStatus(w, model.StatusOnline, now.Add(time.Minute))

	if len(n.changes) != 0 {
		t.Errorf("恢复在线不应告警, 实际发送 %d 条", len(n.changes))
	}
}

func TestWatcherCooldown(t *testing.T) {
	n := &recordingNotifier{}
	w := NewWatcher(n, 30*time.Minute, nil, zerolog.Nop())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	observeStatus(w, model.StatusOnline, now)
	observeStatus(w, model.StatusOffline, now.Add(1*time.Minute))  // alerts
	observeStatus(w, model.StatusOnline, now.Add(2*time.Minute))   // recovery
	observeStatus(w, model.StatusError, now.Add(3*time.Minute))    // suppressed by cooldown
	observeStatus(w, model.StatusOnline, now.Add(4*time.Minute))   // recovery
	observeStatus(w, model.StatusOffline, now.Add(45*time.Minute)) // cooldown expired

	if len(n.changes) != 2 {
		t.Fatalf("冷却窗口内应只发送 2 条告警, 实际 %d", len(n.changes))
	}
	if n.changes[1].Current != model.StatusOffline {
		t.Errorf("第二条告警状态不符: %+v", n.changes[1])
	}
}

func TestWatcherNotifyFailureDoesNotBurnCooldown(t *testing.T) {
	n := &recordingNotifier{err: errors.New("network down")}
	w := NewWatcher(n, 30*time.Minute, nil, zerolog.Nop())
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	observeStatus(w, model.StatusOnline, now)
	observeStatus(w, model.StatusOffline, now.Add(time.Minute)) // fails to send

	n.err = nil
	observeStatus(w, model.StatusOnline, now.Add(2*time.Minute))
	observeStatus(w, model.StatusOffline, now.Add(3*time.Minute))

	if len(n.changes) != 1 {
		t.Fatalf("发送失败不应占用冷却窗口, 实际 %d 条", len(n.changes))
	}
}

func TestWatcherNilSafe(t *testing.T) {
	var w *Watcher
	observeStatus(w, model.StatusOffline, time.Now()) // must not panic

	inert := NewWatcher(nil, time.Minute, nil, zerolog.Nop())
	observeStatus(inert, model.StatusOffline, time.Now())
	observeStatus(inert, model.StatusError, time.Now())
}
