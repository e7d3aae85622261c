// Package dashboard assembles the analytics snapshot served to the
// presentation layer.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"prediction-dashboard/internal/alerting"
	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/observability"
	"prediction-dashboard/internal/pricefeed"
	"prediction-dashboard/internal/stats"
	"prediction-dashboard/internal/status"
	"prediction-dashboard/internal/store"
)

// Service orchestrates fetching, aggregation, and status resolution.
type Service struct {
	predictions store.PredictionStore
	heartbeats  store.HeartbeatStore
	performance store.PerformanceStore
	prices      pricefeed.SpotPriceFetcher
	resolver    *status.Resolver
	watcher     *alerting.Watcher
	metrics     *observability.Metrics
	logger      zerolog.Logger

	windowDays     int
	recentLimit    int
	pendingLimit   int
	validatedLimit int

	now func() time.Time

	// refreshMu serializes refresh cycles; a tick arriving while a slow
	// refresh is still running waits instead of racing it.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	last        *Snapshot
	lastErr     error
	lastRefresh time.Time
}

// New constructs the dashboard service.
func New(cfg *config.Config, predictions store.PredictionStore, heartbeats store.HeartbeatStore, performance store.PerformanceStore, prices pricefeed.SpotPriceFetcher, resolver *status.Resolver, watcher *alerting.Watcher, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	windowDays := cfg.Dashboard.WindowDays
	if windowDays <= 0 {
		windowDays = stats.DefaultWindowDays
	}

	return &Service{
		predictions:    predictions,
		heartbeats:     heartbeats,
		performance:    performance,
		prices:         prices,
		resolver:       resolver,
		watcher:        watcher,
		metrics:        metrics,
		logger:         logger.With().Str("component", "dashboard").Logger(),
		windowDays:     windowDays,
		recentLimit:    cfg.Dashboard.RecentLimit,
		pendingLimit:   cfg.Dashboard.PendingLimit,
		validatedLimit: cfg.Dashboard.ValidatedLimit,
		now:            time.Now,
	}
}

// Refresh runs one full poll cycle and returns the resulting snapshot. On
// any retrieval failure the whole cycle aborts and the previous snapshot
// is retained.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	started := s.now()
	snap, sysStatus, err := s.build(ctx)
	elapsed := s.now().Sub(started).Seconds()

	if err != nil {
		s.metrics.ObserveRefresh("error", elapsed)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("refresh failed; previous snapshot retained")
		return nil, err
	}

	s.mu.Lock()
	s.last = snap
	s.lastErr = nil
	s.lastRefresh = started
	s.mu.Unlock()

	s.metrics.ObserveRefresh("success", elapsed)
	s.metrics.SetSnapshotAge(0)
	s.watcher.Observe(ctx, sysStatus, started)

	s.logger.Info().
		Int("validated", snap.OverallStats.TotalPredictions).
		Int("recent", len(snap.RecentPredictions)).
		Int("pending", len(snap.PendingPredictions)).
		Str("system_status", snap.SystemStatus.Status).
		Msg("snapshot refreshed")

	return snap, nil
}

// Tick adapts Refresh to the scheduler signature.
func (s *Service) Tick(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	return err
}

// Latest returns the last good snapshot and the last refresh error. The
// snapshot is nil until the first successful refresh.
func (s *Service) Latest() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last != nil && !s.lastRefresh.IsZero() {
		s.metrics.SetSnapshotAge(s.now().Sub(s.lastRefresh).Seconds())
	}
	return s.last, s.lastErr
}

func (s *Service) build(ctx context.Context) (*Snapshot, model.SystemStatus, error) {
	now := s.now().UTC()

	price, err := s.prices.FetchSpot(ctx)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch spot price: %w", err)
	}

	heartbeat, err := s.heartbeats.LatestHeartbeat(ctx)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch heartbeat: %w", err)
	}

	validated, err := s.predictions.ListValidatedPredictions(ctx, s.validatedLimit)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch validated predictions: %w", err)
	}

	recent, err := s.predictions.ListRecentPredictions(ctx, s.recentLimit)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch recent predictions: %w", err)
	}

	pending, err := s.predictions.ListPendingValidation(ctx, s.pendingLimit)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch pending predictions: %w", err)
	}

	performance, err := s.performance.LatestModelPerformance(ctx)
	if err != nil {
		return nil, model.SystemStatus{}, fmt.Errorf("fetch model performance: %w", err)
	}

	report := stats.BuildReport(validated, now, s.windowDays)
	if report.Shortfall > 0 {
		s.logger.Warn().Int("shortfall", report.Shortfall).Msg("validated records without WIN/LOSE result")
	}
	due := stats.PendingDue(pending, now)
	sysStatus := s.resolver.Resolve(heartbeat, now)

	overall, timeframes, categories := reportViews(report)

	snap := &Snapshot{
		CurrentPrice:       price.InexactFloat64(),
		OverallStats:       overall,
		TimeframeStats:     timeframes,
		CategoryStats:      categories,
		RecentPredictions:  predictionViews(recent),
		PendingPredictions: predictionViews(due),
		ModelPerformance:   performanceView(performance),
		SystemStatus:       statusView(sysStatus),
		LastUpdate:         now.Format(time.RFC3339),
	}

	return snap, sysStatus, nil
}
