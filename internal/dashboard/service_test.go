package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/status"
)

var serviceNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type stubStores struct {
	recent      []model.Prediction
	validated   []model.Prediction
	pending     []model.Prediction
	heartbeat   *model.Heartbeat
	performance *model.ModelPerformance
	err         error
}

func (s *stubStores) ListRecentPredictions(_ context.Context, limit int) ([]model.Prediction, error) {
	return s.limited(s.recent, limit)
}

func (s *stubStores) ListValidatedPredictions(_ context.Context, limit int) ([]model.Prediction, error) {
	return s.limited(s.validated, limit)
}

func (s *stubStores) ListPendingValidation(_ context.Context, limit int) ([]model.Prediction, error) {
	return s.limited(s.pending, limit)
}

func (s *stubStores) ListValidatedBetween(_ context.Context, from, to time.Time) ([]model.Prediction, error) {
	return s.limited(s.validated, 0)
}

func (s *stubStores) LatestHeartbeat(_ context.Context) (*model.Heartbeat, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.heartbeat, nil
}

func (s *stubStores) LatestModelPerformance(_ context.Context) (*model.ModelPerformance, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.performance, nil
}

func (s *stubStores) limited(records []model.Prediction, limit int) ([]model.Prediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(records) > limit {
		return records[:limit], nil
	}
	return records, nil
}

type stubPrices struct {
	price decimal.Decimal
	err   error
}

func (s *stubPrices) FetchSpot(context.Context) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Decimal{}, s.err
	}
	return s.price, nil
}

func validatedRecord(id string, tf int, result model.ValidationResult, at time.Time) model.Prediction {
	e := decimal.NewFromFloat(25)
	ePct := decimal.NewFromFloat(0.024)
	return model.Prediction{
		ID:               id,
		CreatedAt:        at,
		PredictionTime:   at,
		TargetTime:       at.Add(time.Duration(tf) * time.Minute),
		TimeframeMinutes: tf,
		CurrentPrice:     decimal.NewFromInt(103000),
		PredictedPrice:   decimal.NewFromInt(103500),
		Trend:            "bullish",
		Confidence:       70,
		Validated:        true,
		Result:           &result,
		PriceError:       &e,
		PriceErrorPct:    &ePct,
	}
}

func newTestService(stores *stubStores, prices *stubPrices) *Service {
	cfg := &config.Config{}
	cfg.Dashboard = config.DashboardConfig{
		WindowDays:     7,
		RecentLimit:    30,
		PendingLimit:   100,
		ValidatedLimit: 500,
	}
	svc := New(cfg, stores, stores, stores, prices, status.NewResolver(status.DefaultThresholds()), nil, nil, zerolog.Nop())
	svc.now = func() time.Time { return serviceNow }
	return svc
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	stores := &stubStores{
		validated: []model.Prediction{
			validatedRecord("v1", 15, model.ResultWin, serviceNow.Add(-time.Hour)),
			validatedRecord("v2", 15, model.ResultLose, serviceNow.Add(-2*time.Hour)),
		},
		recent: []model.Prediction{
			validatedRecord("v1", 15, model.ResultWin, serviceNow.Add(-time.Hour)),
		},
		pending: []model.Prediction{
			{ID: "p1", TargetTime: serviceNow.Add(-time.Minute), TimeframeMinutes: 30},
			{ID: "p2", TargetTime: serviceNow.Add(time.Hour), TimeframeMinutes: 30},
		},
		heartbeat: &model.Heartbeat{Status: "running", LastSeen: serviceNow.Add(-time.Minute)},
	}
	svc := newTestService(stores, &stubPrices{price: decimal.NewFromFloat(103250.55)})

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, 103250.55, snap.CurrentPrice)
	require.Equal(t, 2, snap.OverallStats.TotalPredictions)
	require.Equal(t, 50.0, snap.OverallStats.WinRate)
	require.Len(t, snap.RecentPredictions, 1)

	// p2 is not due yet and must be filtered out.
	require.Len(t, snap.PendingPredictions, 1)
	require.Equal(t, "p1", snap.PendingPredictions[0].ID)

	require.Equal(t, "online", snap.SystemStatus.Status)
	require.Nil(t, snap.ModelPerformance)
	require.Equal(t, serviceNow.Format(time.RFC3339), snap.LastUpdate)
}

func TestRefreshNoHeartbeat(t *testing.T) {
	svc := newTestService(&stubStores{}, &stubPrices{price: decimal.NewFromInt(100000)})

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, "offline", snap.SystemStatus.Status)
	require.Equal(t, "no heartbeat data found", snap.SystemStatus.Message)
	require.Equal(t, 0, snap.OverallStats.TotalPredictions)
	require.Equal(t, 0.0, snap.OverallStats.WinRate)
}

func TestRefreshFailureRetainsLastSnapshot(t *testing.T) {
	stores := &stubStores{
		heartbeat: &model.Heartbeat{Status: "running", LastSeen: serviceNow},
	}
	prices := &stubPrices{price: decimal.NewFromInt(100000)}
	svc := newTestService(stores, prices)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	prices.err = errors.New("upstream unavailable")
	_, err = svc.Refresh(context.Background())
	require.Error(t, err)

	snap, lastErr := svc.Latest()
	require.Same(t, first, snap, "失败的刷新不应覆盖上一份快照")
	require.ErrorContains(t, lastErr, "upstream unavailable")
}

func TestLatestBeforeFirstRefresh(t *testing.T) {
	svc := newTestService(&stubStores{}, &stubPrices{price: decimal.NewFromInt(1)})

	snap, err := svc.Latest()
	require.Nil(t, snap)
	require.NoError(t, err)
}

func TestRefreshAbortsWholeCycleOnStoreError(t *testing.T) {
	stores := &stubStores{err: errors.New("connection refused")}
	svc := newTestService(stores, &stubPrices{price: decimal.NewFromInt(1)})

	_, err := svc.Refresh(context.Background())
	require.ErrorContains(t, err, "connection refused")

	snap, _ := svc.Latest()
	require.Nil(t, snap)
}

func TestRefreshAppliesTrailingWindow(t *testing.T) {
	stores := &stubStores{
		validated: []model.Prediction{
			validatedRecord("in", 15, model.ResultWin, serviceNow.AddDate(0, 0, -6)),
			validatedRecord("out", 15, model.ResultLose, serviceNow.AddDate(0, 0, -8)),
		},
		heartbeat: &model.Heartbeat{Status: "running", LastSeen: serviceNow},
	}
	svc := newTestService(stores, &stubPrices{price: decimal.NewFromInt(100000)})

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, snap.OverallStats.TotalPredictions)
	require.Equal(t, 100.0, snap.OverallStats.WinRate)
}
