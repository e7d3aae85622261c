package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/stats"
	"prediction-dashboard/internal/timeframe"
)

// Snapshot is the JSON document served to the presentation layer.
type Snapshot struct {
	CurrentPrice       float64               `json:"currentPrice"`
	OverallStats       AggregateView         `json:"overallStats"`
	TimeframeStats     []TimeframeStatsView  `json:"timeframeStats"`
	CategoryStats      []CategoryStatsView   `json:"categoryStats"`
	RecentPredictions  []PredictionView      `json:"recentPredictions"`
	PendingPredictions []PredictionView      `json:"pendingPredictions"`
	ModelPerformance   *ModelPerformanceView `json:"modelPerformance"`
	SystemStatus       SystemStatusView      `json:"systemStatus"`
	LastUpdate         string                `json:"lastUpdate"`
}

// AggregateView renders one statistics aggregate.
type AggregateView struct {
	TotalPredictions int     `json:"totalPredictions"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"winRate"`
	AvgError         float64 `json:"avgError"`
	AvgErrorPct      float64 `json:"avgErrorPct"`
}

// TimeframeStatsView renders the aggregate for one timeframe.
type TimeframeStatsView struct {
	TimeframeMinutes int    `json:"timeframeMinutes"`
	Label            string `json:"label"`
	AggregateView
}

// CategoryStatsView renders the aggregate for one category.
type CategoryStatsView struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	AggregateView
}

// PredictionView renders one prediction record.
type PredictionView struct {
	ID               string             `json:"id"`
	CreatedAt        string             `json:"createdAt"`
	PredictionTime   string             `json:"predictionTime"`
	TargetTime       string             `json:"targetTime"`
	TimeframeMinutes int                `json:"timeframeMinutes"`
	TimeframeLabel   string             `json:"timeframeLabel"`
	CurrentPrice     float64            `json:"currentPrice"`
	PredictedPrice   float64            `json:"predictedPrice"`
	RangeLow         float64            `json:"rangeLow"`
	RangeHigh        float64            `json:"rangeHigh"`
	Trend            string             `json:"trend"`
	Confidence       float64            `json:"confidence"`
	Validated        bool               `json:"validated"`
	ValidationResult *string            `json:"validationResult,omitempty"`
	ActualPrice      *float64           `json:"actualPrice,omitempty"`
	PriceError       *float64           `json:"priceError,omitempty"`
	PriceErrorPct    *float64           `json:"priceErrorPct,omitempty"`
	SubModels        map[string]float64 `json:"subModels,omitempty"`
}

// ModelScoreView renders one sub-model's metrics.
type ModelScoreView struct {
	Accuracy float64 `json:"accuracy"`
	MAE      float64 `json:"mae"`
	MAPE     float64 `json:"mape"`
	Samples  int     `json:"samples"`
}

// ModelPerformanceView renders the model-performance document.
type ModelPerformanceView struct {
	UpdatedAt  string                    `json:"updatedAt"`
	WindowDays int                       `json:"windowDays"`
	Models     map[string]ModelScoreView `json:"models"`
}

// SystemStatusView renders the resolved system status.
type SystemStatusView struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	LastSeen string `json:"lastSeen"`

	UptimeSeconds *float64 `json:"uptimeSeconds,omitempty"`
	MemoryMB      *float64 `json:"memoryMb,omitempty"`
	CPUPercent    *float64 `json:"cpuPercent,omitempty"`

	HeartbeatCount       *int64 `json:"heartbeatCount,omitempty"`
	PredictionsSucceeded *int64 `json:"predictionsSucceeded,omitempty"`
	PredictionsFailed    *int64 `json:"predictionsFailed,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func aggregateView(agg stats.Aggregate) AggregateView {
	return AggregateView{
		TotalPredictions: agg.Total,
		Wins:             agg.Wins,
		Losses:           agg.Losses,
		WinRate:          agg.WinRate,
		AvgError:         agg.AvgError.InexactFloat64(),
		AvgErrorPct:      agg.AvgErrorPct.InexactFloat64(),
	}
}

func reportViews(report stats.Report) (AggregateView, []TimeframeStatsView, []CategoryStatsView) {
	overall := aggregateView(report.Overall)

	timeframes := make([]TimeframeStatsView, 0, len(report.PerTimeframe))
	for _, tf := range report.PerTimeframe {
		timeframes = append(timeframes, TimeframeStatsView{
			TimeframeMinutes: tf.TimeframeMinutes,
			Label:            tf.Label,
			AggregateView:    aggregateView(tf.Aggregate),
		})
	}

	categories := make([]CategoryStatsView, 0, len(report.PerCategory))
	for _, cat := range report.PerCategory {
		categories = append(categories, CategoryStatsView{
			Category:      string(cat.Category),
			Label:         cat.Label,
			AggregateView: aggregateView(cat.Aggregate),
		})
	}

	return overall, timeframes, categories
}

func predictionView(p model.Prediction) PredictionView {
	view := PredictionView{
		ID:               p.ID,
		CreatedAt:        formatTime(p.CreatedAt),
		PredictionTime:   formatTime(p.PredictionTime),
		TargetTime:       formatTime(p.TargetTime),
		TimeframeMinutes: p.TimeframeMinutes,
		TimeframeLabel:   timeframe.Label(p.TimeframeMinutes),
		CurrentPrice:     p.CurrentPrice.InexactFloat64(),
		PredictedPrice:   p.PredictedPrice.InexactFloat64(),
		RangeLow:         p.RangeLow.InexactFloat64(),
		RangeHigh:        p.RangeHigh.InexactFloat64(),
		Trend:            p.Trend,
		Confidence:       p.Confidence,
		Validated:        p.Validated,
		ActualPrice:      floatPtr(p.ActualPrice),
		PriceError:       floatPtr(p.PriceError),
		PriceErrorPct:    floatPtr(p.PriceErrorPct),
	}
	if p.Result != nil {
		result := string(*p.Result)
		view.ValidationResult = &result
	}
	if len(p.SubModels) > 0 {
		view.SubModels = make(map[string]float64, len(p.SubModels))
		for name, price := range p.SubModels {
			view.SubModels[name] = price.InexactFloat64()
		}
	}
	return view
}

func predictionViews(records []model.Prediction) []PredictionView {
	views := make([]PredictionView, 0, len(records))
	for _, p := range records {
		views = append(views, predictionView(p))
	}
	return views
}

func performanceView(perf *model.ModelPerformance) *ModelPerformanceView {
	if perf == nil {
		return nil
	}
	view := &ModelPerformanceView{
		UpdatedAt:  formatTime(perf.UpdatedAt),
		WindowDays: perf.WindowDays,
		Models:     make(map[string]ModelScoreView, len(perf.Models)),
	}
	for name, score := range perf.Models {
		view.Models[name] = ModelScoreView{
			Accuracy: score.Accuracy,
			MAE:      score.MAE,
			MAPE:     score.MAPE,
			Samples:  score.Samples,
		}
	}
	return view
}

func statusView(st model.SystemStatus) SystemStatusView {
	return SystemStatusView{
		Status:               string(st.Status),
		Message:              st.Message,
		LastSeen:             formatTime(st.LastSeen),
		UptimeSeconds:        st.UptimeSeconds,
		MemoryMB:             st.MemoryMB,
		CPUPercent:           st.CPUPercent,
		HeartbeatCount:       st.HeartbeatCount,
		PredictionsSucceeded: st.PredictionsSucceeded,
		PredictionsFailed:    st.PredictionsFailed,
	}
}
