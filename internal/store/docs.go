package store

import (
	"time"

	"github.com/shopspring/decimal"

	"prediction-dashboard/internal/model"
)

// Wire shapes of the documents as the external pipeline writes them.
// Timestamps arrive as strings and are decoded leniently: a value that
// parses under none of the known layouts becomes a zero time, never an
// error.

var docTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseDocTime(value string) time.Time {
	for _, layout := range docTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

type predictionDoc struct {
	ID               string                     `json:"id"`
	CreatedAt        string                     `json:"created_at"`
	PredictionTime   string                     `json:"prediction_time"`
	TargetTime       string                     `json:"target_time"`
	TimeframeMinutes int                        `json:"timeframe_minutes"`
	CurrentPrice     decimal.Decimal            `json:"current_price"`
	PredictedPrice   decimal.Decimal            `json:"predicted_price"`
	RangeLow         decimal.Decimal            `json:"range_low"`
	RangeHigh        decimal.Decimal            `json:"range_high"`
	Trend            string                     `json:"trend"`
	Confidence       float64                    `json:"confidence"`
	Validated        bool                       `json:"validated"`
	ValidationResult *string                    `json:"validation_result,omitempty"`
	ActualPrice      *decimal.Decimal           `json:"actual_price,omitempty"`
	PriceError       *decimal.Decimal           `json:"price_error,omitempty"`
	PriceErrorPct    *decimal.Decimal           `json:"price_error_pct,omitempty"`
	SubModels        map[string]decimal.Decimal `json:"sub_models,omitempty"`
}

func (d predictionDoc) toModel() model.Prediction {
	p := model.Prediction{
		ID:               d.ID,
		CreatedAt:        parseDocTime(d.CreatedAt),
		PredictionTime:   parseDocTime(d.PredictionTime),
		TargetTime:       parseDocTime(d.TargetTime),
		TimeframeMinutes: d.TimeframeMinutes,
		CurrentPrice:     d.CurrentPrice,
		PredictedPrice:   d.PredictedPrice,
		RangeLow:         d.RangeLow,
		RangeHigh:        d.RangeHigh,
		Trend:            d.Trend,
		Confidence:       d.Confidence,
		Validated:        d.Validated,
		ActualPrice:      d.ActualPrice,
		PriceError:       d.PriceError,
		PriceErrorPct:    d.PriceErrorPct,
		SubModels:        d.SubModels,
	}
	if d.ValidationResult != nil {
		result := model.ValidationResult(*d.ValidationResult)
		p.Result = &result
	}
	return p
}

type heartbeatDoc struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`

	UptimeSeconds *float64 `json:"uptime_seconds,omitempty"`
	MemoryMB      *float64 `json:"memory_mb,omitempty"`
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`

	HeartbeatCount       *int64 `json:"heartbeat_count,omitempty"`
	PredictionsSucceeded *int64 `json:"predictions_succeeded,omitempty"`
	PredictionsFailed    *int64 `json:"predictions_failed,omitempty"`
}

func (d heartbeatDoc) toModel() model.Heartbeat {
	return model.Heartbeat{
		Status:               d.Status,
		LastSeen:             parseDocTime(d.Timestamp),
		UptimeSeconds:        d.UptimeSeconds,
		MemoryMB:             d.MemoryMB,
		CPUPercent:           d.CPUPercent,
		HeartbeatCount:       d.HeartbeatCount,
		PredictionsSucceeded: d.PredictionsSucceeded,
		PredictionsFailed:    d.PredictionsFailed,
	}
}

type modelScoreDoc struct {
	Accuracy float64 `json:"accuracy"`
	MAE      float64 `json:"mae"`
	MAPE     float64 `json:"mape"`
	Samples  int     `json:"samples"`
}

type performanceDoc struct {
	UpdatedAt  string                   `json:"updated_at"`
	WindowDays int                      `json:"window_days"`
	Models     map[string]modelScoreDoc `json:"models"`
}

func (d performanceDoc) toModel() model.ModelPerformance {
	perf := model.ModelPerformance{
		UpdatedAt:  parseDocTime(d.UpdatedAt),
		WindowDays: d.WindowDays,
		Models:     make(map[string]model.ModelScore, len(d.Models)),
	}
	for name, score := range d.Models {
		perf.Models[name] = model.ModelScore{
			Accuracy: score.Accuracy,
			MAE:      score.MAE,
			MAPE:     score.MAPE,
			Samples:  score.Samples,
		}
	}
	return perf
}
