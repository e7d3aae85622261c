// Package stats implements the statistics aggregation core: pure, order
// independent reductions over bounded prediction collections.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"prediction-dashboard/internal/model"
	"prediction-dashboard/internal/timeframe"
)

// DefaultWindowDays is the trailing window over which aggregates are
// computed when no override is configured.
const DefaultWindowDays = 7

// Aggregate summarises one scope (overall, timeframe, or category).
type Aggregate struct {
	Total       int
	Wins        int
	Losses      int
	WinRate     float64
	AvgError    decimal.Decimal
	AvgErrorPct decimal.Decimal
}

// TimeframeAggregate is the aggregate for one timeframe value.
type TimeframeAggregate struct {
	TimeframeMinutes int
	Label            string
	Aggregate
}

// CategoryAggregate is the aggregate for one timeframe category.
type CategoryAggregate struct {
	Category timeframe.Category
	Label    string
	Aggregate
}

// Report bundles every aggregate computed from one input collection.
type Report struct {
	Overall      Aggregate
	PerTimeframe []TimeframeAggregate
	PerCategory  []CategoryAggregate

	// Shortfall counts eligible records whose validation result is neither
	// WIN nor LOSE. By construction it should be zero; a non-zero value is
	// a data-quality signal from the external validator, not a fault here.
	Shortfall int
}

// Compute reduces one group of records into an Aggregate. Empty groups
// yield all-zero aggregates; no division by zero occurs.
func Compute(group []model.Prediction) Aggregate {
	agg := Aggregate{
		Total:       len(group),
		AvgError:    decimal.Zero,
		AvgErrorPct: decimal.Zero,
	}
	if agg.Total == 0 {
		return agg
	}

	sumErr := decimal.Zero
	sumPct := decimal.Zero
	for _, p := range group {
		if p.IsWin() {
			agg.Wins++
		} else if p.IsLoss() {
			agg.Losses++
		}
		if p.PriceError != nil {
			sumErr = sumErr.Add(p.PriceError.Abs())
		}
		if p.PriceErrorPct != nil {
			sumPct = sumPct.Add(p.PriceErrorPct.Abs())
		}
	}

	total := decimal.NewFromInt(int64(agg.Total))
	agg.WinRate = float64(agg.Wins) / float64(agg.Total) * 100
	agg.AvgError = sumErr.Div(total)
	agg.AvgErrorPct = sumPct.Div(total)
	return agg
}

// BuildReport computes the overall, per-timeframe, and per-category
// aggregates over the validated records whose prediction time falls inside
// the trailing windowDays window ending at now. Records with an unparseable
// prediction time are excluded from every windowed aggregate.
func BuildReport(records []model.Prediction, now time.Time, windowDays int) Report {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	eligible := filterEligible(records, now, windowDays)

	report := Report{Overall: Compute(eligible)}

	for _, tf := range timeframe.Active {
		group := make([]model.Prediction, 0)
		for _, p := range eligible {
			if p.TimeframeMinutes == tf {
				group = append(group, p)
			}
		}
		report.PerTimeframe = append(report.PerTimeframe, TimeframeAggregate{
			TimeframeMinutes: tf,
			Label:            timeframe.Label(tf),
			Aggregate:        Compute(group),
		})
	}

	for _, cat := range timeframe.Categories {
		group := make([]model.Prediction, 0)
		for _, p := range eligible {
			if timeframe.Categorize(p.TimeframeMinutes) == cat {
				group = append(group, p)
			}
		}
		report.PerCategory = append(report.PerCategory, CategoryAggregate{
			Category:  cat,
			Label:     cat.Label(),
			Aggregate: Compute(group),
		})
	}

	report.Shortfall = report.Overall.Total - report.Overall.Wins - report.Overall.Losses
	return report
}

func filterEligible(records []model.Prediction, now time.Time, windowDays int) []model.Prediction {
	cutoff := now.AddDate(0, 0, -windowDays)
	eligible := make([]model.Prediction, 0, len(records))
	for _, p := range records {
		if !p.Validated {
			continue
		}
		if p.PredictionTime.IsZero() {
			continue
		}
		if p.PredictionTime.Before(cutoff) {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}
