package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationResult is the recorded outcome of a validated prediction.
type ValidationResult string

const (
	ResultWin  ValidationResult = "WIN"
	ResultLose ValidationResult = "LOSE"
)

// Prediction is a single prediction record produced by the external
// prediction process. Records are immutable from this system's point of
// view: the external validator attaches the validation fields exactly once.
//
// Validation fields (Result, ActualPrice, PriceError, PriceErrorPct) are
// present if and only if Validated is true.
type Prediction struct {
	ID               string
	CreatedAt        time.Time
	PredictionTime   time.Time // zero when the source field was unparseable
	TargetTime       time.Time // zero when the source field was unparseable
	TimeframeMinutes int
	CurrentPrice     decimal.Decimal
	PredictedPrice   decimal.Decimal
	RangeLow         decimal.Decimal
	RangeHigh        decimal.Decimal
	Trend            string
	Confidence       float64
	Validated        bool

	Result        *ValidationResult
	ActualPrice   *decimal.Decimal
	PriceError    *decimal.Decimal
	PriceErrorPct *decimal.Decimal

	// SubModels carries optional per-sub-model predicted prices.
	SubModels map[string]decimal.Decimal
}

// IsWin reports whether the record was validated as a win.
func (p Prediction) IsWin() bool {
	return p.Result != nil && *p.Result == ResultWin
}

// IsLoss reports whether the record was validated as a loss.
func (p Prediction) IsLoss() bool {
	return p.Result != nil && *p.Result == ResultLose
}
