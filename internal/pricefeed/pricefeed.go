// Package pricefeed retrieves the current spot price from an external
// price API.
package pricefeed

import (
	"context"

	"github.com/shopspring/decimal"
)

// SpotPriceFetcher retrieves the current spot price for the configured
// trading pair.
type SpotPriceFetcher interface {
	FetchSpot(ctx context.Context) (decimal.Decimal, error)
}
