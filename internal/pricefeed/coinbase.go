package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultPair = "BTC-USD"

// Options parameterise the Coinbase spot fetcher.
type Options struct {
	BaseURL   string
	Pair      string
	Timeout   time.Duration
	UserAgent string
}

// Coinbase fetches spot prices from the Coinbase public API.
type Coinbase struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewCoinbase constructs a spot price fetcher.
func NewCoinbase(opts Options, logger zerolog.Logger) *Coinbase {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coinbase.com"
	}

	if opts.Pair == "" {
		opts.Pair = defaultPair
	}

	return &Coinbase{
		opts:    opts,
		logger:  logger.With().Str("component", "price_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type spotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// FetchSpot retrieves the current spot price for the configured pair.
func (c *Coinbase) FetchSpot(ctx context.Context) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v2/prices/%s/spot", c.baseURL, c.opts.Pair)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "predboard/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("fetch spot price: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("price API returned non-2xx")
		return decimal.Decimal{}, fmt.Errorf("price API status %d", resp.StatusCode)
	}

	var parsed spotResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode spot response: %w", err)
	}

	price, err := decimal.NewFromString(parsed.Data.Amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse spot amount %q: %w", parsed.Data.Amount, err)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, errors.New("spot price must be positive")
	}

	return price, nil
}

var _ SpotPriceFetcher = (*Coinbase)(nil)
