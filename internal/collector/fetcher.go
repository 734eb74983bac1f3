package collector

import (
	"context"
	"time"

	"QuantAI/internal/model"
)

// Fetcher retrieves normalized market data for a ticker.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker string, lookback int) (model.Series, error)
	GetCurrentPrice(ctx context.Context, ticker string) (float64, error)
	Name() string
}

// RawRow is one provider record keyed by the provider's own column names.
// Values are float64, string, json.Number or nil.
type RawRow map[string]any

// ColumnMap names the provider columns holding each bar field.
// An empty TimeLayout means the time column holds unix seconds.
type ColumnMap struct {
	Time       string
	Open       string
	High       string
	Low        string
	Close      string
	Volume     string
	TimeLayout string
	Location   *time.Location
}

// Provider is a single market data source. Implementations only perform the
// outbound call and describe their columns; rate limiting and normalization
// are shared by RateLimitedFetcher.
type Provider interface {
	Name() string
	// Supports reports whether the provider can service the ticker format.
	Supports(ticker string) bool
	// FetchRawHistory returns up to lookback daily rows. An unknown ticker
	// yields zero rows and no error.
	FetchRawHistory(ctx context.Context, ticker string, lookback int) ([]RawRow, error)
	FetchLatestPrice(ctx context.Context, ticker string) (float64, error)
	Columns() ColumnMap
}
