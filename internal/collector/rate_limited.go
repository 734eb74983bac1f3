package collector

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"QuantAI/internal/metrics"
	"QuantAI/internal/model"
)

// priceFallbackBars is the history length used when the latest-price call fails.
const priceFallbackBars = 5

// Options configures a RateLimitedFetcher.
type Options struct {
	MaxRequestsPerMin int
	MaxBars           int
	Clock             Clock
	Logger            zerolog.Logger
	Metrics           *metrics.Metrics
}

// RateLimitedFetcher wraps a Provider with the sliding-window limiter and
// the shared row normalizer.
type RateLimitedFetcher struct {
	provider Provider
	limiter  *SlidingWindowLimiter
	maxBars  int
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewRateLimitedFetcher(p Provider, opts Options) *RateLimitedFetcher {
	if opts.MaxBars <= 0 {
		opts.MaxBars = model.DefaultLookback
	}
	logger := opts.Logger.With().Str("component", "fetcher").Str("provider", p.Name()).Logger()
	return &RateLimitedFetcher{
		provider: p,
		limiter:  NewSlidingWindowLimiter(opts.MaxRequestsPerMin, opts.Clock, logger, opts.Metrics),
		maxBars:  opts.MaxBars,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

func (f *RateLimitedFetcher) Name() string { return f.provider.Name() }

// Limiter exposes the limiter for inspection.
func (f *RateLimitedFetcher) Limiter() *SlidingWindowLimiter { return f.limiter }

// FetchHistory returns at most lookback recent daily bars in ascending order.
// An unsupported or unknown ticker yields an empty Series.
func (f *RateLimitedFetcher) FetchHistory(ctx context.Context, ticker string, lookback int) (model.Series, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, &model.ValidationError{Field: "ticker", Reason: "must not be empty"}
	}
	if lookback <= 0 {
		return nil, &model.ValidationError{Field: "lookback", Reason: "must be positive"}
	}
	if lookback > f.maxBars {
		lookback = f.maxBars
	}

	if !f.provider.Supports(ticker) {
		f.logger.Info().Str("ticker", ticker).Msg("ticker format not supported by provider")
		f.metrics.ObserveFetch(f.Name(), "history", "unsupported")
		return model.Series{}, nil
	}

	if _, err := f.limiter.Wait(ctx); err != nil {
		return nil, f.fail("history", ticker, err)
	}

	rows, err := f.provider.FetchRawHistory(ctx, ticker, lookback)
	if err != nil {
		return nil, f.fail("history", ticker, err)
	}

	series, dropped, err := normalize(rows, f.provider.Columns())
	if err != nil {
		return nil, f.fail("history", ticker, fmt.Errorf("malformed payload: %w", err))
	}
	if dropped > 0 {
		f.logger.Warn().Str("ticker", ticker).Int("dropped", dropped).Msg("skipped unusable rows")
	}

	series = series.Tail(lookback)
	if series.Empty() {
		f.logger.Warn().Str("ticker", ticker).Msg("no data returned")
		f.metrics.ObserveFetch(f.Name(), "history", "empty")
		return model.Series{}, nil
	}

	f.metrics.ObserveFetch(f.Name(), "history", "ok")
	f.logger.Debug().Str("ticker", ticker).Int("bars", len(series)).Msg("history fetched")
	return series, nil
}

// GetCurrentPrice asks the provider for the latest price and falls back to
// the last close of a short history.
func (f *RateLimitedFetcher) GetCurrentPrice(ctx context.Context, ticker string) (float64, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return 0, &model.ValidationError{Field: "ticker", Reason: "must not be empty"}
	}

	var primaryErr error
	if f.provider.Supports(ticker) {
		price, err := f.latestPrice(ctx, ticker)
		if err == nil {
			f.metrics.ObserveFetch(f.Name(), "price", "ok")
			return price, nil
		}
		if ctx.Err() != nil {
			return 0, f.fail("price", ticker, err)
		}
		primaryErr = err
		f.logger.Warn().Err(err).Str("ticker", ticker).Msg("latest price failed, falling back to history")
	} else {
		primaryErr = fmt.Errorf("ticker format not supported")
	}

	bars, err := f.FetchHistory(ctx, ticker, priceFallbackBars)
	if err != nil {
		return 0, &model.FetchError{Provider: f.Name(), Op: "price", Ticker: ticker,
			Err: fmt.Errorf("latest price: %v; history fallback: %w", primaryErr, err)}
	}
	if bars.Empty() {
		f.metrics.ObserveFetch(f.Name(), "price", "empty")
		return 0, &model.FetchError{Provider: f.Name(), Op: "price", Ticker: ticker,
			Err: fmt.Errorf("latest price: %v; history fallback: %w", primaryErr, model.ErrNoData)}
	}
	f.metrics.ObserveFetch(f.Name(), "price", "fallback")
	return bars.Last().Close, nil
}

func (f *RateLimitedFetcher) latestPrice(ctx context.Context, ticker string) (float64, error) {
	if _, err := f.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	price, err := f.provider.FetchLatestPrice(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("implausible price %v", price)
	}
	return price, nil
}

func (f *RateLimitedFetcher) fail(op, ticker string, err error) error {
	f.metrics.ObserveFetch(f.Name(), op, "error")
	f.logger.Error().Err(err).Str("ticker", ticker).Str("op", op).Msg("provider call failed")
	return &model.FetchError{Provider: f.Name(), Op: op, Ticker: ticker, Err: err}
}
