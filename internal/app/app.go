package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"QuantAI/internal/collector"
	"QuantAI/internal/config"
	"QuantAI/internal/indicator"
	"QuantAI/internal/metrics"
	"QuantAI/internal/pipeline"
	"QuantAI/internal/recorder"
	"QuantAI/internal/sentiment"
)

// App holds the wired analysis stack shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Fetcher  *collector.RateLimitedFetcher
	Recorder recorder.Recorder
	Service  *pipeline.Service
}

// NewLogger builds the root logger at the named level. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewProvider returns the market data provider named by cfg.
func NewProvider(cfg *config.Config) (collector.Provider, error) {
	timeout := time.Duration(cfg.Provider.TimeoutSec) * time.Second
	switch cfg.Provider.Name {
	case config.ProviderYahoo:
		return collector.NewYahooProvider(cfg.Provider.BaseURL, cfg.Provider.Proxy, timeout), nil
	case config.ProviderEastMoney:
		return collector.NewEastMoneyProvider(cfg.Provider.BaseURL, cfg.Provider.Proxy, timeout), nil
	case config.ProviderMock:
		return &collector.MockProvider{Price: 100, Count: cfg.Analysis.Lookback}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

// New wires fetcher, indicators, sentiment, recorder and metrics into a pipeline.
// A recorder that fails to open is replaced by a no-op one.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := indicator.New(cfg.Analysis.IndicatorBackend)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	fetcher := collector.NewRateLimitedFetcher(provider, collector.Options{
		MaxRequestsPerMin: cfg.Provider.MaxRequestsPerMin,
		MaxBars:           cfg.Analysis.Lookback,
		Logger:            logger,
		Metrics:           m,
	})
	svc := pipeline.New(fetcher, engine, sentiment.NewStub(cfg.Sentiment.Seed, logger), pipeline.Options{
		Lookback: cfg.Analysis.Lookback,
		Recorder: rec,
		Metrics:  m,
		Logger:   logger,
	})

	logger.Info().
		Str("provider", provider.Name()).
		Str("indicators", engine.Name()).
		Int("max_requests_per_min", cfg.Provider.MaxRequestsPerMin).
		Msg("analysis stack ready")

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  m,
		Fetcher:  fetcher,
		Recorder: rec,
		Service:  svc,
	}, nil
}

// Close releases the recorder.
func (a *App) Close() error {
	return a.Recorder.Close()
}
