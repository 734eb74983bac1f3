package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"QuantAI/internal/advisor"
	"QuantAI/internal/collector"
	"QuantAI/internal/indicator"
	"QuantAI/internal/metrics"
	"QuantAI/internal/model"
	"QuantAI/internal/recorder"
	"QuantAI/internal/sentiment"
	"QuantAI/internal/strategy"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.^=-]{1,16}$`)

// neutralSentiment stands in when the sentiment collaborator fails.
const neutralSentiment = 50.0

// Options configures a Service.
type Options struct {
	Lookback int
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Service runs fetch, indicators, scoring, sentiment and advice for one ticker.
type Service struct {
	fetcher   collector.Fetcher
	engine    indicator.Engine
	sentiment sentiment.Analyzer
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	lookback  int
	now       func() time.Time
}

func New(f collector.Fetcher, e indicator.Engine, s sentiment.Analyzer, opts Options) *Service {
	if opts.Lookback <= 0 {
		opts.Lookback = model.DefaultLookback
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		fetcher:   f,
		engine:    e,
		sentiment: s,
		recorder:  opts.Recorder,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "pipeline").Logger(),
		lookback:  opts.Lookback,
		now:       opts.Now,
	}
}

// NormalizeTicker trims and upper-cases a ticker and checks its shape.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", &model.ValidationError{Field: "ticker", Reason: "must not be empty"}
	}
	if !tickerPattern.MatchString(t) {
		return "", &model.ValidationError{Field: "ticker", Reason: fmt.Sprintf("%q is not a valid symbol", raw)}
	}
	return t, nil
}

// ValidateHoldingCost rejects negative or non-finite costs. nil means no position.
func ValidateHoldingCost(cost *float64) error {
	if cost == nil {
		return nil
	}
	if math.IsNaN(*cost) || math.IsInf(*cost, 0) {
		return &model.ValidationError{Field: "holding_cost", Reason: "must be a finite number"}
	}
	if *cost < 0 {
		return &model.ValidationError{Field: "holding_cost", Reason: "must be non-negative"}
	}
	return nil
}

// Analyze produces a full report for ticker. holdingCost is optional.
func (s *Service) Analyze(ctx context.Context, ticker string, holdingCost *float64) (*model.Report, error) {
	start := s.now()

	rep, err := s.analyze(ctx, ticker, holdingCost)
	if err != nil {
		s.metrics.ObserveError(ErrorKind(err))
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("analysis failed")
		return nil, err
	}

	s.metrics.ObserveAnalysis(string(rep.Analysis.Signal), rep.Advice.Action, s.now().Sub(start))
	s.logger.Info().
		Str("ticker", rep.Ticker).
		Float64("score", rep.Analysis.Score).
		Str("signal", string(rep.Analysis.Signal)).
		Str("action", rep.Advice.Action).
		Msg("analysis complete")
	return rep, nil
}

func (s *Service) analyze(ctx context.Context, raw string, holdingCost *float64) (*model.Report, error) {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidateHoldingCost(holdingCost); err != nil {
		return nil, err
	}

	series, err := s.fetcher.FetchHistory(ctx, ticker, s.lookback)
	if err != nil {
		return nil, err
	}
	if series.Empty() {
		return nil, &model.NoDataError{Ticker: ticker}
	}

	price, err := s.fetcher.GetCurrentPrice(ctx, ticker)
	if err != nil {
		return nil, err
	}

	computeStart := s.now()
	ind, err := s.engine.Compute(series)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveIndicators(s.engine.Name(), s.now().Sub(computeStart))

	analysis := strategy.Score(ind)
	sent := s.scoreSentiment(ctx, ticker)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	advice := advisor.Advise(advisor.Input{
		CurrentPrice:   price,
		TechScore:      analysis.Score,
		SentimentScore: sent.Score,
		HoldingCost:    holdingCost,
	})

	rep := &model.Report{
		ID:           uuid.NewString(),
		Ticker:       ticker,
		CurrentPrice: price,
		HoldingCost:  holdingCost,
		AnalyzedAt:   s.now(),
		Bars:         len(series),
		Analysis:     analysis,
		Sentiment:    sent,
		Advice:       advice,
		Summary:      fmt.Sprintf("Analysis complete for %s. %s recommendation.", ticker, advice.Action),
	}

	if err := s.recorder.RecordAnalysis(ctx, rep); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("record analysis failed")
	}
	return rep, nil
}

func (s *Service) scoreSentiment(ctx context.Context, ticker string) model.Sentiment {
	sent, err := s.sentiment.Analyze(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("sentiment unavailable, using neutral score")
		return model.Sentiment{Score: neutralSentiment, Headlines: []string{}, Summary: "Sentiment unavailable."}
	}
	sent.Score = strategy.Clamp(sent.Score, 0, 100)
	return sent
}

// History returns recorded reports for ticker, newest first.
func (s *Service) History(ctx context.Context, ticker string, limit int) ([]model.Report, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	return s.recorder.RecentAnalyses(ctx, t, limit)
}

// Error kinds reported by ErrorKind.
const (
	KindValidation  = "validation"
	KindNoData      = "no_data"
	KindFetch       = "fetch"
	KindComputation = "computation"
	KindInternal    = "internal"
)

// ErrorKind classifies an Analyze error.
func ErrorKind(err error) string {
	switch {
	case asType[*model.ValidationError](err):
		return KindValidation
	case asType[*model.NoDataError](err):
		return KindNoData
	case asType[*model.FetchError](err):
		return KindFetch
	case asType[*model.ComputationError](err):
		return KindComputation
	default:
		return KindInternal
	}
}

func asType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
