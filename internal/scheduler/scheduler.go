package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"QuantAI/internal/config"
	"QuantAI/internal/model"
	"QuantAI/internal/notifier"
	"QuantAI/internal/recorder"
)

// Analyzer runs one analysis. Satisfied by *pipeline.Service.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, holdingCost *float64) (*model.Report, error)
}

// Sender delivers the watchlist digest. Satisfied by *notifier.TelegramNotifier.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options tunes retries of retryable fetch failures.
type Options struct {
	MaxRetries      int
	InitialInterval time.Duration
	SendRetries     int
}

func (o *Options) defaults() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 2 * time.Second
	}
	if o.SendRetries <= 0 {
		o.SendRetries = 3
	}
}

// Scheduler runs the watchlist analysis on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	analyzer  Analyzer
	recorder  recorder.Recorder
	sender    Sender
	watchlist []config.WatchItem
	opts      Options
	logger    zerolog.Logger
	ctx       context.Context
}

// NewScheduler creates a new Scheduler. sender may be nil.
func NewScheduler(ctx context.Context, a Analyzer, rec recorder.Recorder, sender Sender,
	watchlist []config.WatchItem, opts Options, logger zerolog.Logger) *Scheduler {
	opts.defaults()
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		analyzer:  a,
		recorder:  rec,
		sender:    sender,
		watchlist: watchlist,
		opts:      opts,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
	}
}

// Register adds the watchlist job under the cron expression expr (six fields, seconds first).
func (s *Scheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, func() { s.RunWatchlist(s.ctx) }); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("tickers", len(s.watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunWatchlist analyses every configured ticker, records each run and sends
// a digest when a sender is configured.
func (s *Scheduler) RunWatchlist(ctx context.Context) ([]*model.Report, map[string]error) {
	s.logger.Info().Int("tickers", len(s.watchlist)).Msg("running watchlist")

	reports := make([]*model.Report, 0, len(s.watchlist))
	failures := make(map[string]error)
	for _, item := range s.watchlist {
		if ctx.Err() != nil {
			break
		}
		rep, err := s.runOne(ctx, item)
		if err != nil {
			failures[item.Ticker] = err
			continue
		}
		reports = append(reports, rep)
	}

	if s.sender != nil && len(s.watchlist) > 0 {
		if err := s.sender.SendWithRetry(ctx, notifier.FormatDigest(reports, failures), s.opts.SendRetries); err != nil {
			s.logger.Error().Err(err).Msg("send digest failed")
		}
	}
	s.logger.Info().Int("ok", len(reports)).Int("failed", len(failures)).Msg("watchlist done")
	return reports, failures
}

func (s *Scheduler) runOne(ctx context.Context, item config.WatchItem) (*model.Report, error) {
	started := time.Now()
	attempts := 0

	var rep *model.Report
	op := func() error {
		attempts++
		r, err := s.analyzer.Analyze(ctx, item.Ticker, item.HoldingCost)
		if err != nil {
			// Only transport and provider failures are worth another attempt.
			if !model.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		rep = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Warn().Err(err).Str("ticker", item.Ticker).Int("attempt", attempts).Dur("retry_in", wait).Msg("analysis failed, retrying")
	}

	err := backoff.RetryNotify(op, s.policy(ctx), notify)

	evt := &recorder.RunEvent{
		Ticker:   item.Ticker,
		Started:  started,
		Duration: time.Since(started),
		Attempts: attempts,
	}
	if err != nil {
		evt.Err = err.Error()
		s.logger.Error().Err(err).Str("ticker", item.Ticker).Int("attempts", attempts).Msg("watchlist analysis failed")
	} else {
		evt.Action = rep.Advice.Action
	}
	if rerr := s.recorder.RecordRun(ctx, evt); rerr != nil {
		s.logger.Error().Err(rerr).Str("ticker", item.Ticker).Msg("record run failed")
	}
	return rep, err
}

func (s *Scheduler) policy(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialInterval
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.opts.MaxRetries)), ctx)
}
