package recorder

import (
	"context"
	"time"

	"QuantAI/internal/model"
)

// RunEvent records one scheduled watchlist analysis.
type RunEvent struct {
	Ticker   string
	Started  time.Time
	Duration time.Duration
	Attempts int
	Action   string // empty when the run failed
	Err      string
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(ctx context.Context, rep *model.Report) error
	// RecentAnalyses returns up to limit reports for ticker, newest first.
	RecentAnalyses(ctx context.Context, ticker string, limit int) ([]model.Report, error)
	RecordRun(ctx context.Context, evt *RunEvent) error
	Close() error
}
