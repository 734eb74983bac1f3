package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"QuantAI/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "quant.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func testReport(id, ticker string, at time.Time, score float64) *model.Report {
	cost := 90.0
	entry := 98.0
	return &model.Report{
		ID:           id,
		Ticker:       ticker,
		CurrentPrice: 100,
		HoldingCost:  &cost,
		AnalyzedAt:   at,
		Bars:         250,
		Analysis: model.AnalysisResult{
			Score:      score,
			Signal:     model.SignalBuy,
			Indicators: model.IndicatorSet{model.IndRSI: 42.5, model.IndClose: 100},
			Summary:    "Technical Score: 65/100 (BUY).",
		},
		Sentiment: model.Sentiment{Score: 60, Summary: "Positive market sentiment detected."},
		Advice:    model.AdviceResult{Action: model.ActionWatch, EntryPoint: &entry, Alpha: 63},
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := r.RecordAnalysis(ctx, testReport(id, "AAPL", base.Add(time.Duration(i)*time.Hour), float64(50+i))); err != nil {
			t.Fatalf("RecordAnalysis(%s): %v", id, err)
		}
	}
	if err := r.RecordAnalysis(ctx, testReport("x", "MSFT", base, 70)); err != nil {
		t.Fatal(err)
	}

	got, err := r.RecentAnalyses(ctx, "AAPL", 2)
	if err != nil {
		t.Fatalf("RecentAnalyses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reports, want 2", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("order = %s,%s, want c,b", got[0].ID, got[1].ID)
	}
	rep := got[0]
	if rep.Analysis.Score != 52 || rep.Analysis.Signal != model.SignalBuy {
		t.Errorf("analysis = %+v", rep.Analysis)
	}
	if rep.HoldingCost == nil || *rep.HoldingCost != 90 {
		t.Errorf("holding cost = %v", rep.HoldingCost)
	}
	if rep.Advice.EntryPoint == nil || *rep.Advice.EntryPoint != 98 || rep.Advice.ExitPoint != nil {
		t.Errorf("advice = %+v", rep.Advice)
	}
	if rep.Analysis.Indicators.Get(model.IndRSI) != 42.5 {
		t.Errorf("indicators = %v", rep.Analysis.Indicators)
	}
	if !rep.AnalyzedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("analyzed at = %v", rep.AnalyzedAt)
	}
}

func TestSQLiteRecorder_UnknownTicker(t *testing.T) {
	r := openTestDB(t)
	got, err := r.RecentAnalyses(context.Background(), "NONE", 10)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	rep := testReport("dup", "AAPL", time.Now(), 50)
	if err := r.RecordAnalysis(ctx, rep); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnalysis(ctx, rep); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	runs := []*RunEvent{
		{Ticker: "AAPL", Started: time.Now(), Duration: 120 * time.Millisecond, Attempts: 1, Action: model.ActionBuy},
		{Ticker: "AAPL", Started: time.Now(), Attempts: 3, Err: "yahoo history AAPL: status 503"},
		{Ticker: "600519", Started: time.Now(), Attempts: 1, Action: model.ActionAvoid},
	}
	for _, evt := range runs {
		if err := r.RecordRun(ctx, evt); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	n, err := r.CountRuns(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountRuns = %d, want 2", n)
	}
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quant.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnalysis(context.Background(), testReport("keep", "AAPL", time.Now(), 55)); err != nil {
		t.Fatal(err)
	}
	r.Close()

	r2, err := NewSQLiteRecorder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	got, err := r2.RecentAnalyses(context.Background(), "AAPL", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("got %+v", got)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordAnalysis(context.Background(), testReport("n", "AAPL", time.Now(), 50)); err != nil {
		t.Fatal(err)
	}
	got, err := r.RecentAnalyses(context.Background(), "AAPL", 5)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}
