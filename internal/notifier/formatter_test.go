package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"QuantAI/internal/model"
)

func sampleReport() *model.Report {
	cost := 90.0
	entry := 98.0
	return &model.Report{
		Ticker:       "AAPL",
		CurrentPrice: 100,
		HoldingCost:  &cost,
		AnalyzedAt:   time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC),
		Analysis: model.AnalysisResult{
			Score:      70,
			Signal:     model.SignalBuy,
			Indicators: model.IndicatorSet{model.IndRSI: 28.5, model.IndMACD: 1.25},
			Factors:    []model.FactorScore{{Name: "RSI", Adjustment: 15, Commentary: "RSI < 30"}},
		},
		Sentiment: model.Sentiment{Score: 60},
		Advice: model.AdviceResult{
			Action:     model.ActionWatch,
			EntryPoint: &entry,
			Rationale:  "Composite Score: 66.0. Positive but wait for better entry.",
			Alpha:      66,
		},
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleReport())
	for _, want := range []string{
		"<b>AAPL</b> | 2024-05-01 16:30",
		"当前价格: 100.00",
		"持仓成本: 90.00 (+11.1%)",
		"RSI: 28.5",
		"RSI: +15 (RSI &lt; 30)",
		"技术评分: 70/100 (BUY)",
		"WATCH (Alpha 66.0)",
		"入场价: 98.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "离场价") {
		t.Error("exit point shown although nil")
	}
}

func TestFormatDigest(t *testing.T) {
	out := FormatDigest([]*model.Report{sampleReport()}, map[string]error{
		"ZZZ": errors.New("no data found for ZZZ"),
		"BAD": errors.New("invalid ticker"),
	})
	if !strings.Contains(out, "1 ok, 2 failed") {
		t.Errorf("digest header wrong:\n%s", out)
	}
	if strings.Index(out, "BAD") > strings.Index(out, "ZZZ") {
		t.Error("failures should be sorted by ticker")
	}
}

type fakeAnalyzer struct {
	ticker string
	cost   *float64
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, ticker string, cost *float64) (*model.Report, error) {
	f.ticker, f.cost = ticker, cost
	if f.err != nil {
		return nil, f.err
	}
	return sampleReport(), nil
}

func (f *fakeAnalyzer) History(_ context.Context, ticker string, _ int) ([]model.Report, error) {
	f.ticker = ticker
	return []model.Report{*sampleReport()}, nil
}

func TestCommandHandler(t *testing.T) {
	tests := []struct {
		command    string
		wantTicker string
		wantCost   float64
		wantReply  string
	}{
		{"/analyze aapl", "aapl", -1, "<b>AAPL</b>"},
		{"/analyze@quant_bot 600519 1650.5", "600519", 1650.5, "<b>AAPL</b>"},
		{"/analyze AAPL abc", "", -1, "not a number"},
		{"/analyze", "", -1, "可用命令"},
		{"/history aapl", "aapl", -1, "AAPL 历史"},
		{"hello", "", -1, "可用命令"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			fa := &fakeAnalyzer{}
			reply := NewCommandHandler(fa)(context.Background(), tt.command)
			if !strings.Contains(reply, tt.wantReply) {
				t.Errorf("reply = %q, want it to contain %q", reply, tt.wantReply)
			}
			if fa.ticker != tt.wantTicker {
				t.Errorf("ticker = %q, want %q", fa.ticker, tt.wantTicker)
			}
			if tt.wantCost >= 0 && (fa.cost == nil || *fa.cost != tt.wantCost) {
				t.Errorf("cost = %v, want %v", fa.cost, tt.wantCost)
			}
		})
	}
}

func TestCommandHandler_AnalyzeError(t *testing.T) {
	fa := &fakeAnalyzer{err: &model.NoDataError{Ticker: "ZZZ"}}
	reply := NewCommandHandler(fa)(context.Background(), "/analyze ZZZ")
	if !strings.Contains(reply, "no data found for ZZZ") {
		t.Errorf("reply = %q", reply)
	}
}
