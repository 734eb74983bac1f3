package collector

import (
	"context"
	"sync/atomic"
	"time"

	"QuantAI/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Price        float64
	Bars         model.Series // nil generates len Count bars around Price
	Count        int
	HistoryErr   error
	PriceErr     error
	SupportsFunc func(string) bool

	historyCalls atomic.Int64
	priceCalls   atomic.Int64
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Supports(ticker string) bool {
	if m.SupportsFunc != nil {
		return m.SupportsFunc(ticker)
	}
	return true
}

func (m *MockProvider) Columns() ColumnMap {
	return ColumnMap{
		Time:   "time",
		Open:   "open",
		High:   "high",
		Low:    "low",
		Close:  "close",
		Volume: "volume",
	}
}

func (m *MockProvider) FetchRawHistory(_ context.Context, _ string, lookback int) ([]RawRow, error) {
	m.historyCalls.Add(1)
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	bars := m.Bars
	if bars == nil {
		n := m.Count
		if n <= 0 {
			n = lookback
		}
		bars = GenerateBars(m.Price, n)
	}
	rows := make([]RawRow, len(bars))
	for i, b := range bars {
		rows[i] = RawRow{
			"time":   float64(b.Time.Unix()),
			"open":   b.Open,
			"high":   b.High,
			"low":    b.Low,
			"close":  b.Close,
			"volume": b.Volume,
		}
	}
	return rows, nil
}

func (m *MockProvider) FetchLatestPrice(context.Context, string) (float64, error) {
	m.priceCalls.Add(1)
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func (m *MockProvider) HistoryCalls() int { return int(m.historyCalls.Load()) }
func (m *MockProvider) PriceCalls() int   { return int(m.priceCalls.Load()) }

// mockEpoch anchors generated bars so runs are reproducible.
var mockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// GenerateBars builds count daily bars drifting gently upward around basePrice.
func GenerateBars(basePrice float64, count int) model.Series {
	bars := make(model.Series, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   mockEpoch.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
