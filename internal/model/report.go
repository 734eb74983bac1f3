package model

import "time"

// Report is the full output of a single analysis request.
type Report struct {
	ID           string         `json:"id"`
	Ticker       string         `json:"ticker"`
	CurrentPrice float64        `json:"current_price"`
	HoldingCost  *float64       `json:"holding_cost,omitempty"`
	AnalyzedAt   time.Time      `json:"analysis_date"`
	Bars         int            `json:"bars"`
	Analysis     AnalysisResult `json:"analysis"`
	Sentiment    Sentiment      `json:"sentiment"`
	Advice       AdviceResult   `json:"advice"`
	Summary      string         `json:"summary"`
}
