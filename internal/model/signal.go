package model

// Signal is the categorical reading of a technical score.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

// FactorScore represents a single scoring rule's contribution.
type FactorScore struct {
	Name       string  `json:"name"`
	Adjustment float64 `json:"adjustment"`
	Commentary string  `json:"commentary"`
}

// AnalysisResult is the output of the scoring engine.
type AnalysisResult struct {
	Score      float64       `json:"score"`
	Signal     Signal        `json:"signal"`
	Indicators IndicatorSet  `json:"indicators"`
	Factors    []FactorScore `json:"factors,omitempty"`
	Summary    string        `json:"summary"`
}

// EmptyAnalysis is the result for a series with no bars.
func EmptyAnalysis() AnalysisResult {
	return AnalysisResult{
		Score:      0,
		Signal:     SignalHold,
		Indicators: IndicatorSet{},
		Summary:    "No data",
	}
}
