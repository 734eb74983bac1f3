package strategy

import (
	"fmt"

	"QuantAI/internal/model"
)

// Baseline is the neutral starting score.
const Baseline = 50.0

// mapSignal maps a clamped score to its signal. The bands partition [0,100]:
// [80,100] STRONG_BUY, [60,80) BUY, (40,60) HOLD, [20,40] SELL, [0,20) STRONG_SELL.
func mapSignal(score float64) model.Signal {
	switch {
	case score >= 80:
		return model.SignalStrongBuy
	case score >= 60:
		return model.SignalBuy
	case score > 40:
		return model.SignalHold
	case score >= 20:
		return model.SignalSell
	default:
		return model.SignalStrongSell
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Score computes the composite technical score from an indicator set.
// An empty set (no bars) scores 0 with a HOLD signal.
func Score(ind model.IndicatorSet) model.AnalysisResult {
	if len(ind) == 0 {
		return model.EmptyAnalysis()
	}

	factors := []model.FactorScore{
		scoreRSI(ind),
		scoreMACD(ind),
		scoreKDJ(ind),
		scoreMATrend(ind),
		scoreBollinger(ind),
	}

	total := Baseline
	for _, f := range factors {
		total += f.Adjustment
	}
	score := Clamp(total, 0, 100)
	signal := mapSignal(score)

	return model.AnalysisResult{
		Score:      score,
		Signal:     signal,
		Indicators: ind,
		Factors:    factors,
		Summary:    fmt.Sprintf("Technical Score: %.0f/100 (%s).", score, signal),
	}
}
