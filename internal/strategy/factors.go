package strategy

import (
	"fmt"

	"QuantAI/internal/model"
)

// scoreRSI rewards oversold and penalises overbought readings.
// Range: -15 .. +15
func scoreRSI(ind model.IndicatorSet) model.FactorScore {
	rsi := ind.Get(model.IndRSI)
	f := model.FactorScore{Name: "RSI", Commentary: fmt.Sprintf("RSI=%.1f neutral", rsi)}
	switch {
	case rsi < 30:
		f.Adjustment = 15
		f.Commentary = fmt.Sprintf("RSI=%.1f oversold", rsi)
	case rsi > 70:
		f.Adjustment = -15
		f.Commentary = fmt.Sprintf("RSI=%.1f overbought", rsi)
	}
	return f
}

// scoreMACD follows the sign of the MACD histogram.
// Range: -10 .. +10
func scoreMACD(ind model.IndicatorSet) model.FactorScore {
	hist := ind.Get(model.IndMACDHist)
	if hist > 0 {
		return model.FactorScore{Name: "MACD", Adjustment: 10, Commentary: fmt.Sprintf("hist=%+.4f bullish", hist)}
	}
	return model.FactorScore{Name: "MACD", Adjustment: -10, Commentary: fmt.Sprintf("hist=%+.4f bearish", hist)}
}

// scoreKDJ reads the %K line of the stochastic oscillator.
// Range: -10 .. +10
func scoreKDJ(ind model.IndicatorSet) model.FactorScore {
	k := ind.Get(model.IndKDJK)
	f := model.FactorScore{Name: "KDJ", Commentary: fmt.Sprintf("K=%.1f neutral", k)}
	switch {
	case k < 20:
		f.Adjustment = 10
		f.Commentary = fmt.Sprintf("K=%.1f oversold", k)
	case k > 80:
		f.Adjustment = -10
		f.Commentary = fmt.Sprintf("K=%.1f overbought", k)
	}
	return f
}

// scoreMATrend compares the short and long moving averages.
// Range: -10 .. +10
func scoreMATrend(ind model.IndicatorSet) model.FactorScore {
	ma5, ma20 := ind.Get(model.IndMA5), ind.Get(model.IndMA20)
	if ma5 > ma20 {
		return model.FactorScore{Name: "MA Trend", Adjustment: 10, Commentary: fmt.Sprintf("MA5 %.2f > MA20 %.2f", ma5, ma20)}
	}
	return model.FactorScore{Name: "MA Trend", Adjustment: -10, Commentary: fmt.Sprintf("MA5 %.2f <= MA20 %.2f", ma5, ma20)}
}

// scoreBollinger checks whether the close has left the bands.
// Range: -5 .. +5
func scoreBollinger(ind model.IndicatorSet) model.FactorScore {
	c, low, high := ind.Get(model.IndClose), ind.Get(model.IndBBLow), ind.Get(model.IndBBHigh)
	f := model.FactorScore{Name: "Bollinger", Commentary: "inside bands"}
	switch {
	case c < low:
		f.Adjustment = 5
		f.Commentary = fmt.Sprintf("close %.2f below lower band %.2f", c, low)
	case c > high:
		f.Adjustment = -5
		f.Commentary = fmt.Sprintf("close %.2f above upper band %.2f", c, high)
	}
	return f
}
