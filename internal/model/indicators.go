package model

// Indicator names making up the fixed IndicatorSet vocabulary.
const (
	IndRSI        = "RSI"
	IndMACD       = "MACD"
	IndMACDSignal = "MACD_Signal"
	IndMACDHist   = "MACD_Hist"
	IndKDJK       = "KDJ_K"
	IndKDJD       = "KDJ_D"
	IndKDJJ       = "KDJ_J"
	IndBBHigh     = "BB_High"
	IndBBMid      = "BB_Mid"
	IndBBLow      = "BB_Low"
	IndMA5        = "MA5"
	IndMA20       = "MA20"
	IndClose      = "Close"
)

// IndicatorNames lists the vocabulary in presentation order.
var IndicatorNames = []string{
	IndRSI, IndMACD, IndMACDSignal, IndMACDHist,
	IndKDJK, IndKDJD, IndKDJJ,
	IndBBHigh, IndBBMid, IndBBLow,
	IndMA5, IndMA20, IndClose,
}

// IndicatorSet maps indicator names to their value at the last bar of a series.
// Values are always finite; undefined (warm-up) values are stored as 0.
type IndicatorSet map[string]float64

// Get returns the named value, or 0 when it is absent.
func (s IndicatorSet) Get(name string) float64 {
	return s[name]
}
