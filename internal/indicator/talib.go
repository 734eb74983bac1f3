package indicator

import (
	"math"

	"github.com/markcheno/go-talib"

	"QuantAI/internal/model"
)

// Minimum series lengths before a TA-Lib function yields a value at the last bar.
// TA-Lib indexes past the end of short inputs, so every call is guarded.
const (
	talibRSIMin   = RSIPeriod + 1
	talibEMAMin   = MACDSlow
	talibMACDMin  = MACDSlow + MACDSignal - 1
	talibStochMin = KDJFastK + KDJSlowK + KDJSlowD - 2
	talibBBMin    = BBPeriod
)

// TalibEngine computes indicators with the Go port of TA-Lib.
type TalibEngine struct{}

func (TalibEngine) Name() string { return BackendTalib }

func (TalibEngine) Compute(series model.Series) (model.IndicatorSet, error) {
	if series.Empty() {
		return model.IndicatorSet{}, nil
	}
	if err := Validate(series); err != nil {
		return nil, err
	}

	closes := series.Closes()
	n := len(closes)
	raw := make(map[string]float64, len(model.IndicatorNames))
	for _, name := range model.IndicatorNames {
		raw[name] = math.NaN()
	}

	if n >= talibRSIMin {
		raw[model.IndRSI] = lastOf(talib.Rsi(closes, RSIPeriod))
	}

	switch {
	case n >= talibMACDMin:
		macd, sig, _ := talib.Macd(closes, MACDFast, MACDSlow, MACDSignal)
		raw[model.IndMACD] = lastOf(macd)
		raw[model.IndMACDSignal] = lastOf(sig)
	case n >= talibEMAMin:
		// The MACD line is defined before its signal line.
		raw[model.IndMACD] = lastOf(talib.Ema(closes, MACDFast)) - lastOf(talib.Ema(closes, MACDSlow))
	}

	if n >= talibStochMin {
		k, d := talib.Stoch(series.Highs(), series.Lows(), closes,
			KDJFastK, KDJSlowK, talib.SMA, KDJSlowD, talib.SMA)
		raw[model.IndKDJK] = lastOf(k)
		raw[model.IndKDJD] = lastOf(d)
	}

	if n >= talibBBMin {
		upper, middle, lower := talib.BBands(closes, BBPeriod, BBStdDev, BBStdDev, talib.SMA)
		raw[model.IndBBHigh] = lastOf(upper)
		raw[model.IndBBMid] = lastOf(middle)
		raw[model.IndBBLow] = lastOf(lower)
	}

	if n >= MAShortPeriod {
		raw[model.IndMA5] = lastOf(talib.Sma(closes, MAShortPeriod))
	}
	if n >= MALongPeriod {
		raw[model.IndMA20] = lastOf(talib.Sma(closes, MALongPeriod))
	}

	return assemble(raw, series.Last().Close), nil
}

func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
