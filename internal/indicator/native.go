package indicator

import (
	"QuantAI/internal/calculator"
	"QuantAI/internal/model"
)

// NativeEngine computes indicators with the in-repo calculator package.
// It is the fallback when the TA-Lib port is not wanted.
type NativeEngine struct{}

func (NativeEngine) Name() string { return BackendNative }

func (NativeEngine) Compute(series model.Series) (model.IndicatorSet, error) {
	if series.Empty() {
		return model.IndicatorSet{}, nil
	}
	if err := Validate(series); err != nil {
		return nil, err
	}

	closes := series.Closes()
	raw := make(map[string]float64, len(model.IndicatorNames))

	rsi, err := calculator.RSI(closes, RSIPeriod)
	if err != nil {
		return nil, err
	}
	raw[model.IndRSI] = calculator.Last(rsi)

	macd, sig, _, err := calculator.MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		return nil, err
	}
	raw[model.IndMACD] = calculator.Last(macd)
	raw[model.IndMACDSignal] = calculator.Last(sig)

	k, d, err := calculator.Stochastic(series.Highs(), series.Lows(), closes, KDJFastK, KDJSlowK, KDJSlowD)
	if err != nil {
		return nil, err
	}
	raw[model.IndKDJK] = calculator.Last(k)
	raw[model.IndKDJD] = calculator.Last(d)

	upper, middle, lower, err := calculator.Bollinger(closes, BBPeriod, BBStdDev)
	if err != nil {
		return nil, err
	}
	raw[model.IndBBHigh] = calculator.Last(upper)
	raw[model.IndBBMid] = calculator.Last(middle)
	raw[model.IndBBLow] = calculator.Last(lower)

	ma5, err := calculator.SMA(closes, MAShortPeriod)
	if err != nil {
		return nil, err
	}
	ma20, err := calculator.SMA(closes, MALongPeriod)
	if err != nil {
		return nil, err
	}
	raw[model.IndMA5] = calculator.Last(ma5)
	raw[model.IndMA20] = calculator.Last(ma20)

	return assemble(raw, series.Last().Close), nil
}
