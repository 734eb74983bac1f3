package calculator

import "errors"

// Stochastic computes the slow stochastic oscillator: raw %K over fastK bars,
// %K as the SMA of raw %K over slowK, and %D as the SMA of %K over slowD.
// A window whose high equals its low reads 0 for raw %K.
func Stochastic(highs, lows, closes []float64, fastK, slowK, slowD int) (k, d []float64, err error) {
	if fastK <= 0 || slowK <= 0 || slowD <= 0 {
		return nil, nil, errPeriod
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return nil, nil, errors.New("high, low and close series differ in length")
	}

	raw := undefined(len(closes))
	for i := fastK - 1; i < len(closes); i++ {
		highest, lowest := highs[i], lows[i]
		for j := i - fastK + 1; j < i; j++ {
			if highs[j] > highest {
				highest = highs[j]
			}
			if lows[j] < lowest {
				lowest = lows[j]
			}
		}
		if highest-lowest > 0 {
			raw[i] = (closes[i] - lowest) / (highest - lowest) * 100
		} else {
			raw[i] = 0
		}
	}

	k, _ = SMA(raw, slowK)
	d, _ = SMA(k, slowD)
	return k, d, nil
}
