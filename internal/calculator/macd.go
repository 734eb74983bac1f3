package calculator

import (
	"errors"
	"math"
)

// MACD computes the MACD line (fast EMA minus slow EMA), its signal line
// (EMA of the MACD line) and the histogram (MACD minus signal).
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, nil, errPeriod
	}
	if fast >= slow {
		return nil, nil, nil, errors.New("fast period must be shorter than slow period")
	}
	fastEMA, _ := EMA(closes, fast)
	slowEMA, _ := EMA(closes, slow)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i] // NaN until the slow EMA is defined
	}
	sig, _ = EMA(macd, signal)

	hist = make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(macd[i]) || math.IsNaN(sig[i]) {
			hist[i] = math.NaN()
			continue
		}
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist, nil
}
