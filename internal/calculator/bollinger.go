package calculator

import "math"

// Bollinger computes Bollinger Bands: the SMA over period plus/minus
// numStdDev population standard deviations of the same window.
func Bollinger(closes []float64, period int, numStdDev float64) (upper, middle, lower []float64, err error) {
	middle, err = SMA(closes, period)
	if err != nil {
		return nil, nil, nil, err
	}
	upper = undefined(len(closes))
	lower = undefined(len(closes))
	for i := period - 1; i < len(closes); i++ {
		if math.IsNaN(middle[i]) {
			continue
		}
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			variance += math.Pow(closes[j]-middle[i], 2)
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + sd*numStdDev
		lower[i] = middle[i] - sd*numStdDev
	}
	return upper, middle, lower, nil
}
