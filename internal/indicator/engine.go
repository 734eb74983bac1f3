package indicator

import (
	"fmt"
	"math"

	"QuantAI/internal/model"
)

// Standard parameters of the indicator vocabulary.
const (
	RSIPeriod     = 14
	MACDFast      = 12
	MACDSlow      = 26
	MACDSignal    = 9
	KDJFastK      = 9
	KDJSlowK      = 3
	KDJSlowD      = 3
	BBPeriod      = 20
	BBStdDev      = 2.0
	MAShortPeriod = 5
	MALongPeriod  = 20
)

// Engine computes the indicator set at the last bar of a series.
type Engine interface {
	Compute(series model.Series) (model.IndicatorSet, error)
	Name() string
}

// Backend names accepted by New.
const (
	BackendTalib  = "talib"
	BackendNative = "native"
)

// New returns the engine for the named backend.
func New(backend string) (Engine, error) {
	switch backend {
	case BackendTalib, "":
		return TalibEngine{}, nil
	case BackendNative:
		return NativeEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown indicator backend %q", backend)
	}
}

// Validate checks that a series is strictly increasing in time and that every
// bar is well formed.
func Validate(series model.Series) error {
	for i, b := range series {
		if !b.Valid() {
			return &model.ComputationError{Index: i, Reason: "bar values out of OHLCV shape"}
		}
		if i > 0 && !b.Time.After(series[i-1].Time) {
			return &model.ComputationError{Index: i, Reason: "timestamps not strictly increasing"}
		}
	}
	return nil
}

// resolve maps an undefined warm-up value to the neutral default 0.
func resolve(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// assemble builds the resolved IndicatorSet from raw last-bar readings.
// J and the histogram are derived only when their inputs are defined.
func assemble(raw map[string]float64, lastClose float64) model.IndicatorSet {
	k, d := raw[model.IndKDJK], raw[model.IndKDJD]
	raw[model.IndKDJJ] = 3*k - 2*d

	m, s := raw[model.IndMACD], raw[model.IndMACDSignal]
	raw[model.IndMACDHist] = m - s

	set := make(model.IndicatorSet, len(model.IndicatorNames))
	for _, name := range model.IndicatorNames {
		set[name] = resolve(raw[name])
	}
	set[model.IndClose] = lastClose
	return set
}
