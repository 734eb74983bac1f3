package model

import (
	"math"
	"time"
)

// Bar represents a single OHLCV period.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Valid reports whether the bar satisfies the OHLCV shape: finite, non-negative
// values with the open and close inside the high/low range.
func (b Bar) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if b.High < b.Low {
		return false
	}
	return b.Open <= b.High && b.Open >= b.Low && b.Close <= b.High && b.Close >= b.Low
}

// DefaultLookback is the default maximum number of bars kept in a Series.
const DefaultLookback = 500

// Series is a chronologically ordered run of bars. A nil or empty Series means "no data".
type Series []Bar

// Empty reports whether the series carries no bars.
func (s Series) Empty() bool { return len(s) == 0 }

// Last returns the most recent bar. The series must not be empty.
func (s Series) Last() Bar { return s[len(s)-1] }

// Closes extracts the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices in order.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices in order.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Tail returns the most recent n bars, preserving order.
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
