package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"QuantAI/internal/model"
)

// zigzagCloses trends up over its last 20 bars without running overbought.
var zigzagCloses = []float64{
	100.0, 98.5, 97.0, 98.0, 100.0, 99.5, 98.5, 98.0, 97.0, 99.0,
	101.0, 103.0, 105.0, 106.5, 106.0, 104.5, 103.0, 102.5, 102.0, 103.0,
	102.5, 104.5, 104.0, 102.5, 104.5, 103.0, 104.0, 102.5, 101.0, 100.0,
	99.5, 98.0, 99.0, 100.5, 99.5, 99.0, 100.0, 101.5, 100.5, 99.5,
	98.5, 98.0, 100.0, 98.5, 97.0, 99.0, 100.5, 102.5, 104.5, 105.5,
	107.0, 106.0, 107.5, 109.0, 111.0, 110.0, 108.5, 109.5, 110.5, 109.5,
}

func seriesFrom(closes []float64, spread float64) model.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, len(closes))
	for i, c := range closes {
		s[i] = model.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + spread,
			Low:    c - spread,
			Close:  c,
			Volume: 1000,
		}
	}
	return s
}

var engines = []Engine{TalibEngine{}, NativeEngine{}}

func TestNew(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{"", BackendTalib, false},
		{"talib", BackendTalib, false},
		{"native", BackendNative, false},
		{"pandas", "", true},
	}
	for _, tt := range tests {
		e, err := New(tt.backend)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q): expected error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q): %v", tt.backend, err)
		}
		if e.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.backend, e.Name(), tt.want)
		}
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	for _, e := range engines {
		t.Run(e.Name(), func(t *testing.T) {
			got, err := e.Compute(model.Series{})
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("got %v, want empty set", got)
			}
		})
	}
}

func TestCompute_WarmUpResolvesToZero(t *testing.T) {
	tests := []struct {
		bars    int
		zero    []string
		nonZero []string
	}{
		{
			bars:    5,
			zero:    []string{model.IndRSI, model.IndMACD, model.IndMACDSignal, model.IndMACDHist, model.IndKDJK, model.IndKDJD, model.IndKDJJ, model.IndBBHigh, model.IndBBMid, model.IndBBLow, model.IndMA20},
			nonZero: []string{model.IndMA5, model.IndClose},
		},
		{
			bars:    14,
			zero:    []string{model.IndRSI, model.IndMACD, model.IndMACDSignal, model.IndMACDHist, model.IndBBHigh, model.IndBBMid, model.IndBBLow, model.IndMA20},
			nonZero: []string{model.IndKDJK, model.IndKDJD, model.IndKDJJ, model.IndMA5},
		},
		{
			bars:    20,
			zero:    []string{model.IndMACD, model.IndMACDSignal, model.IndMACDHist},
			nonZero: []string{model.IndRSI, model.IndKDJK, model.IndKDJD, model.IndKDJJ, model.IndBBHigh, model.IndBBMid, model.IndBBLow, model.IndMA5, model.IndMA20},
		},
		{
			bars:    30,
			zero:    []string{model.IndMACDSignal, model.IndMACDHist},
			nonZero: []string{model.IndMACD, model.IndRSI, model.IndKDJK, model.IndBBHigh, model.IndMA20},
		},
	}

	for _, e := range engines {
		for _, tt := range tests {
			series := seriesFrom(zigzagCloses[:tt.bars], 0.5)
			got, err := e.Compute(series)
			if err != nil {
				t.Fatalf("%s/%d bars: %v", e.Name(), tt.bars, err)
			}
			if len(got) != len(model.IndicatorNames) {
				t.Errorf("%s/%d bars: %d indicators, want %d", e.Name(), tt.bars, len(got), len(model.IndicatorNames))
			}
			for _, name := range tt.zero {
				if got[name] != 0 {
					t.Errorf("%s/%d bars: %s = %v, want 0", e.Name(), tt.bars, name, got[name])
				}
			}
			for _, name := range tt.nonZero {
				if got[name] == 0 {
					t.Errorf("%s/%d bars: %s = 0, want defined", e.Name(), tt.bars, name)
				}
			}
		}
	}
}

func TestCompute_AlwaysFinite(t *testing.T) {
	for _, e := range engines {
		for n := 1; n <= len(zigzagCloses); n++ {
			got, err := e.Compute(seriesFrom(zigzagCloses[:n], 0.5))
			if err != nil {
				t.Fatalf("%s/%d bars: %v", e.Name(), n, err)
			}
			for name, v := range got {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("%s/%d bars: %s = %v", e.Name(), n, name, v)
				}
			}
			if got[model.IndClose] != zigzagCloses[n-1] {
				t.Fatalf("%s/%d bars: Close = %v, want %v", e.Name(), n, got[model.IndClose], zigzagCloses[n-1])
			}
		}
	}
}

func TestCompute_KnownValues(t *testing.T) {
	want := map[string]float64{
		model.IndRSI:    62.7505,
		model.IndMACD:   2.5458,
		model.IndKDJK:   73.0769,
		model.IndKDJD:   71.6929,
		model.IndKDJJ:   75.8450,
		model.IndBBHigh: 114.1532,
		model.IndBBMid:  104.625,
		model.IndBBLow:  95.0968,
		model.IndMA5:    109.6,
		model.IndMA20:   104.625,
		model.IndClose:  109.5,
	}
	for _, e := range engines {
		got, err := e.Compute(seriesFrom(zigzagCloses, 0.5))
		if err != nil {
			t.Fatalf("%s: %v", e.Name(), err)
		}
		for name, w := range want {
			if math.Abs(got[name]-w) > 1e-3 {
				t.Errorf("%s: %s = %.4f, want %.4f", e.Name(), name, got[name], w)
			}
		}
		// Backends seed the signal EMA differently; the histogram sign agrees.
		if math.Abs(got[model.IndMACDSignal]-2.0274) > 0.1 {
			t.Errorf("%s: MACD_Signal = %.4f, want ~2.0274", e.Name(), got[model.IndMACDSignal])
		}
		if got[model.IndMACDHist] <= 0.3 {
			t.Errorf("%s: MACD_Hist = %.4f, want > 0.3", e.Name(), got[model.IndMACDHist])
		}
	}
}

func TestCompute_MalformedSeries(t *testing.T) {
	good := seriesFrom(zigzagCloses[:10], 0.5)

	unordered := append(model.Series{}, good...)
	unordered[4].Time = unordered[3].Time

	badShape := append(model.Series{}, good...)
	badShape[6].High = badShape[6].Low - 1

	negative := append(model.Series{}, good...)
	negative[2].Volume = -1

	tests := []struct {
		name   string
		series model.Series
		index  int
	}{
		{"duplicate timestamp", unordered, 4},
		{"high below low", badShape, 6},
		{"negative volume", negative, 2},
	}
	for _, e := range engines {
		for _, tt := range tests {
			_, err := e.Compute(tt.series)
			var ce *model.ComputationError
			if !errors.As(err, &ce) {
				t.Fatalf("%s/%s: err = %v, want ComputationError", e.Name(), tt.name, err)
			}
			if ce.Index != tt.index {
				t.Errorf("%s/%s: index = %d, want %d", e.Name(), tt.name, ce.Index, tt.index)
			}
		}
	}
}

func TestCompute_DoesNotMutateSeries(t *testing.T) {
	series := seriesFrom(zigzagCloses, 0.5)
	before := append(model.Series{}, series...)
	for _, e := range engines {
		if _, err := e.Compute(series); err != nil {
			t.Fatal(err)
		}
	}
	for i := range series {
		if series[i] != before[i] {
			t.Fatalf("bar %d changed", i)
		}
	}
}
