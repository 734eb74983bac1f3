package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"QuantAI/internal/model"
)

const yahooChartJSON = `{"chart":{"result":[{
  "meta":{"regularMarketPrice":187.5},
  "timestamp":[1704153600,1704240000,1704326400,1704412800],
  "indicators":{"quote":[{
    "open":[185.0,184.0,null,182.0],
    "high":[186.0,185.5,null,183.5],
    "low":[183.0,182.5,null,181.0],
    "close":[185.5,183.0,null,182.5],
    "volume":[1000,1100,null,900]
  }]}
}],"error":null}}`

func TestYahooProvider_FetchHistory(t *testing.T) {
	var gotPath, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte(yahooChartJSON))
	}))
	defer srv.Close()

	f := newTestFetcher(NewYahooProvider(srv.URL, "", time.Second), newFakeClock())
	series, err := f.FetchHistory(context.Background(), "AAPL", 500)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if gotPath != "/v8/finance/chart/AAPL" {
		t.Errorf("path = %q", gotPath)
	}
	if gotRange != "2y" {
		t.Errorf("range = %q, want 2y", gotRange)
	}
	// the null holiday row is skipped
	if len(series) != 3 {
		t.Fatalf("got %d bars, want 3", len(series))
	}
	if series[0].Close != 185.5 || series.Last().Close != 182.5 {
		t.Errorf("closes = %v", series.Closes())
	}
	if !series[0].Time.Equal(time.Unix(1704153600, 0)) {
		t.Errorf("first bar time = %v", series[0].Time)
	}
}

func TestYahooProvider_SymbolMap(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(yahooChartJSON))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", time.Second)
	if _, err := p.FetchRawHistory(context.Background(), "SPX500", 10); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("path = %q, want ^GSPC", gotPath)
	}
}

func TestYahooProvider_UnknownTicker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http 404", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"api not found", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newTestFetcher(NewYahooProvider(srv.URL, "", time.Second), newFakeClock())
			series, err := f.FetchHistory(context.Background(), "NOPE", 10)
			if err != nil {
				t.Fatalf("err = %v, want nil", err)
			}
			if !series.Empty() {
				t.Errorf("got %d bars, want empty", len(series))
			}
		})
	}
}

func TestYahooProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"bad json", http.StatusOK, "{not json"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid range"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := newTestFetcher(NewYahooProvider(srv.URL, "", time.Second), newFakeClock())
			_, err := f.FetchHistory(context.Background(), "AAPL", 10)
			var fe *model.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FetchError", err)
			}
		})
	}
}

func TestYahooProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(yahooChartJSON))
	}))
	defer srv.Close()

	f := newTestFetcher(NewYahooProvider(srv.URL, "", 20*time.Millisecond), newFakeClock())
	_, err := f.FetchHistory(context.Background(), "AAPL", 10)
	if !model.IsRetryable(err) {
		t.Fatalf("err = %v, want retryable FetchError", err)
	}
}

func TestYahooProvider_LatestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("range") != "1d" {
			t.Errorf("range = %q, want 1d", r.URL.Query().Get("range"))
		}
		w.Write([]byte(yahooChartJSON))
	}))
	defer srv.Close()

	f := newTestFetcher(NewYahooProvider(srv.URL, "", time.Second), newFakeClock())
	price, err := f.GetCurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if price != 187.5 {
		t.Errorf("price = %v, want 187.5", price)
	}
}

func TestYahooProvider_Supports(t *testing.T) {
	p := NewYahooProvider("", "", 0)
	for ticker, want := range map[string]bool{
		"AAPL":      true,
		"BRK-B":     true,
		"^GSPC":     true,
		"EURUSD=X":  true,
		"0700.HK":   true,
		"600519.SS": true,
		"600519":    false,
		"":          false,
		"A B":       false,
	} {
		if got := p.Supports(ticker); got != want {
			t.Errorf("Supports(%q) = %v, want %v", ticker, got, want)
		}
	}
	if !strings.HasPrefix(p.BaseURL, "https://") {
		t.Errorf("default base URL = %q", p.BaseURL)
	}
}

func TestYahooRange(t *testing.T) {
	tests := []struct {
		lookback int
		want     string
	}{
		{1, "5d"}, {5, "5d"}, {6, "1mo"}, {21, "1mo"}, {63, "3mo"},
		{126, "6mo"}, {252, "1y"}, {253, "2y"}, {504, "2y"}, {505, "5y"},
	}
	for _, tt := range tests {
		if got := yahooRange(tt.lookback); got != tt.want {
			t.Errorf("yahooRange(%d) = %q, want %q", tt.lookback, got, tt.want)
		}
	}
}
