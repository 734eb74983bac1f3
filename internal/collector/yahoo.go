package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

var yahooSymbolPattern = regexp.MustCompile(`^([A-Za-z^][A-Za-z0-9.^=-]*|[0-9]+\.[A-Za-z]+)$`)

// Yahoo column names used in RawRow.
const (
	yahooColTime   = "timestamp"
	yahooColOpen   = "open"
	yahooColHigh   = "high"
	yahooColLow    = "low"
	yahooColClose  = "close"
	yahooColVolume = "volume"
)

// YahooProvider serves alphabetic symbols from the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo provider. An empty baseURL uses the public endpoint.
func NewYahooProvider(baseURL, proxyURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Supports(ticker string) bool {
	return yahooSymbolPattern.MatchString(ticker)
}

func (p *YahooProvider) Columns() ColumnMap {
	return ColumnMap{
		Time:   yahooColTime,
		Open:   yahooColOpen,
		High:   yahooColHigh,
		Low:    yahooColLow,
		Close:  yahooColClose,
		Volume: yahooColVolume,
	}
}

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange picks the smallest chart range covering lookback trading days.
func yahooRange(lookback int) string {
	switch {
	case lookback <= 5:
		return "5d"
	case lookback <= 21:
		return "1mo"
	case lookback <= 63:
		return "3mo"
	case lookback <= 126:
		return "6mo"
	case lookback <= 252:
		return "1y"
	case lookback <= 504:
		return "2y"
	default:
		return "5y"
	}
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		p.BaseURL, url.PathEscape(p.yahooSymbol(symbol)), rng)

	var chart yahooChart
	err := getJSON(ctx, p.Client, u, http.Header{"User-Agent": {"Mozilla/5.0"}}, &chart)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	return &chart, nil
}

func (p *YahooProvider) FetchRawHistory(ctx context.Context, ticker string, lookback int) ([]RawRow, error) {
	chart, err := p.fetchChart(ctx, ticker, yahooRange(lookback))
	if err != nil || chart == nil {
		return nil, err
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: quote block missing")
	}
	quote := result.Indicators.Quote[0]

	rows := make([]RawRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		rows = append(rows, RawRow{
			yahooColTime:   float64(ts),
			yahooColOpen:   at(quote.Open, i),
			yahooColHigh:   at(quote.High, i),
			yahooColLow:    at(quote.Low, i),
			yahooColClose:  at(quote.Close, i),
			yahooColVolume: at(quote.Volume, i),
		})
	}
	return rows, nil
}

func (p *YahooProvider) FetchLatestPrice(ctx context.Context, ticker string) (float64, error) {
	chart, err := p.fetchChart(ctx, ticker, "1d")
	if err != nil {
		return 0, err
	}
	if chart == nil || len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("yahoo: no quote for %s", ticker)
	}
	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("yahoo: no market price for %s", ticker)
	}
	return price, nil
}

// at returns values[i], or nil when the column is shorter than the timestamps.
func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}
