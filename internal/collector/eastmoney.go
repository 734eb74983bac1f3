package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	eastMoneyHistoryURL = "https://push2his.eastmoney.com"
	eastMoneyQuoteURL   = "https://push2.eastmoney.com"
)

// EastMoney kline columns, in the order of the fields2 request parameter.
const (
	emColDate   = "日期"
	emColOpen   = "开盘"
	emColClose  = "收盘"
	emColHigh   = "最高"
	emColLow    = "最低"
	emColVolume = "成交量"
)

var (
	aShareCode   = regexp.MustCompile(`^[0-9]{6}$`)
	klineColumns = []string{emColDate, emColOpen, emColClose, emColHigh, emColLow, emColVolume}
	chinaTZ      = time.FixedZone("CST", 8*3600)
)

// EastMoneyProvider serves 6-digit A-share codes from the EastMoney kline API.
type EastMoneyProvider struct {
	HistoryURL string
	QuoteURL   string
	Client     *http.Client
	now        func() time.Time
}

// NewEastMoneyProvider creates an EastMoney provider. A non-empty baseURL
// replaces both the history and the quote host.
func NewEastMoneyProvider(baseURL, proxyURL string, timeout time.Duration) *EastMoneyProvider {
	p := &EastMoneyProvider{
		HistoryURL: eastMoneyHistoryURL,
		QuoteURL:   eastMoneyQuoteURL,
		Client:     newHTTPClient(proxyURL, timeout),
		now:        time.Now,
	}
	if baseURL != "" {
		p.HistoryURL = strings.TrimRight(baseURL, "/")
		p.QuoteURL = p.HistoryURL
	}
	return p
}

func (p *EastMoneyProvider) Name() string { return "eastmoney" }

func (p *EastMoneyProvider) Supports(ticker string) bool { return aShareCode.MatchString(ticker) }

func (p *EastMoneyProvider) Columns() ColumnMap {
	return ColumnMap{
		Time:       emColDate,
		Open:       emColOpen,
		High:       emColHigh,
		Low:        emColLow,
		Close:      emColClose,
		Volume:     emColVolume,
		TimeLayout: "2006-01-02",
		Location:   chinaTZ,
	}
}

// secID prefixes the code with its exchange: 1 for Shanghai, 0 for Shenzhen and Beijing.
func secID(code string) string {
	if strings.HasPrefix(code, "6") || strings.HasPrefix(code, "9") {
		return "1." + code
	}
	return "0." + code
}

var emHeader = http.Header{
	"User-Agent": {"Mozilla/5.0"},
	"Referer":    {"https://quote.eastmoney.com/"},
}

type emKlineResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

func (p *EastMoneyProvider) FetchRawHistory(ctx context.Context, ticker string, lookback int) ([]RawRow, error) {
	// Calendar days overshoot trading days; the fetcher truncates.
	end := p.now().In(chinaTZ)
	start := end.AddDate(0, 0, -int(math.Ceil(float64(lookback)*1.5)))

	q := url.Values{}
	q.Set("secid", secID(ticker))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56")
	q.Set("klt", "101") // daily
	q.Set("fqt", "1")   // forward-adjusted
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("lmt", fmt.Sprint(lookback))
	endpoint := p.HistoryURL + "/api/qt/stock/kline/get?" + q.Encode()

	var resp emKlineResponse
	err := getJSON(ctx, p.Client, endpoint, emHeader, &resp)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eastmoney: %w", err)
	}
	if resp.Data == nil {
		return nil, nil
	}

	rows := make([]RawRow, 0, len(resp.Data.Klines))
	for i, line := range resp.Data.Klines {
		fields := strings.Split(line, ",")
		if len(fields) < len(klineColumns) {
			return nil, fmt.Errorf("eastmoney: kline %d has %d fields, want %d", i, len(fields), len(klineColumns))
		}
		row := make(RawRow, len(klineColumns))
		for j, col := range klineColumns {
			row[col] = fields[j]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type emQuoteResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Price    any `json:"f43"`
		Decimals any `json:"f59"`
	} `json:"data"`
}

func (p *EastMoneyProvider) FetchLatestPrice(ctx context.Context, ticker string) (float64, error) {
	q := url.Values{}
	q.Set("secid", secID(ticker))
	q.Set("fields", "f43,f57,f58,f59")
	endpoint := p.QuoteURL + "/api/qt/stock/get?" + q.Encode()

	var resp emQuoteResponse
	if err := getJSON(ctx, p.Client, endpoint, emHeader, &resp); err != nil {
		return 0, fmt.Errorf("eastmoney: %w", err)
	}
	if resp.Data == nil {
		return 0, fmt.Errorf("eastmoney: no quote for %s", ticker)
	}

	// f43 is the price scaled by 10^f59; "-" while suspended.
	raw, ok, err := parseNumber(resp.Data.Price)
	if err != nil || !ok {
		return 0, fmt.Errorf("eastmoney: no price for %s", ticker)
	}
	decimals, ok, _ := parseNumber(resp.Data.Decimals)
	if !ok {
		decimals = 2
	}
	return raw / math.Pow(10, decimals), nil
}
