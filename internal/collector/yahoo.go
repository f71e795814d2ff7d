package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockScanner/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance"

// YahooProvider implements Provider using the public Yahoo Finance chart API.
// No key is required.
type YahooProvider struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo provider with optional proxy support. An
// empty baseURL selects the public endpoint.
func NewYahooProvider(baseURL, proxyURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooProvider{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *YahooProvider) Name() string { return "yahoo" }

func (f *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooInterval maps a resolution onto Yahoo's interval parameter.
func yahooInterval(res model.Resolution) string {
	switch res {
	case model.ResolutionWeekly:
		return "1wk"
	case model.ResolutionMonthly:
		return "1mo"
	}
	return "1d"
}

// yahooRange picks the smallest chart range covering the requested window.
func yahooRange(from, to time.Time) string {
	days := int(to.Sub(from).Hours() / 24)
	switch {
	case days <= 7:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	}
	return "5y"
}

// yahooChart is the response structure from Yahoo Finance chart API. Quote
// arrays hold null for bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(v []*float64, i int) (float64, bool) {
	if i >= len(v) || v[i] == nil {
		return 0, false
	}
	return *v[i], true
}

func (f *YahooProvider) FetchSeries(ctx context.Context, symbol string, res model.Resolution, from, to time.Time) (model.PriceSeries, error) {
	series := model.PriceSeries{Symbol: symbol, Resolution: res}

	q := url.Values{}
	q.Set("interval", yahooInterval(res))
	q.Set("range", yahooRange(from, to))
	q.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return series, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return series, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return series, fmt.Errorf("yahoo %s: status %d, body: %s", symbol, resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return series, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return series, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return series, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // no trades (holidays etc.)
		}
		h, ok := at(quote.High, i)
		if !ok {
			h = c
		}
		l, ok := at(quote.Low, i)
		if !ok {
			l = c
		}
		o, ok := at(quote.Open, i)
		if !ok {
			o = c
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	if len(bars) == 0 {
		return series, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	series.Bars = bars
	return series, nil
}
