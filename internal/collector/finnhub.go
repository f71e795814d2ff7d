package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"StockScanner/internal/model"
)

const defaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubProvider implements Provider using Finnhub's /stock/candle endpoint.
type FinnhubProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewFinnhubProvider creates a Finnhub provider. The key is checked on use, so
// a provider built without one still reports ErrAPIKeyMissing clearly.
func NewFinnhubProvider(baseURL, apiKey, proxyURL string) *FinnhubProvider {
	if baseURL == "" {
		baseURL = defaultFinnhubBaseURL
	}
	return &FinnhubProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *FinnhubProvider) Name() string { return "finnhub" }

func (f *FinnhubProvider) Preflight() error {
	if f.APIKey == "" {
		return ErrAPIKeyMissing
	}
	return nil
}

// finnhubCandles is the columnar response of /stock/candle. S is "ok" or
// "no_data".
type finnhubCandles struct {
	S string    `json:"s"`
	T []int64   `json:"t"`
	O []float64 `json:"o"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	C []float64 `json:"c"`
	V []float64 `json:"v"`
}

func (f *FinnhubProvider) FetchSeries(ctx context.Context, symbol string, res model.Resolution, from, to time.Time) (model.PriceSeries, error) {
	series := model.PriceSeries{Symbol: symbol, Resolution: res}
	if err := f.Preflight(); err != nil {
		return series, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", string(res))
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))
	q.Set("token", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/stock/candle?"+q.Encode(), nil)
	if err != nil {
		return series, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return series, fmt.Errorf("finnhub fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return series, fmt.Errorf("finnhub read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return series, fmt.Errorf("finnhub %s: status %d, body: %s", symbol, resp.StatusCode, string(body))
	}

	var candles finnhubCandles
	if err := json.Unmarshal(body, &candles); err != nil {
		return series, fmt.Errorf("finnhub decode: %w", err)
	}
	if candles.S == "no_data" || len(candles.T) == 0 {
		return series, fmt.Errorf("finnhub %s: %w", symbol, ErrNoData)
	}
	n := len(candles.T)
	if len(candles.C) != n || len(candles.H) != n || len(candles.L) != n {
		return series, fmt.Errorf("finnhub %s: ragged candle arrays", symbol)
	}

	series.Bars = make([]model.OHLCV, n)
	for i, ts := range candles.T {
		bar := model.OHLCV{
			Time:  time.Unix(ts, 0),
			High:  candles.H[i],
			Low:   candles.L[i],
			Close: candles.C[i],
		}
		if i < len(candles.O) {
			bar.Open = candles.O[i]
		}
		if i < len(candles.V) {
			bar.Volume = candles.V[i]
		}
		series.Bars[i] = bar
	}
	return series, nil
}
