package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
)

// NewProvider builds the provider named in configuration.
func NewProvider(name, baseURL, apiKey, proxyURL string) (Provider, error) {
	switch name {
	case "yahoo":
		return NewYahooProvider(baseURL, proxyURL), nil
	case "finnhub":
		return NewFinnhubProvider(baseURL, apiKey, proxyURL), nil
	}
	return nil, fmt.Errorf("unknown data provider %q", name)
}

// MockProvider returns controllable generated data for development and
// testing. Symbols listed in Fail return an error.
type MockProvider struct {
	Price float64
	Bars  int
	Data  map[string][]model.OHLCV
	Fail  map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchSeries(ctx context.Context, symbol string, res model.Resolution, _, _ time.Time) (model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	series := model.PriceSeries{Symbol: symbol, Resolution: res}
	if err := ctx.Err(); err != nil {
		return series, err
	}
	if err, ok := m.Fail[symbol]; ok {
		return series, err
	}
	if bars, ok := m.Data[symbol]; ok {
		series.Bars = bars
		return series, nil
	}
	n := m.Bars
	if n == 0 {
		n = 100
	}
	series.Bars = generateMockBars(m.Price, n)
	return series, nil
}

// Calls returns the symbols requested so far, in call order.
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// generateMockBars produces a gently oscillating daily series ending today.
func generateMockBars(basePrice float64, count int) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	now := time.Now()
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/6))
		bars[i] = model.OHLCV{
			Time:   now.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collection is the data gathered for one scan.
type Collection struct {
	Series []model.SymbolSeries // universe order, fetched symbols only
	Failed []string
}

// Collector pre-flights the provider and batches the universe through it.
type Collector struct {
	provider Provider
	batcher  *Batcher
	log      *zap.Logger
	now      func() time.Time
}

// NewCollector creates a Collector over p with the given pacing.
func NewCollector(p Provider, opts BatchOptions, log *zap.Logger, m *metrics.Metrics) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		provider: p,
		batcher:  NewBatcher(p, opts, log, m),
		log:      log.Named("collector"),
		now:      time.Now,
	}
}

// Provider returns the underlying data provider.
func (c *Collector) Provider() Provider { return c.provider }

// Collect fetches lookbackDays of history for every distinct symbol in
// universe, keeping first-occurrence order. A provider misconfiguration aborts before any fetch. On cancellation the
// partial collection is returned with the context error.
func (c *Collector) Collect(ctx context.Context, universe []string, res model.Resolution, lookbackDays int) (Collection, error) {
	if err := Preflight(c.provider); err != nil {
		return Collection{}, fmt.Errorf("%s preflight: %w", c.provider.Name(), err)
	}

	universe = uniqueSymbols(universe)
	to := c.now()
	from := to.AddDate(0, 0, -lookbackDays)

	batch, err := c.batcher.Fetch(ctx, universe, res, from, to)
	out := Collection{Failed: batch.Failed}
	for _, sym := range universe {
		if s, ok := batch.Series[sym]; ok {
			out.Series = append(out.Series, s.ToSymbolSeries())
		}
	}
	c.log.Info("collected",
		zap.String("provider", c.provider.Name()),
		zap.Int("universe", len(universe)),
		zap.Int("fetched", len(out.Series)),
		zap.Int("failed", len(out.Failed)))
	if err != nil {
		return out, fmt.Errorf("batch fetch: %w", err)
	}
	return out, nil
}

func uniqueSymbols(universe []string) []string {
	seen := make(map[string]bool, len(universe))
	out := make([]string, 0, len(universe))
	for _, sym := range universe {
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
