package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
)

// BatchOptions controls window size and the pause between windows.
type BatchOptions struct {
	Size  int
	Delay time.Duration
}

// DefaultBatchOptions returns the pacing suited to a provider's rate limits.
// Unknown providers get the conservative Finnhub pacing.
func DefaultBatchOptions(provider string) BatchOptions {
	if provider == "yahoo" {
		return BatchOptions{Size: 10, Delay: 500 * time.Millisecond}
	}
	return BatchOptions{Size: 5, Delay: time.Second}
}

// BatchResult holds the series that were fetched and the symbols that were not.
type BatchResult struct {
	Series map[string]model.PriceSeries
	Failed []string // universe order
}

// Batcher fetches a universe window by window. Within a window every symbol is
// fetched concurrently; a failed symbol is logged and skipped.
type Batcher struct {
	provider Provider
	opts     BatchOptions
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewBatcher creates a Batcher. A non-positive size falls back to one symbol
// per window; log and m may be nil.
func NewBatcher(p Provider, opts BatchOptions, log *zap.Logger, m *metrics.Metrics) *Batcher {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Batcher{provider: p, opts: opts, log: log.Named("batcher"), metrics: m}
}

// Fetch retrieves every symbol of universe between from and to. Cancellation
// is checked before each window and during the pause; the series gathered so
// far are returned together with ctx.Err().
func (b *Batcher) Fetch(ctx context.Context, universe []string, res model.Resolution, from, to time.Time) (BatchResult, error) {
	var (
		mu     sync.Mutex
		failed = make(map[string]bool)
	)
	result := BatchResult{Series: make(map[string]model.PriceSeries, len(universe))}

	collectFailed := func() {
		for _, sym := range universe {
			if failed[sym] {
				result.Failed = append(result.Failed, sym)
			}
		}
	}

	for start := 0; start < len(universe); start += b.opts.Size {
		if err := ctx.Err(); err != nil {
			collectFailed()
			return result, err
		}

		end := min(start+b.opts.Size, len(universe))
		window := universe[start:end]
		windowStart := time.Now()

		var g errgroup.Group
		g.SetLimit(b.opts.Size)
		for _, symbol := range window {
			symbol := symbol
			g.Go(func() error {
				series, err := b.provider.FetchSeries(ctx, symbol, res, from, to)
				b.metrics.ObserveFetch(b.provider.Name(), err)
				if err != nil {
					b.log.Warn("fetch failed",
						zap.String("provider", b.provider.Name()),
						zap.String("symbol", symbol),
						zap.Error(err))
					mu.Lock()
					failed[symbol] = true
					mu.Unlock()
					return nil
				}
				mu.Lock()
				result.Series[symbol] = series
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait() // workers never return errors

		b.metrics.ObserveWindow(time.Since(windowStart))
		b.log.Debug("window done",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("fetched", len(result.Series)),
			zap.Duration("took", time.Since(windowStart)))

		if end < len(universe) && b.opts.Delay > 0 {
			if err := sleep(ctx, b.opts.Delay); err != nil {
				collectFailed()
				return result, err
			}
		}
	}

	collectFailed()
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
