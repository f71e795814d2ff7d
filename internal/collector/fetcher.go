package collector

import (
	"context"
	"errors"
	"time"

	"StockScanner/internal/model"
)

var (
	// ErrAPIKeyMissing is returned by providers that need a key but were built
	// without one.
	ErrAPIKeyMissing = errors.New("data provider API key not configured")
	// ErrNoData means the provider answered but had no bars for the symbol.
	ErrNoData = errors.New("no data available")
)

// Provider returns the bars of one symbol between from and to, oldest first.
type Provider interface {
	FetchSeries(ctx context.Context, symbol string, res model.Resolution, from, to time.Time) (model.PriceSeries, error)
	Name() string
}

// Preflighter is implemented by providers that can detect a misconfiguration
// before any symbol is fetched.
type Preflighter interface {
	Preflight() error
}

// Preflight runs p's check when it has one.
func Preflight(p Provider) error {
	if pf, ok := p.(Preflighter); ok {
		return pf.Preflight()
	}
	return nil
}
