package model

import (
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Resolution is the bar size requested from a data provider.
type Resolution string

const (
	ResolutionDaily   Resolution = "D"
	ResolutionWeekly  Resolution = "W"
	ResolutionMonthly Resolution = "M"
)

// ParseResolution accepts D/W/M in any case.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(strings.ToUpper(strings.TrimSpace(s))) {
	case ResolutionDaily:
		return ResolutionDaily, nil
	case ResolutionWeekly:
		return ResolutionWeekly, nil
	case ResolutionMonthly:
		return ResolutionMonthly, nil
	}
	return "", fmt.Errorf("unknown resolution %q", s)
}

// PriceSeries holds the bars of one symbol in ascending time order, exactly as
// returned by the provider.
type PriceSeries struct {
	Symbol     string
	Resolution Resolution
	Bars       []OHLCV
}

// Len returns the number of bars.
func (p PriceSeries) Len() int { return len(p.Bars) }

func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Close
	}
	return out
}

func (p PriceSeries) Highs() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.High
	}
	return out
}

func (p PriceSeries) Lows() []float64 {
	out := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = b.Low
	}
	return out
}

// SymbolSeries is the per-symbol input to a scan.
type SymbolSeries struct {
	Symbol string
	Close  []float64
	High   []float64
	Low    []float64
}

// ToSymbolSeries extracts the close/high/low columns used by the scans.
func (p PriceSeries) ToSymbolSeries() SymbolSeries {
	return SymbolSeries{
		Symbol: p.Symbol,
		Close:  p.Closes(),
		High:   p.Highs(),
		Low:    p.Lows(),
	}
}
