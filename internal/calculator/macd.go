package calculator

import "StockScanner/internal/model"

// MACDParams configures MACD periods.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// DefaultMACD is the classic 12/26/9 configuration.
var DefaultMACD = MACDParams{Fast: 12, Slow: 26, Signal: 9}

// Warmup is the number of input bars consumed before the first aligned value.
func (p MACDParams) Warmup() int {
	return p.Slow - 1 + p.Signal - 1
}

func (p MACDParams) valid() bool {
	return p.Fast > 0 && p.Slow > p.Fast && p.Signal > 0
}

// MACD computes the MACD line, signal line and histogram of closes.
//
// The fast EMA starts Slow-Fast bars earlier than the slow EMA, so its head is
// dropped before subtracting. The signal EMA consumes another Signal-1 values
// of the MACD line; the exported MACD line is trimmed by the same amount so
// that all three series share indices. Insufficient input yields an empty
// result.
func MACD(closes []float64, p MACDParams) model.MACDResult {
	res := model.MACDResult{Offset: p.Warmup()}
	if !p.valid() {
		return res
	}

	fast := EMA(closes, p.Fast)
	slow := EMA(closes, p.Slow)
	if len(slow) == 0 {
		return res
	}
	fast = fast[p.Slow-p.Fast:]

	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i] - slow[i]
	}

	signal := EMA(line, p.Signal)
	if len(signal) == 0 {
		return res
	}

	lag := p.Signal - 1
	hist := make([]float64, 0, len(line)-lag)
	for i := lag; i < len(line); i++ {
		hist = append(hist, line[i]-signal[i-lag])
	}

	res.MACDLine = line[lag:]
	res.SignalLine = signal
	res.Histogram = hist
	return res
}
