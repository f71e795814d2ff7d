package strategy

import "StockScanner/internal/model"

// Every predicate fails closed: an index outside its series is false, never a
// panic.

// HistogramRising reports whether hist[i] is higher than the bar before.
func HistogramRising(hist []float64, i int) bool {
	if i <= 0 || i >= len(hist) {
		return false
	}
	return hist[i] > hist[i-1]
}

// HistogramRisingBelowZero additionally requires the MACD line at i to be
// negative.
func HistogramRisingBelowZero(hist, macdLine []float64, i int) bool {
	if !HistogramRising(hist, i) || i >= len(macdLine) {
		return false
	}
	return macdLine[i] < 0
}

// TrendGreen reports whether the Supertrend is up at i.
func TrendGreen(trend []model.Trend, i int) bool {
	if i < 0 || i >= len(trend) {
		return false
	}
	return trend[i] == model.TrendUp
}

// MomentumBelowZero only looks at the sign of the squeeze momentum; it does
// not consult the squeeze flag.
func MomentumBelowZero(momentum []float64, i int) bool {
	if i < 0 || i >= len(momentum) {
		return false
	}
	return momentum[i] < 0
}
