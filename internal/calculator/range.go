package calculator

import "math"

// HighestHigh returns the maximum of highs[from..to] inclusive.
func HighestHigh(highs []float64, from, to int) float64 {
	h := math.Inf(-1)
	for i := from; i <= to; i++ {
		if highs[i] > h {
			h = highs[i]
		}
	}
	return h
}

// LowestLow returns the minimum of lows[from..to] inclusive.
func LowestLow(lows []float64, from, to int) float64 {
	l := math.Inf(1)
	for i := from; i <= to; i++ {
		if lows[i] < l {
			l = lows[i]
		}
	}
	return l
}

// Midpoint is the centre of the high/low range of the window ending at idx.
func Midpoint(highs, lows []float64, idx, period int) float64 {
	start := idx - period + 1
	if start < 0 {
		start = 0
	}
	return (HighestHigh(highs, start, idx) + LowestLow(lows, start, idx)) / 2
}
