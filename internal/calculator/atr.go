package calculator

import "math"

// TrueRange returns the per-bar true range. The first bar has no previous
// close, so its range is simply high-low.
func TrueRange(high, low, close []float64) []float64 {
	n := minLen(high, low, close)
	if n == 0 {
		return nil
	}
	tr := make([]float64, n)
	tr[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		prevClose := close[i-1]
		tr[i] = math.Max(high[i]-low[i], math.Max(math.Abs(high[i]-prevClose), math.Abs(low[i]-prevClose)))
	}
	return tr
}

// ATR is the simple moving average of the true range. Element i corresponds
// to bar i+period-1.
func ATR(high, low, close []float64, period int) []float64 {
	return SMA(TrueRange(high, low, close), period)
}

func minLen(series ...[]float64) int {
	if len(series) == 0 {
		return 0
	}
	n := len(series[0])
	for _, s := range series[1:] {
		if len(s) < n {
			n = len(s)
		}
	}
	return n
}
