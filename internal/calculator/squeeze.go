package calculator

import (
	"github.com/markcheno/go-talib"

	"StockScanner/internal/model"
)

// SqueezeParams configures the squeeze oscillator.
type SqueezeParams struct {
	Period       int
	BBMultiplier float64
	KCMultiplier float64
}

var DefaultSqueeze = SqueezeParams{Period: 20, BBMultiplier: 2, KCMultiplier: 1.5}

// Squeeze compares Bollinger Bands with Keltner Channels over Period bars.
//
// Momentum is the distance of the close from the midpoint of the window's
// highest high and lowest low. It is not a linear-regression slope.
// Element i corresponds to input bar i+Period-1.
func Squeeze(high, low, close []float64, p SqueezeParams) model.SqueezeResult {
	res := model.SqueezeResult{Offset: p.Period - 1}
	n := minLen(high, low, close)
	if p.Period <= 0 || n < p.Period {
		return res
	}
	high, low, close = high[:n], low[:n], close[:n]

	mid := SMA(close, p.Period)
	atr := ATR(high, low, close, p.Period)
	stdev := windowStdDev(close, mid, p.Period)

	m := len(mid)
	res.Momentum = make([]float64, m)
	res.IsSqueezing = make([]bool, m)
	res.BBUpper = make([]float64, m)
	res.BBLower = make([]float64, m)
	res.KCUpper = make([]float64, m)
	res.KCLower = make([]float64, m)

	for i := 0; i < m; i++ {
		res.BBUpper[i] = mid[i] + p.BBMultiplier*stdev[i]
		res.BBLower[i] = mid[i] - p.BBMultiplier*stdev[i]
		res.KCUpper[i] = mid[i] + p.KCMultiplier*atr[i]
		res.KCLower[i] = mid[i] - p.KCMultiplier*atr[i]
		res.IsSqueezing[i] = res.BBLower[i] > res.KCLower[i] && res.BBUpper[i] < res.KCUpper[i]

		idx := i + p.Period - 1
		res.Momentum[i] = close[idx] - Midpoint(high, low, idx, p.Period)
	}
	return res
}

// windowStdDev is the population standard deviation of each period-bar window.
// talib.StdDev works from running sums, which cancel to zero for large prices
// with a tiny spread, so every window is centred on its mean first.
func windowStdDev(close, mean []float64, period int) []float64 {
	out := make([]float64, len(mean))
	centred := make([]float64, period)
	for i := range out {
		for j, v := range close[i : i+period] {
			centred[j] = v - mean[i]
		}
		out[i] = talib.StdDev(centred, period, 1.0)[period-1]
	}
	return out
}
