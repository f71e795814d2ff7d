package calculator

import "StockScanner/internal/model"

// SupertrendParams configures the ATR period and band multiplier.
type SupertrendParams struct {
	Period     int
	Multiplier float64
}

var DefaultSupertrend = SupertrendParams{Period: 10, Multiplier: 3}

// supertrendState is the value carried from one bar to the next.
type supertrendState struct {
	upper float64
	lower float64
	trend model.Trend
}

// seed starts the recurrence. The initial direction compares the close with
// the bar's hl2 rather than with a band.
func seedSupertrend(basicUpper, basicLower, hl2, close float64) supertrendState {
	trend := model.TrendDown
	if close > hl2 {
		trend = model.TrendUp
	}
	return supertrendState{upper: basicUpper, lower: basicLower, trend: trend}
}

// step folds one bar into the state. Bands only tighten unless the previous
// close broke through them; the trend flips only on a strict crossover.
func (s supertrendState) step(basicUpper, basicLower, close, prevClose float64) supertrendState {
	next := supertrendState{upper: s.upper, lower: s.lower, trend: s.trend}
	if basicUpper < s.upper || prevClose > s.upper {
		next.upper = basicUpper
	}
	if basicLower > s.lower || prevClose < s.lower {
		next.lower = basicLower
	}
	switch {
	case s.trend == model.TrendUp && close < next.lower:
		next.trend = model.TrendDown
	case s.trend == model.TrendDown && close > next.upper:
		next.trend = model.TrendUp
	}
	return next
}

// Supertrend computes the trend state and final bands for every bar. The first
// Period-1 entries are zero-valued padding so the output aligns with the input.
// Input shorter than Period yields an empty result.
func Supertrend(high, low, close []float64, p SupertrendParams) model.SupertrendResult {
	res := model.SupertrendResult{Warmup: p.Period - 1}
	atr := ATR(high, low, close, p.Period)
	if len(atr) == 0 {
		return res
	}

	pad := p.Period - 1
	n := pad + len(atr)
	res.Trend = make([]model.Trend, n)
	res.UpperBand = make([]float64, n)
	res.LowerBand = make([]float64, n)

	var st supertrendState
	for i, a := range atr {
		idx := i + pad
		hl2 := (high[idx] + low[idx]) / 2
		basicUpper := hl2 + p.Multiplier*a
		basicLower := hl2 - p.Multiplier*a

		if i == 0 {
			st = seedSupertrend(basicUpper, basicLower, hl2, close[idx])
		} else {
			st = st.step(basicUpper, basicLower, close[idx], close[idx-1])
		}

		res.Trend[idx] = st.trend
		res.UpperBand[idx] = st.upper
		res.LowerBand[idx] = st.lower
	}
	return res
}
