package calculator

// SMA computes the simple moving average of prices over period. The result has
// len(prices)-period+1 values; element i averages prices[i:i+period]. A period
// that is not positive or longer than the input yields nil.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	out := make([]float64, 0, len(prices)-period+1)
	for i := period - 1; i < len(prices); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += prices[j]
		}
		out = append(out, sum/float64(period))
	}
	return out
}

// EMA computes the exponential moving average seeded with the SMA of the first
// period prices. Like SMA it yields len(prices)-period+1 values, or nil when
// the input is too short.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	k := 2.0 / float64(period+1)

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	ema := seed / float64(period)

	out := make([]float64, 0, len(prices)-period+1)
	out = append(out, ema)
	for _, p := range prices[period:] {
		ema = (p-ema)*k + ema
		out = append(out, ema)
	}
	return out
}
