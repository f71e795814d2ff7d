package model

// Trend is the discrete Supertrend direction.
type Trend int8

const (
	TrendNone Trend = 0 // warm-up padding only
	TrendUp   Trend = 1
	TrendDown Trend = -1
)

// MACDResult holds the three MACD series. All three share indices: element i
// corresponds to input bar i+Offset.
type MACDResult struct {
	MACDLine   []float64
	SignalLine []float64
	Histogram  []float64
	Offset     int
}

// Len returns the number of aligned values.
func (m MACDResult) Len() int { return len(m.Histogram) }

// SupertrendResult is padded with zero values for the warm-up bars, so it
// aligns index for index with the input (Offset is always 0).
type SupertrendResult struct {
	Trend     []Trend
	UpperBand []float64
	LowerBand []float64
	Offset    int
	Warmup    int // number of leading padding entries
}

func (s SupertrendResult) Len() int { return len(s.Trend) }

// SqueezeResult holds the squeeze flag, the momentum histogram and the
// envelopes it was derived from. Element i corresponds to input bar i+Offset.
type SqueezeResult struct {
	Momentum    []float64
	IsSqueezing []bool
	BBUpper     []float64
	BBLower     []float64
	KCUpper     []float64
	KCLower     []float64
	Offset      int
}

func (s SqueezeResult) Len() int { return len(s.Momentum) }
