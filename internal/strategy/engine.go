package strategy

import (
	"StockScanner/internal/calculator"
	"StockScanner/internal/model"
)

// indicatorSet computes each indicator at most once per symbol.
type indicatorSet struct {
	series model.SymbolSeries

	macd       *model.MACDResult
	supertrend *model.SupertrendResult
	squeeze    *model.SqueezeResult
}

func (s *indicatorSet) macdResult() model.MACDResult {
	if s.macd == nil {
		r := calculator.MACD(s.series.Close, calculator.DefaultMACD)
		s.macd = &r
	}
	return *s.macd
}

func (s *indicatorSet) supertrendResult() model.SupertrendResult {
	if s.supertrend == nil {
		r := calculator.Supertrend(s.series.High, s.series.Low, s.series.Close, calculator.DefaultSupertrend)
		s.supertrend = &r
	}
	return *s.supertrend
}

func (s *indicatorSet) squeezeResult() model.SqueezeResult {
	if s.squeeze == nil {
		r := calculator.Squeeze(s.series.High, s.series.Low, s.series.Close, calculator.DefaultSqueeze)
		s.squeeze = &r
	}
	return *s.squeeze
}

// criterion is one named condition evaluated at the last bar.
type criterion struct {
	name string
	eval func(ind *indicatorSet) model.Outcome
}

func outcome(ok bool) model.Outcome {
	if ok {
		return model.OutcomeMatched
	}
	return model.OutcomeNotMet
}

var (
	critHistogramRising = criterion{
		name: "macd_histogram_rising",
		eval: func(ind *indicatorSet) model.Outcome {
			m := ind.macdResult()
			last := m.Len() - 1
			if last < 1 {
				return model.OutcomeInsufficientData
			}
			return outcome(HistogramRising(m.Histogram, last))
		},
	}
	critHistogramRisingBelowZero = criterion{
		name: "macd_histogram_rising_below_zero",
		eval: func(ind *indicatorSet) model.Outcome {
			m := ind.macdResult()
			last := m.Len() - 1
			if last < 1 {
				return model.OutcomeInsufficientData
			}
			return outcome(HistogramRisingBelowZero(m.Histogram, m.MACDLine, last))
		},
	}
	critTrendGreen = criterion{
		name: "supertrend_green",
		eval: func(ind *indicatorSet) model.Outcome {
			st := ind.supertrendResult()
			last := st.Len() - 1
			if last < 0 {
				return model.OutcomeInsufficientData
			}
			return outcome(TrendGreen(st.Trend, last))
		},
	}
	critMomentumBelowZero = criterion{
		name: "squeeze_momentum_below_zero",
		eval: func(ind *indicatorSet) model.Outcome {
			sq := ind.squeezeResult()
			last := sq.Len() - 1
			if last < 0 {
				return model.OutcomeInsufficientData
			}
			return outcome(MomentumBelowZero(sq.Momentum, last))
		},
	}
)

// tierCriteria maps each scan to its ordered conjunction of criteria.
var tierCriteria = map[model.Tier][]criterion{
	model.TierBasic:     {critHistogramRising},
	model.TierBelowZero: {critHistogramRisingBelowZero},
	model.TierCombo:     {critHistogramRisingBelowZero, critTrendGreen},
	model.TierUltimate:  {critHistogramRisingBelowZero, critTrendGreen, critMomentumBelowZero},
}

// CriteriaNames lists the criteria of a tier in evaluation order.
func CriteriaNames(tier model.Tier) []string {
	crits := tierCriteria[tier]
	names := make([]string, len(crits))
	for i, c := range crits {
		names[i] = c.name
	}
	return names
}

// Evaluate runs a tier's criteria against the last bar of s. Evaluation stops
// at the first criterion that is not met or lacks data. Unknown tiers never
// match.
func Evaluate(tier model.Tier, s model.SymbolSeries) model.Outcome {
	crits, ok := tierCriteria[tier]
	if !ok || len(crits) == 0 {
		return model.OutcomeNotMet
	}
	ind := &indicatorSet{series: s}
	for _, c := range crits {
		if o := c.eval(ind); o != model.OutcomeMatched {
			return o
		}
	}
	return model.OutcomeMatched
}

// EvaluateAll returns one outcome per input symbol, in input order.
func EvaluateAll(tier model.Tier, stocks []model.SymbolSeries) []model.SymbolOutcome {
	out := make([]model.SymbolOutcome, len(stocks))
	for i, s := range stocks {
		out[i] = model.SymbolOutcome{Symbol: s.Symbol, Outcome: Evaluate(tier, s)}
	}
	return out
}

// Scan returns the symbols that satisfy the tier, preserving input order.
// Symbols with too little history are left out silently.
func Scan(tier model.Tier, stocks []model.SymbolSeries) []string {
	return Matches(EvaluateAll(tier, stocks))
}

// Matches extracts the matched symbols from a list of outcomes.
func Matches(outcomes []model.SymbolOutcome) []string {
	results := []string{}
	for _, o := range outcomes {
		if o.Outcome == model.OutcomeMatched {
			results = append(results, o.Symbol)
		}
	}
	return results
}
