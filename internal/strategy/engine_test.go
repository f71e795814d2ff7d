package strategy

import (
	"math/rand"
	"testing"

	"StockScanner/internal/calculator"
	"StockScanner/internal/model"
)

// trendThenJumps builds bars with a constant step per bar followed by a few
// final closes expressed as offsets from the last trend close. Every bar spans
// close±0.5.
func trendThenJumps(symbol string, start, step float64, n int, jumps ...float64) model.SymbolSeries {
	s := model.SymbolSeries{Symbol: symbol}
	c := start
	add := func(c float64) {
		s.Close = append(s.Close, c)
		s.High = append(s.High, c+0.5)
		s.Low = append(s.Low, c-0.5)
	}
	for i := 0; i < n; i++ {
		add(c)
		c += step
	}
	last := s.Close[len(s.Close)-1]
	for _, j := range jumps {
		add(last + j)
	}
	return s
}

func TestEvaluate_DeclineWithSmallUptick(t *testing.T) {
	// A steady decline keeps the MACD line at -7 with a flat histogram. Two
	// small up-closes lift the histogram while the line stays negative, but the
	// close never reaches the Supertrend upper band, which trails 4.5 above.
	s := trendThenJumps("DIP", 200, -1, 80, 1.5, 3)

	tests := []struct {
		tier model.Tier
		want model.Outcome
	}{
		{model.TierBasic, model.OutcomeMatched},
		{model.TierBelowZero, model.OutcomeMatched},
		{model.TierCombo, model.OutcomeNotMet},
		{model.TierUltimate, model.OutcomeNotMet},
	}
	for _, tt := range tests {
		if got := Evaluate(tt.tier, s); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.tier, got, tt.want)
		}
	}

	st := calculator.Supertrend(s.High, s.Low, s.Close, calculator.DefaultSupertrend)
	if st.Trend[st.Len()-1] != model.TrendDown {
		t.Errorf("expected red supertrend at the last bar")
	}
}

func TestEvaluate_DeclineWithRecovery(t *testing.T) {
	// Two +3 closes cross the trailing upper band on the last bar (trend
	// flips green) while the MACD line is still about -6.1. Momentum is
	// close - (x+17.5 + x-0.5)/2 = -2.5.
	s := trendThenJumps("REBOUND", 200, -1, 80, 3, 6)

	for _, tier := range model.AllTiers {
		if got := Evaluate(tier, s); got != model.OutcomeMatched {
			t.Errorf("%s: got %s, want matched", tier, got)
		}
	}

	sq := calculator.Squeeze(s.High, s.Low, s.Close, calculator.DefaultSqueeze)
	last := sq.Len() - 1
	if sq.IsSqueezing[last] {
		t.Fatal("fixture should not be squeezing")
	}
	// The ultimate tier matched without a squeeze: only the momentum sign counts.
	if sq.Momentum[last] >= 0 {
		t.Errorf("momentum = %.4f, want negative", sq.Momentum[last])
	}
}

func TestEvaluate_UptrendFailsBelowZero(t *testing.T) {
	s := trendThenJumps("UP", 100, 1, 80, 3)
	if got := Evaluate(model.TierBasic, s); got != model.OutcomeMatched {
		t.Errorf("basic: got %s, want matched", got)
	}
	for _, tier := range []model.Tier{model.TierBelowZero, model.TierCombo, model.TierUltimate} {
		if got := Evaluate(tier, s); got != model.OutcomeNotMet {
			t.Errorf("%s: got %s, want not_met", tier, got)
		}
	}
}

func TestEvaluate_InsufficientData(t *testing.T) {
	// 34 bars give a single histogram value; rising needs two.
	for _, n := range []int{0, 20, 34} {
		s := trendThenJumps("NEW", 50, -0.5, n+1)
		s.Close, s.High, s.Low = s.Close[:n], s.High[:n], s.Low[:n]
		for _, tier := range model.AllTiers {
			if got := Evaluate(tier, s); got != model.OutcomeInsufficientData {
				t.Errorf("n=%d %s: got %s, want insufficient_data", n, tier, got)
			}
		}
	}
	s := trendThenJumps("ENOUGH", 50, -0.5, 35)
	if got := Evaluate(model.TierBasic, s); got == model.OutcomeInsufficientData {
		t.Error("35 bars should be enough to evaluate the basic tier")
	}
}

func TestEvaluate_UnknownTier(t *testing.T) {
	s := trendThenJumps("X", 200, -1, 80, 3, 6)
	if got := Evaluate(model.Tier("nope"), s); got != model.OutcomeNotMet {
		t.Errorf("unknown tier: got %s", got)
	}
}

func TestScan_PreservesOrderAndSkipsShortSeries(t *testing.T) {
	stocks := []model.SymbolSeries{
		trendThenJumps("ZZZ", 200, -1, 80, 3, 6),
		trendThenJumps("SHORT", 200, -1, 10),
		trendThenJumps("AAA", 300, -1, 90, 3, 6),
		trendThenJumps("UP", 100, 1, 80, 3),
		trendThenJumps("MMM", 250, -1, 85, 3, 6),
	}
	got := Scan(model.TierUltimate, stocks)
	want := []string{"ZZZ", "AAA", "MMM"}
	if len(got) != len(want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Scan = %v, want %v", got, want)
		}
	}

	outcomes := EvaluateAll(model.TierUltimate, stocks)
	if outcomes[1].Outcome != model.OutcomeInsufficientData {
		t.Errorf("SHORT: got %s, want insufficient_data", outcomes[1].Outcome)
	}
}

func TestScan_EmptyUniverse(t *testing.T) {
	if got := Scan(model.TierCombo, nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func randomWalk(r *rand.Rand, symbol string, n int) model.SymbolSeries {
	s := model.SymbolSeries{Symbol: symbol}
	c := 50 + r.Float64()*100
	for i := 0; i < n; i++ {
		c += (r.Float64() - 0.5) * 4
		if c < 1 {
			c = 1
		}
		spread := 0.2 + r.Float64()*2
		s.Close = append(s.Close, c)
		s.High = append(s.High, c+spread*r.Float64())
		s.Low = append(s.Low, c-spread*r.Float64())
	}
	return s
}

func TestScan_TiersNarrow(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var stocks []model.SymbolSeries
	for i := 0; i < 300; i++ {
		stocks = append(stocks, randomWalk(r, string(rune('A'+i%26))+string(rune('a'+i/26)), 30+r.Intn(120)))
	}

	sets := map[model.Tier]map[string]bool{}
	for _, tier := range model.AllTiers {
		sets[tier] = map[string]bool{}
		for _, sym := range Scan(tier, stocks) {
			sets[tier][sym] = true
		}
	}

	chain := []model.Tier{model.TierUltimate, model.TierCombo, model.TierBelowZero, model.TierBasic}
	for i := 0; i+1 < len(chain); i++ {
		inner, outer := chain[i], chain[i+1]
		for sym := range sets[inner] {
			if !sets[outer][sym] {
				t.Errorf("%s matched %s but %s did not", inner, sym, outer)
			}
		}
	}
	if len(sets[model.TierBasic]) == 0 {
		t.Error("expected some basic matches in a random universe")
	}
}

func TestCriteriaNames(t *testing.T) {
	names := CriteriaNames(model.TierUltimate)
	if len(names) != 3 || names[2] != "squeeze_momentum_below_zero" {
		t.Errorf("unexpected criteria: %v", names)
	}
	if len(CriteriaNames(model.TierBasic)) != 1 {
		t.Error("basic tier should have one criterion")
	}
}
