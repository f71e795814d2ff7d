package model

import (
	"fmt"
	"strings"
	"time"
)

// Tier names one of the four scans.
type Tier string

const (
	TierBasic     Tier = "basic"
	TierBelowZero Tier = "belowZero"
	TierCombo     Tier = "combo"
	TierUltimate  Tier = "ultimate"
)

// AllTiers lists the tiers from loosest to strictest.
var AllTiers = []Tier{TierBasic, TierBelowZero, TierCombo, TierUltimate}

// ParseTier is case-insensitive and accepts the legacy "macd" names.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "macd":
		return TierBasic, nil
	case "belowzero", "macdbelowzero", "below_zero":
		return TierBelowZero, nil
	case "combo":
		return TierCombo, nil
	case "ultimate":
		return TierUltimate, nil
	}
	return "", fmt.Errorf("unknown scan tier %q", s)
}

// Title is the display name used by notifications.
func (t Tier) Title() string {
	switch t {
	case TierBasic:
		return "MACD"
	case TierBelowZero:
		return "MACD Below Zero"
	case TierCombo:
		return "Combo"
	case TierUltimate:
		return "Ultimate"
	}
	return string(t)
}

// Outcome is the tagged result of evaluating a tier for one symbol.
type Outcome int

const (
	OutcomeNotMet Outcome = iota
	OutcomeMatched
	OutcomeInsufficientData
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeInsufficientData:
		return "insufficient_data"
	default:
		return "not_met"
	}
}

// ScanRequest describes one scan invocation.
type ScanRequest struct {
	Universe     []string
	Resolution   Resolution
	LookbackDays int
	Tier         Tier
}

// SymbolOutcome pairs a symbol with its evaluation outcome.
type SymbolOutcome struct {
	Symbol  string
	Outcome Outcome
}

// ScanResult is what a scan hands to its sinks.
type ScanResult struct {
	RunID        string
	Tier         Tier
	Resolution   Resolution
	Matches      []string // universe order
	TotalScanned int      // symbols whose series were retrieved and evaluated
	UniverseSize int
	Failed       []string // symbols whose fetch failed, universe order
	Outcomes     []SymbolOutcome
	StartedAt    time.Time
	Duration     time.Duration
}

// InsufficientCount returns how many evaluated symbols lacked history.
func (r *ScanResult) InsufficientCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == OutcomeInsufficientData {
			n++
		}
	}
	return n
}
