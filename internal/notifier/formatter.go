package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockScanner/internal/model"
	"StockScanner/internal/recorder"
)

// maxListed caps the symbols named in one alert.
const maxListed = 20

// ListSymbols joins up to maxListed symbols and summarises the rest.
func ListSymbols(symbols []string) string {
	if len(symbols) <= maxListed {
		return strings.Join(symbols, ", ")
	}
	return fmt.Sprintf("%s and %d more...", strings.Join(symbols[:maxListed], ", "), len(symbols)-maxListed)
}

// Summary is the one-line description of a scan outcome.
func Summary(r *model.ScanResult) string {
	if len(r.Matches) > 0 {
		return fmt.Sprintf("Found %d stocks matching your criteria out of %d scanned.", len(r.Matches), r.TotalScanned)
	}
	return fmt.Sprintf("No stocks matched your criteria out of %d scanned.", r.TotalScanned)
}

// FormatScanResult renders a scan result as a Telegram HTML message.
func FormatScanResult(r *model.ScanResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔔 <b>%s Scan Results</b> | %s\n\n", r.Tier.Title(), r.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(Summary(r) + "\n")
	if len(r.Matches) > 0 {
		b.WriteString(fmt.Sprintf("\n📈 <b>Matching Stocks:</b>\n%s\n", html.EscapeString(ListSymbols(r.Matches))))
	}

	var notes []string
	if n := r.InsufficientCount(); n > 0 {
		notes = append(notes, fmt.Sprintf("%d with too little history", n))
	}
	if len(r.Failed) > 0 {
		notes = append(notes, fmt.Sprintf("%d failed to load", len(r.Failed)))
	}
	if len(notes) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", strings.Join(notes, ", ")))
	}
	b.WriteString(fmt.Sprintf("\n⏱ %s", r.Duration.Round(time.Millisecond)))
	return b.String()
}

// FormatHistory lists recent scans, newest first.
func FormatHistory(runs []recorder.ScanRecord) string {
	if len(runs) == 0 {
		return "No scans recorded yet."
	}
	var b strings.Builder
	b.WriteString("📜 <b>Recent scans</b>\n\n")
	for _, run := range runs {
		b.WriteString(fmt.Sprintf("%s  %s: %d/%d",
			run.StartedAt.Format("01-02 15:04"), run.Tier.Title(), len(run.Matches), run.TotalScanned))
		if len(run.Matches) > 0 {
			b.WriteString(" " + html.EscapeString(ListSymbols(run.Matches)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatHelp describes the bot commands.
func FormatHelp() string {
	tiers := make([]string, len(model.AllTiers))
	for i, t := range model.AllTiers {
		tiers[i] = string(t)
	}
	return "🤖 <b>Stock Scanner</b>\n\n" +
		"/scan [tier] - run a scan now (" + strings.Join(tiers, ", ") + ")\n" +
		"/history - recent scan results\n" +
		"/help - this message"
}
