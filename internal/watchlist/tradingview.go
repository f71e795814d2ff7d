// Package watchlist reads symbol universes from TradingView watchlist exports.
package watchlist

import (
	"fmt"
	"os"
	"strings"
)

// ParseTradingView extracts tickers from a TradingView export such as
// "###Tech,NASDAQ:AAPL,NASDAQ:MSFT\nCME_MINI:ES1!". Exchange prefixes, section
// headers, blanks and trailing '!' are dropped; the first occurrence of each
// ticker wins.
func ParseTradingView(content string) []string {
	tokens := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(tokens))
	symbols := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if strings.HasPrefix(tok, "###") {
			continue
		}
		if i := strings.LastIndex(tok, ":"); i >= 0 {
			tok = strings.TrimSpace(tok[i+1:])
		}
		tok = strings.TrimSuffix(tok, "!")
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		symbols = append(symbols, tok)
	}
	return symbols
}

// LoadFile reads and parses a watchlist export.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	symbols := ParseTradingView(string(data))
	if len(symbols) == 0 {
		return nil, fmt.Errorf("watchlist %s contains no symbols", path)
	}
	return symbols, nil
}

// Resolve picks the scan universe: a watchlist file when given, otherwise
// the inline symbols, which may themselves use the export syntax.
func Resolve(file string, inline []string) ([]string, error) {
	if file != "" {
		return LoadFile(file)
	}
	symbols := ParseTradingView(strings.Join(inline, ","))
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty watchlist")
	}
	return symbols, nil
}
