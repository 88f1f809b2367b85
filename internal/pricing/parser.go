// Package pricing recovers price, price change and percent change from the
// free-form price cells found in gainers exports, e.g. "150.00 +1.23 (0.82%)".
package pricing

import (
	"regexp"
	"strings"
)

var (
	// placeholderPattern matches the "(N/A)" marker some exports put in place of a percentage.
	placeholderPattern = regexp.MustCompile(`\(N/A\)`)

	// withPercentPattern: <price> [<signed change>] ( <signed percent>% [)]
	withPercentPattern = regexp.MustCompile(`^([\d,.]+)\s*([+-][\d,.]+)?\s*\(\s*([+-]?\d*\.?\d+)%\s*\)?`)

	// plainPattern: <price> [<signed change>]
	plainPattern = regexp.MustCompile(`^([\d,.]+)\s*([+-][\d,.]+)?`)

	nonNumeric = regexp.MustCompile(`[^\d.]`)
)

// Token is the triple recovered from one price cell. All fields are text so
// that the exported values keep the precision and sign of the source.
type Token struct {
	Price   string
	Change  string
	Percent string
}

// Empty reports whether the cell carried no data at all.
func (t Token) Empty() bool {
	return t.Price == "" && t.Change == "" && t.Percent == ""
}

// Options holds the values used when a component is absent from the cell.
type Options struct {
	DefaultChange  string
	DefaultPercent string
}

// DefaultOptions returns the defaults used by exports: "0" for a missing
// change and "0" for a missing percentage.
func DefaultOptions() Options {
	return Options{
		DefaultChange:  "0",
		DefaultPercent: "0",
	}
}

// Parse extracts the price details from raw using DefaultOptions.
func Parse(raw string) Token {
	return ParseWith(raw, DefaultOptions())
}

// ParseWith extracts the price details from raw. It never fails: blank input
// yields an empty Token, and text that matches neither grammar is passed
// through as the price with the default change and percent.
func ParseWith(raw string, opts Options) Token {
	if strings.TrimSpace(raw) == "" {
		return Token{}
	}

	cleaned := strings.TrimSpace(placeholderPattern.ReplaceAllString(raw, ""))

	pattern := plainPattern
	if strings.Contains(cleaned, "(") && strings.Contains(cleaned, ")") {
		pattern = withPercentPattern
	}

	groups := pattern.FindStringSubmatch(cleaned)
	if groups == nil {
		return Token{
			Price:   cleaned,
			Change:  opts.DefaultChange,
			Percent: opts.DefaultPercent,
		}
	}

	token := Token{
		Price:   CleanNumber(groups[1]),
		Change:  opts.DefaultChange,
		Percent: opts.DefaultPercent,
	}
	if groups[2] != "" {
		token.Change = strings.TrimSpace(strings.ReplaceAll(groups[2], ",", ""))
	}
	if len(groups) > 3 && groups[3] != "" {
		token.Percent = strings.TrimSpace(groups[3])
	}
	return token
}

// CleanNumber strips everything except digits and the decimal point. It is a
// no-op on values that are already clean.
func CleanNumber(s string) string {
	return nonNumeric.ReplaceAllString(s, "")
}
