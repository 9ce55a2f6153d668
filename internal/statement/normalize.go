package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a textual amount into a signed decimal. Currency
// glyphs, commas and whitespace are stripped; parenthesized values are
// negative. Unparseable input degrades to zero instead of failing so a bad
// amount never kills the whole file.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			// leading sign only; dashes inside the number are separators
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"01.02.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses heterogeneous date representations. For ambiguous
// day/month dates it tries the default layouts first, then retries with the
// first two components swapped (DD/MM exports). Returns false on total
// failure; the caller drops the row, since an undated transaction cannot be
// reconciled.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseWithLayouts(s); ok {
		return t, true
	}

	for _, sep := range []string{"/", "-", "."} {
		parts := strings.Split(s, sep)
		if len(parts) == 3 {
			swapped := parts[1] + sep + parts[0] + sep + parts[2]
			if t, ok := parseWithLayouts(swapped); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func parseWithLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
