package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "1234.56", "1234.56"},
		{"thousands separator", "1,234.56", "1234.56"},
		{"naira glyph", "₦1,234.56", "1234.56"},
		{"dollar with space", "$ 99", "99"},
		{"euro", "€12.30", "12.30"},
		{"negative", "-4.50", "-4.50"},
		{"parenthesized is negative", "(123.45)", "-123.45"},
		{"parenthesized with glyph", "($1,000.00)", "-1000.00"},
		{"whitespace padded", "  250.00  ", "250.00"},
		{"unparseable", "abc", "0"},
		{"empty", "", "0"},
		{"only symbols", "$,.", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := decimal.RequireFromString(tt.want)
			got := ParseAmount(tt.raw)
			assert.True(t, want.Equal(got), "ParseAmount(%q) = %s, want %s", tt.raw, got, want)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"iso", "2024-01-05", "2024-01-05", true},
		{"iso slash", "2024/01/05", "2024-01-05", true},
		{"us slash", "12/25/2024", "2024-12-25", true},
		{"day first needs swap", "25/12/2024", "2024-12-25", true},
		{"day first dashes", "25-12-2024", "2024-12-25", true},
		{"month name", "Jan 5, 2024", "2024-01-05", true},
		{"day month name", "5 Jan 2024", "2024-01-05", true},
		{"garbage", "not a date", "", false},
		{"empty", "", "", false},
		{"impossible", "45/45/2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(time.DateOnly))
			}
		})
	}
}
