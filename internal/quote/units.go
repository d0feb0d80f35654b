package quote

import (
	"strings"

	"github.com/shopspring/decimal"
)

var unitMultipliers = map[byte]decimal.Decimal{
	'K': decimal.NewFromInt(1_000),
	'M': decimal.NewFromInt(1_000_000),
}

// ExpandUnits parses a non-negative amount with an optional K or M suffix,
// ignoring thousands separators. It reports false for anything else.
func ExpandUnits(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}

	mult := decimal.NewFromInt(1)
	last := s[len(s)-1]
	if (last < '0' || last > '9') && last != '.' {
		m, ok := unitMultipliers[upper(last)]
		if !ok {
			return decimal.Zero, false
		}
		mult = m
		s = s[:len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d.Mul(mult), true
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
