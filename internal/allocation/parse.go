package allocation

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount leniently parses a user-entered number.
// Blank, non-numeric and out-of-range input all yield 0; it never fails.
// e.g., "1,200" -> 0, " 12.5 " -> 12.5, "1e3" -> 1000, "1e400" -> 0
//
// decimal decides what counts as a number; the conversion itself goes through
// strconv so that huge exponents cost nothing.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// priceValue returns the usable numeric price, 0 when unknown or invalid.
func priceValue(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0
	}
	return *p
}
