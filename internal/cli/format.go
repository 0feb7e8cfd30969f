// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney formats a USD amount rounded to cents.
// e.g., 1234.5 -> "$1,234.50", -12.345 -> "-$12.35"
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return formatLargeMoney(cents.Shift(-2))
	}
	return money.New(cents.IntPart(), money.USD).Display()
}

// formatLargeMoney renders amounts whose cents overflow int64, in the same
// shape go-money uses.
func formatLargeMoney(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	s := "$" + groupThousands(whole) + "." + frac
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatPrice formats a nullable price. A missing price renders as "-".
func FormatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return FormatMoney(*p)
}

// FormatShares formats a share count without trailing zeros.
func FormatShares(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// groupThousands adds comma separators to a string of digits.
// e.g., "1234567" -> "1,234,567"
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value with two decimals.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatDiff formats a percentage-point diff with an explicit sign.
// Zero renders as "+0.00%".
func FormatDiff(diff float64) string {
	s := FormatPercent(diff)
	if s == "-0.00%" {
		return "+0.00%"
	}
	if diff >= 0 {
		return "+" + s
	}
	return s
}

// FormatAge formats how long ago a snapshot was captured.
// e.g., 45s -> "just now", 90m -> "1h ago", 50h -> "2d ago"
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
