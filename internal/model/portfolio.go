// Package model defines the data types shared by the price cache, the
// allocation engine and the CLI surfaces.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Symbol names a tradable instrument. Always upper-case.
type Symbol string

// NormalizeSymbol trims and upper-cases a raw ticker.
// e.g., " vti " -> "VTI"
func NormalizeSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

// Target is the configured share of total portfolio value for one symbol.
type Target struct {
	Symbol  Symbol
	Percent float64
}

// TargetAllocation is the ordered target table. Its order is the row order
// of every plan. Percentages are used as-is and need not sum to 100.
type TargetAllocation []Target

// Symbols returns the configured symbols in order.
func (ta TargetAllocation) Symbols() []Symbol {
	out := make([]Symbol, len(ta))
	for i, t := range ta {
		out[i] = t.Symbol
	}
	return out
}

// Percent returns the target percent for sym, or 0 if sym is not configured.
func (ta TargetAllocation) Percent(sym Symbol) float64 {
	for _, t := range ta {
		if t.Symbol == sym {
			return t.Percent
		}
	}
	return 0
}

// PriceSnapshot is one captured symbol->price mapping.
// A nil price means the source had no usable quote for that symbol.
type PriceSnapshot struct {
	ID         uuid.UUID
	Prices     map[Symbol]*float64
	CapturedAt time.Time
}

// Price returns the price for sym, nil when unknown.
func (s PriceSnapshot) Price(sym Symbol) *float64 {
	if s.Prices == nil {
		return nil
	}
	return s.Prices[sym]
}

// IsZero reports whether the snapshot was never captured.
func (s PriceSnapshot) IsZero() bool {
	return s.CapturedAt.IsZero()
}

// Age returns how old the snapshot is at now.
func (s PriceSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt)
}

// Holding is a position valued at the snapshot price.
type Holding struct {
	Symbol Symbol
	Shares float64
	Price  *float64
	Value  float64
}
