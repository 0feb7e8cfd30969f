package config

import (
	"fmt"

	"github.com/theirongolddev/firetrack/internal/model"
)

// DefaultTargets is the reference allocation: total US market, Nasdaq-100
// and international ex-US.
func DefaultTargets() []TargetConfig {
	return []TargetConfig{
		{Symbol: "VTI", Percent: 50},
		{Symbol: "QQQ", Percent: 30},
		{Symbol: "VXUS", Percent: 20},
	}
}

// Targets converts the configured table into a model.TargetAllocation.
// Symbols are normalized; blank or duplicate symbols and negative percents
// are rejected. Percentages are not required to sum to 100.
func (cfg Config) Targets() (model.TargetAllocation, error) {
	out := make(model.TargetAllocation, 0, len(cfg.Portfolio.Targets))
	seen := make(map[model.Symbol]bool, len(cfg.Portfolio.Targets))

	for i, t := range cfg.Portfolio.Targets {
		sym := model.NormalizeSymbol(t.Symbol)
		if sym == "" {
			return nil, fmt.Errorf("portfolio target %d: symbol is required", i+1)
		}
		if seen[sym] {
			return nil, fmt.Errorf("portfolio target %s: listed twice", sym)
		}
		if t.Percent < 0 {
			return nil, fmt.Errorf("portfolio target %s: percent must not be negative", sym)
		}
		seen[sym] = true
		out = append(out, model.Target{Symbol: sym, Percent: t.Percent})
	}
	return out, nil
}
