// Package allocation turns a paycheck profile, holdings, a price snapshot and
// a target table into a per-symbol contribution plan.
package allocation

import "github.com/theirongolddev/firetrack/internal/model"

// Input is everything Compute needs. Shares are raw user-entered strings.
type Input struct {
	Profile  model.PaycheckProfile
	Shares   map[model.Symbol]string
	Snapshot model.PriceSnapshot
	Targets  model.TargetAllocation
}

// Compute derives the full plan from scratch. It is pure and total:
//  1. Amortize rent onto the pay cadence and take the leftover
//  2. Value each holding at shares x price (unknown price counts as 0)
//  3. Current percent = value / total x 100, or 0 when the total is 0
//  4. Diff = target - current
//  5. Split the usable leftover across positive diffs, proportionally
//
// Rows follow the order of in.Targets.
func Compute(in Input) model.Plan {
	pay := ParseAmount(in.Profile.PayAmount)
	rent := RentPerPaycheck(ParseAmount(in.Profile.RentAmount), in.Profile.RentFrequency, in.Profile.PayFrequency)
	leftover := Leftover(pay, rent)

	plan := model.Plan{
		PayAmount:       pay,
		RentPerPaycheck: rent,
		Leftover:        leftover,
		UsableLeftover:  Usable(leftover),
	}
	if !in.Snapshot.CapturedAt.IsZero() {
		at := in.Snapshot.CapturedAt
		plan.PricesAsOf = &at
	}

	holdings := Holdings(in.Targets.Symbols(), in.Shares, in.Snapshot)
	for _, h := range holdings {
		plan.TotalValue += h.Value
	}

	rows := make([]model.AllocationRow, len(holdings))
	for i, h := range holdings {
		current := 0.0
		if plan.TotalValue > 0 {
			current = h.Value / plan.TotalValue * 100
		}
		target := in.Targets.Percent(h.Symbol)
		rows[i] = model.AllocationRow{
			Symbol:         h.Symbol,
			Price:          h.Price,
			Shares:         h.Shares,
			Value:          h.Value,
			CurrentPercent: current,
			TargetPercent:  target,
			DiffPercent:    target - current,
		}
		if d := rows[i].DiffPercent; d > 0 {
			plan.SumPositiveDiffs += d
		}
	}

	if plan.SumPositiveDiffs > 0 {
		for i := range rows {
			if d := rows[i].DiffPercent; d > 0 {
				rows[i].SuggestedAmount = plan.UsableLeftover * d / plan.SumPositiveDiffs
			}
		}
	}

	plan.Rows = rows
	return plan
}

// Holdings values each symbol's shares at the snapshot price.
// Negative share counts are treated as 0.
func Holdings(symbols []model.Symbol, shares map[model.Symbol]string, snap model.PriceSnapshot) []model.Holding {
	out := make([]model.Holding, len(symbols))
	for i, sym := range symbols {
		n := ParseAmount(shares[sym])
		if n < 0 {
			n = 0
		}
		price := snap.Price(sym)
		out[i] = model.Holding{
			Symbol: sym,
			Shares: n,
			Price:  price,
			Value:  n * priceValue(price),
		}
	}
	return out
}
