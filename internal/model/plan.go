package model

import "time"

// AllocationRow is one derived, read-only line of a plan.
type AllocationRow struct {
	Symbol          Symbol   `json:"symbol"`
	Price           *float64 `json:"price"`
	Shares          float64  `json:"shares"`
	Value           float64  `json:"value"`
	CurrentPercent  float64  `json:"current_percent"`
	TargetPercent   float64  `json:"target_percent"`
	DiffPercent     float64  `json:"diff_percent"`
	SuggestedAmount float64  `json:"suggested_amount"`
}

// Plan is the full output of one allocation run. Values are full precision.
type Plan struct {
	Rows             []AllocationRow `json:"rows"`
	PayAmount        float64         `json:"pay_amount"`
	RentPerPaycheck  float64         `json:"rent_per_paycheck"`
	Leftover         float64         `json:"leftover"`
	UsableLeftover   float64         `json:"usable_leftover"`
	TotalValue       float64         `json:"total_value"`
	SumPositiveDiffs float64         `json:"sum_positive_diffs"`
	PricesAsOf       *time.Time      `json:"prices_as_of,omitempty"` // nil until prices are loaded
}

// TotalSuggested sums the suggested contributions across rows.
func (p Plan) TotalSuggested() float64 {
	var sum float64
	for _, r := range p.Rows {
		sum += r.SuggestedAmount
	}
	return sum
}
