package allocation

import "github.com/theirongolddev/firetrack/internal/model"

// PaychecksPerYear returns the number of paychecks a cadence produces.
// Unrecognized cadences count as one paycheck a year.
func PaychecksPerYear(freq model.Frequency) float64 {
	switch freq {
	case model.Weekly:
		return 52
	case model.Biweekly:
		return 26
	case model.Monthly:
		return 12
	default:
		return 1
	}
}

// RentPerPaycheck amortizes rent onto the pay cadence.
// Rent is weekly (x52 a year) or otherwise treated as monthly (x12 a year).
func RentPerPaycheck(rent float64, rentFreq, payFreq model.Frequency) float64 {
	annual := rent * 12
	if rentFreq == model.Weekly {
		annual = rent * 52
	}
	return annual / PaychecksPerYear(payFreq)
}

// Leftover is pay minus amortized rent. It may be negative.
func Leftover(pay, rentPerPaycheck float64) float64 {
	return pay - rentPerPaycheck
}

// Usable clamps a leftover to the amount that can actually be distributed.
func Usable(leftover float64) float64 {
	if leftover > 0 {
		return leftover
	}
	return 0
}
