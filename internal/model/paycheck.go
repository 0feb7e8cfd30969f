package model

import "time"

// Frequency is a pay or rent cadence.
type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Annually Frequency = "annually"
)

// PayFrequencies lists the accepted pay cadences, in display order.
var PayFrequencies = []Frequency{Weekly, Biweekly, Monthly, Annually}

// RentFrequencies lists the accepted rent cadences, in display order.
var RentFrequencies = []Frequency{Weekly, Monthly}

// PaycheckProfile holds the user's pay and rent inputs exactly as entered.
// Amounts stay raw strings; the allocation engine parses them leniently.
type PaycheckProfile struct {
	PayAmount     string
	PayFrequency  Frequency
	RentAmount    string
	RentFrequency Frequency
	SavedAt       time.Time
}

// DefaultPaycheckProfile is used when nothing has been saved yet.
func DefaultPaycheckProfile() PaycheckProfile {
	return PaycheckProfile{
		PayAmount:     "0",
		PayFrequency:  Biweekly,
		RentAmount:    "0",
		RentFrequency: Monthly,
	}
}

// SuggestedPaycheckProfile prefills the input form on first run.
func SuggestedPaycheckProfile() PaycheckProfile {
	return PaycheckProfile{
		PayAmount:     "2000",
		PayFrequency:  Biweekly,
		RentAmount:    "700",
		RentFrequency: Monthly,
	}
}
