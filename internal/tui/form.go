package tui

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/firetrack/internal/model"
)

// InputsValues holds the paycheck form's bound fields.
type InputsValues struct {
	PayAmount     string
	PayFrequency  model.Frequency
	RentAmount    string
	RentFrequency model.Frequency
}

// ValuesFromProfile prefills the form. An unsaved profile gets the suggested
// example amounts instead of zeros.
func ValuesFromProfile(p model.PaycheckProfile, saved bool) *InputsValues {
	if !saved {
		p = model.SuggestedPaycheckProfile()
	}
	return &InputsValues{
		PayAmount:     p.PayAmount,
		PayFrequency:  p.PayFrequency,
		RentAmount:    p.RentAmount,
		RentFrequency: p.RentFrequency,
	}
}

// Profile converts the form values into a profile stamped with now.
func (v *InputsValues) Profile(now time.Time) model.PaycheckProfile {
	return model.PaycheckProfile{
		PayAmount:     strings.TrimSpace(v.PayAmount),
		PayFrequency:  v.PayFrequency,
		RentAmount:    strings.TrimSpace(v.RentAmount),
		RentFrequency: v.RentFrequency,
		SavedAt:       now,
	}
}

// ValidateAmount accepts blank text or a non-negative decimal number.
func ValidateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return errors.New("enter a number, e.g. 2000 or 1250.50")
	}
	if d.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	if f, err := strconv.ParseFloat(s, 64); err != nil || math.IsInf(f, 0) {
		return errors.New("amount is too large")
	}
	return nil
}

func frequencyOptions(freqs []model.Frequency) []huh.Option[model.Frequency] {
	opts := make([]huh.Option[model.Frequency], 0, len(freqs))
	for _, f := range freqs {
		opts = append(opts, huh.NewOption(string(f), f))
	}
	return opts
}

// NewInputsForm builds the paycheck and rent form bound to vals.
func NewInputsForm(vals *InputsValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Paycheck & Rent").
				Description("Amounts are per paycheck and per rent period."),
			huh.NewInput().
				Title("Paycheck amount").
				Placeholder("2000").
				Validate(ValidateAmount).
				Value(&vals.PayAmount),
			huh.NewSelect[model.Frequency]().
				Title("Pay frequency").
				Options(frequencyOptions(model.PayFrequencies)...).
				Value(&vals.PayFrequency),
			huh.NewInput().
				Title("Rent amount").
				Placeholder("700").
				Validate(ValidateAmount).
				Value(&vals.RentAmount),
			huh.NewSelect[model.Frequency]().
				Title("Rent frequency").
				Options(frequencyOptions(model.RentFrequencies)...).
				Value(&vals.RentFrequency),
		),
	).WithTheme(huh.ThemeDracula())
}
