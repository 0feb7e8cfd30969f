package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/firetrack/internal/model"
)

const (
	// InputsKey holds the paycheck profile record.
	InputsKey = "fire_inputs"
	// HoldingsKey holds the share count record.
	HoldingsKey = "holdings"
)

type profileRecord struct {
	PayAmount     *string `json:"payAmount"`
	PayFrequency  *string `json:"payFrequency"`
	RentAmount    *string `json:"rentAmount"`
	RentFrequency *string `json:"rentFrequency"`
	SavedAt       int64   `json:"savedAt"`
}

type holdingsRecord struct {
	Shares  map[string]string `json:"shares"`
	SavedAt int64             `json:"savedAt"`
}

// Inputs persists user inputs as self-describing JSON records in a KV.
type Inputs struct {
	kv  KV
	now func() time.Time
}

// NewInputs wraps kv.
func NewInputs(kv KV) *Inputs {
	return &Inputs{kv: kv, now: time.Now}
}

// LoadProfile returns the saved profile. ok is false when nothing usable is
// stored; missing fields fall back to model.DefaultPaycheckProfile.
func (in *Inputs) LoadProfile() (model.PaycheckProfile, bool, error) {
	raw, ok, err := in.kv.Get(InputsKey)
	if err != nil {
		return model.PaycheckProfile{}, false, fmt.Errorf("reading %s: %w", InputsKey, err)
	}
	if !ok {
		return model.DefaultPaycheckProfile(), false, nil
	}

	var rec profileRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return model.DefaultPaycheckProfile(), false, nil
	}

	p := model.DefaultPaycheckProfile()
	if rec.PayAmount != nil {
		p.PayAmount = *rec.PayAmount
	}
	if rec.PayFrequency != nil {
		p.PayFrequency = model.Frequency(*rec.PayFrequency)
	}
	if rec.RentAmount != nil {
		p.RentAmount = *rec.RentAmount
	}
	if rec.RentFrequency != nil {
		p.RentFrequency = model.Frequency(*rec.RentFrequency)
	}
	if rec.SavedAt > 0 {
		p.SavedAt = time.UnixMilli(rec.SavedAt)
	}
	return p, true, nil
}

// SaveProfile stores p, stamped with the current time.
func (in *Inputs) SaveProfile(p model.PaycheckProfile) error {
	payFreq := string(p.PayFrequency)
	rentFreq := string(p.RentFrequency)
	rec := profileRecord{
		PayAmount:     &p.PayAmount,
		PayFrequency:  &payFreq,
		RentAmount:    &p.RentAmount,
		RentFrequency: &rentFreq,
		SavedAt:       in.now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := in.kv.Set(InputsKey, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", InputsKey, err)
	}
	return nil
}

// LoadHoldings returns the saved raw share counts keyed by symbol.
// A missing or corrupt record yields an empty map.
func (in *Inputs) LoadHoldings() (map[model.Symbol]string, error) {
	out := make(map[model.Symbol]string)

	raw, ok, err := in.kv.Get(HoldingsKey)
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", HoldingsKey, err)
	}
	if !ok {
		return out, nil
	}

	var rec holdingsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return out, nil
	}
	for sym, n := range rec.Shares {
		out[model.NormalizeSymbol(sym)] = n
	}
	return out, nil
}

// ClearHoldings removes the saved share counts.
func (in *Inputs) ClearHoldings() error {
	if err := in.kv.Delete(HoldingsKey); err != nil {
		return fmt.Errorf("clearing %s: %w", HoldingsKey, err)
	}
	return nil
}

// SaveHoldings replaces the saved share counts.
func (in *Inputs) SaveHoldings(shares map[model.Symbol]string) error {
	rec := holdingsRecord{
		Shares:  make(map[string]string, len(shares)),
		SavedAt: in.now().UnixMilli(),
	}
	for sym, n := range shares {
		rec.Shares[string(sym)] = n
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := in.kv.Set(HoldingsKey, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", HoldingsKey, err)
	}
	return nil
}
