package store

import (
	"testing"
	"time"

	"github.com/theirongolddev/firetrack/internal/model"
)

func TestInputs_ProfileRoundTrip(t *testing.T) {
	kv := NewMemory()
	in := NewInputs(kv)
	in.now = func() time.Time { return time.UnixMilli(1_760_000_000_000) }

	want := model.PaycheckProfile{
		PayAmount:     "2000",
		PayFrequency:  model.Biweekly,
		RentAmount:    "700",
		RentFrequency: model.Monthly,
	}
	if err := in.SaveProfile(want); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	raw, _, _ := kv.Get(InputsKey)
	const wantRaw = `{"payAmount":"2000","payFrequency":"biweekly","rentAmount":"700","rentFrequency":"monthly","savedAt":1760000000000}`
	if raw != wantRaw {
		t.Fatalf("stored record = %s, want %s", raw, wantRaw)
	}

	got, ok, err := in.LoadProfile()
	if err != nil || !ok {
		t.Fatalf("LoadProfile = %v, %v", ok, err)
	}
	want.SavedAt = time.UnixMilli(1_760_000_000_000)
	if got != want {
		t.Fatalf("LoadProfile = %+v, want %+v", got, want)
	}
}

func TestInputs_ProfileMissingFieldsUseDefaults(t *testing.T) {
	kv := NewMemory()
	_ = kv.Set(InputsKey, `{"payAmount":"1500"}`)

	got, ok, err := NewInputs(kv).LoadProfile()
	if err != nil || !ok {
		t.Fatalf("LoadProfile = %v, %v", ok, err)
	}
	if got.PayAmount != "1500" || got.PayFrequency != model.Biweekly ||
		got.RentAmount != "0" || got.RentFrequency != model.Monthly {
		t.Fatalf("LoadProfile = %+v", got)
	}
}

func TestInputs_CorruptProfileIsAbsent(t *testing.T) {
	kv := NewMemory()
	_ = kv.Set(InputsKey, `{not json`)

	got, ok, err := NewInputs(kv).LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if ok {
		t.Fatal("corrupt record reported as present")
	}
	if got != model.DefaultPaycheckProfile() {
		t.Fatalf("LoadProfile = %+v, want defaults", got)
	}
}

func TestInputs_HoldingsRoundTrip(t *testing.T) {
	in := NewInputs(NewMemory())

	if err := in.SaveHoldings(map[model.Symbol]string{"VTI": "10", "QQQ": "5.5"}); err != nil {
		t.Fatalf("SaveHoldings: %v", err)
	}
	got, err := in.LoadHoldings()
	if err != nil {
		t.Fatalf("LoadHoldings: %v", err)
	}
	if len(got) != 2 || got["VTI"] != "10" || got["QQQ"] != "5.5" {
		t.Fatalf("LoadHoldings = %v", got)
	}
}

func TestInputs_HoldingsNormalizeSymbols(t *testing.T) {
	kv := NewMemory()
	_ = kv.Set(HoldingsKey, `{"shares":{"vxus":"8"},"savedAt":1}`)

	got, err := NewInputs(kv).LoadHoldings()
	if err != nil {
		t.Fatal(err)
	}
	if got["VXUS"] != "8" {
		t.Fatalf("LoadHoldings = %v, want VXUS=8", got)
	}
}

func TestInputs_HoldingsCorruptIsEmpty(t *testing.T) {
	kv := NewMemory()
	_ = kv.Set(HoldingsKey, `[]`)

	got, err := NewInputs(kv).LoadHoldings()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("LoadHoldings = %v, want empty", got)
	}
}

func TestInputs_ClearHoldings(t *testing.T) {
	kv := NewMemory()
	in := NewInputs(kv)

	if err := in.SaveHoldings(map[model.Symbol]string{"VTI": "10"}); err != nil {
		t.Fatal(err)
	}
	if err := in.ClearHoldings(); err != nil {
		t.Fatalf("ClearHoldings: %v", err)
	}
	if _, ok, _ := kv.Get(HoldingsKey); ok {
		t.Fatal("holdings record still present after ClearHoldings")
	}
	got, err := in.LoadHoldings()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("LoadHoldings = %v, want empty", got)
	}
	if err := in.ClearHoldings(); err != nil {
		t.Fatalf("ClearHoldings with nothing saved: %v", err)
	}
}
