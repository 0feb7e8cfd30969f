package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/firetrack/internal/model"
	"github.com/theirongolddev/firetrack/internal/store"
)

func TestParseHoldingArgs(t *testing.T) {
	got, err := parseHoldingArgs([]string{"vti=12", " QQQ = 5.5", "VXUS="})
	if err != nil {
		t.Fatalf("parseHoldingArgs: %v", err)
	}
	want := []holdingUpdate{
		{sym: "VTI", shares: "12"},
		{sym: "QQQ", shares: "5.5"},
		{sym: "VXUS", shares: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"VTI", "=3"} {
		if _, err := parseHoldingArgs([]string{bad}); err == nil {
			t.Errorf("parseHoldingArgs(%q) should fail", bad)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := parseFrequency("weekly", model.RentFrequencies)
	if err != nil || f != model.Weekly {
		t.Fatalf("parseFrequency(weekly) = %q, %v", f, err)
	}
	if _, err := parseFrequency("biweekly", model.RentFrequencies); err == nil {
		t.Fatal("biweekly rent should be rejected")
	}
	if _, err := parseFrequency("annually", model.PayFrequencies); err != nil {
		t.Fatalf("annually pay: %v", err)
	}
}

func TestStoreRecordLines(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "firetrack.db")

	lines := storeRecordLines(dbPath, time.Now())
	if len(lines) != 1 || !strings.Contains(lines[0], "not created") {
		t.Fatalf("missing store lines = %q", lines)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("describing a missing store created it (stat err %v)", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.NewInputs(db).SaveHoldings(map[model.Symbol]string{"VTI": "1"}); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	lines = storeRecordLines(dbPath, time.Now())
	if len(lines) != 3 {
		t.Fatalf("lines = %q, want one per record", lines)
	}
	if !strings.Contains(lines[0], "Prices") || !strings.Contains(lines[0], "not saved") {
		t.Errorf("prices line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "Holdings") || !strings.Contains(lines[2], "saved just now") {
		t.Errorf("holdings line = %q", lines[2])
	}
}
