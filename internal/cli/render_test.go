package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/theirongolddev/firetrack/internal/model"
)

func ptr(v float64) *float64 { return &v }

func samplePlan() model.Plan {
	return model.Plan{
		PayAmount:       2000,
		RentPerPaycheck: 323.0769230769,
		Leftover:        1676.9230769231,
		UsableLeftover:  1676.9230769231,
		TotalValue:      1000,
		Rows: []model.AllocationRow{
			{Symbol: "VTI", Price: ptr(100), Shares: 10, Value: 1000, CurrentPercent: 100, TargetPercent: 50, DiffPercent: -50},
			{Symbol: "QQQ", Price: nil, Shares: 0, Value: 0, CurrentPercent: 0, TargetPercent: 30, DiffPercent: 30, SuggestedAmount: 1006.15},
			{Symbol: "VXUS", Price: ptr(50), Shares: 0, Value: 0, CurrentPercent: 0, TargetPercent: 20, DiffPercent: 20, SuggestedAmount: 670.77},
		},
	}
}

func TestPlanRows_EndsWithTotal(t *testing.T) {
	rows := PlanRows(samplePlan())

	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5 (3 symbols, separator, total)", len(rows))
	}
	if rows[3][0] != "---" {
		t.Fatalf("rows[3] = %v, want separator", rows[3])
	}
	total := rows[4]
	if total[0] != TotalMarker || total[3] != "$1,000.00" || total[7] != "$1,676.92" {
		t.Fatalf("total row = %v", total)
	}
	if rows[1][1] != "-" {
		t.Fatalf("null price cell = %q, want -", rows[1][1])
	}
	if rows[0][6] != "-50.00%" || rows[1][6] != "+30.00%" {
		t.Fatalf("diff cells = %q %q", rows[0][6], rows[1][6])
	}
}

func TestRenderPlan_ContainsSummaryAndTable(t *testing.T) {
	out := RenderPlan(samplePlan())

	for _, want := range []string{
		"Paycheck Amount", "$2,000.00",
		"Rent (per paycheck)", "$323.08",
		"Amount Left After Rent", "$1,676.92",
		"Suggested $", "VXUS", "Total",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPlan output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Nothing left after rent") {
		t.Error("positive leftover should not print the warning")
	}
}

func TestRenderPlan_NegativeLeftoverWarns(t *testing.T) {
	p := samplePlan()
	p.Leftover = -100
	p.UsableLeftover = 0

	if out := RenderPlan(p); !strings.Contains(out, "Nothing left after rent") {
		t.Errorf("expected warning\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderAllocationBars(t *testing.T) {
	out := RenderAllocationBars(samplePlan(), 20)
	if got := strings.Count(out, "\n"); got != 3 {
		t.Fatalf("got %d lines, want 3\n%s", got, out)
	}
	if !strings.Contains(out, "100.00% / 50.00%") {
		t.Errorf("missing VTI percentages\n%s", out)
	}
}

func TestRenderAllocationChart_PNG(t *testing.T) {
	data, err := RenderAllocationChart(samplePlan())
	if err != nil {
		t.Fatalf("RenderAllocationChart: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG (first bytes %q)", data[:min(8, len(data))])
	}
}

func TestRenderAllocationChart_AllZero(t *testing.T) {
	p := model.Plan{Rows: []model.AllocationRow{{Symbol: "VTI"}, {Symbol: "QQQ"}}}
	if _, err := RenderAllocationChart(p); err != nil {
		t.Fatalf("all-zero chart should still render: %v", err)
	}
}

func TestRenderAllocationChart_NoRows(t *testing.T) {
	if _, err := RenderAllocationChart(model.Plan{}); err == nil {
		t.Fatal("expected error for empty plan")
	}
}
