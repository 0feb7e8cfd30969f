package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/firetrack/internal/model"
)

var (
	chartCurrentColor = drawing.ColorFromHex("4385be")
	chartTargetColor  = drawing.ColorFromHex("879a39")
)

// RenderAllocationChart renders a PNG bar chart with a current and a target
// bar per symbol. Returns raw PNG bytes.
func RenderAllocationChart(p model.Plan) ([]byte, error) {
	if len(p.Rows) == 0 {
		return nil, errors.New("no symbols to chart")
	}

	top := 100.0
	bars := make([]chart.Value, 0, 2*len(p.Rows))
	for _, r := range p.Rows {
		top = max(top, r.CurrentPercent, r.TargetPercent)
		bars = append(bars,
			chart.Value{
				Label: string(r.Symbol) + " now",
				Value: r.CurrentPercent,
				Style: chart.Style{FillColor: chartCurrentColor, StrokeColor: chartCurrentColor},
			},
			chart.Value{
				Label: string(r.Symbol) + " target",
				Value: r.TargetPercent,
				Style: chart.Style{FillColor: chartTargetColor, StrokeColor: chartTargetColor},
			},
		)
	}

	graph := chart.BarChart{
		Title:    "Current vs Target Allocation",
		Width:    max(600, 110*len(bars)),
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
