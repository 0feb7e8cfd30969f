package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/firetrack/internal/tui/theme"
)

// AllocationBar renders a bar of width cells for a 0-100 current percent,
// with the gap up to target shaded. Overweight cells past target are orange.
func AllocationBar(current, target float64, width int) string {
	t := theme.Active
	cur := cells(current, width)
	tgt := cells(target, width)

	fill := lipgloss.NewStyle().Foreground(t.Accent)
	gap := lipgloss.NewStyle().Foreground(t.Green)
	over := lipgloss.NewStyle().Foreground(t.Orange)
	empty := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	if cur <= tgt {
		b.WriteString(fill.Render(strings.Repeat("█", cur)))
		b.WriteString(gap.Render(strings.Repeat("▒", tgt-cur)))
		b.WriteString(empty.Render(strings.Repeat("░", width-tgt)))
	} else {
		b.WriteString(fill.Render(strings.Repeat("█", tgt)))
		b.WriteString(over.Render(strings.Repeat("█", cur-tgt)))
		b.WriteString(empty.Render(strings.Repeat("░", width-cur)))
	}
	return b.String()
}

func cells(pct float64, width int) int {
	n := int(pct / 100 * float64(width))
	if n < 0 {
		return 0
	}
	if n > width {
		return width
	}
	return n
}
