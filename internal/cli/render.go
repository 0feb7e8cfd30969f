package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/firetrack/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// TotalMarker as the first cell of a row renders that row in bold.
const TotalMarker = "Total"

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		style := valueStyle
		if len(row) > 0 && row[0] == TotalMarker {
			style = totalStyle
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(style.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

// PlanHeaders are the column headers of the contribution table.
var PlanHeaders = []string{"Symbol", "Price", "Shares", "Value", "Current %", "Target %", "Diff", "Suggested $"}

// PlanRows converts a plan into table rows, ending with a Total row.
func PlanRows(p model.Plan) [][]string {
	rows := make([][]string, 0, len(p.Rows)+2)
	for _, r := range p.Rows {
		rows = append(rows, []string{
			string(r.Symbol),
			FormatPrice(r.Price),
			FormatShares(r.Shares),
			FormatMoney(r.Value),
			FormatPercent(r.CurrentPercent),
			FormatPercent(r.TargetPercent),
			FormatDiff(r.DiffPercent),
			FormatMoney(r.SuggestedAmount),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{TotalMarker, "", "", FormatMoney(p.TotalValue), "", "", "", FormatMoney(p.TotalSuggested())})
	return rows
}

// RenderSummary renders the paycheck snapshot line.
func RenderSummary(p model.Plan) string {
	sep := dimStyle.Render(" | ")
	line := mutedStyle.Render("Paycheck Amount ") + moneyStyle.Render(FormatMoney(p.PayAmount)) + sep +
		mutedStyle.Render("Rent (per paycheck) ") + moneyStyle.Render(FormatMoney(p.RentPerPaycheck)) + sep +
		mutedStyle.Render("Amount Left After Rent ")

	left := moneyStyle
	if p.Leftover < 0 {
		left = warnStyle
	}
	return "  " + line + left.Render(FormatMoney(p.Leftover))
}

// RenderPlan renders the summary line and the contribution table.
func RenderPlan(p model.Plan) string {
	var b strings.Builder
	b.WriteString(RenderSummary(p))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(Table{
		Title:   "Suggested Contribution Table",
		Headers: PlanHeaders,
		Rows:    PlanRows(p),
	}))
	if p.Leftover <= 0 {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("Nothing left after rent; no contributions suggested."))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderAllocationBars renders one bar per row comparing current to target
// percent on a 0-100 scale.
func RenderAllocationBars(p model.Plan, maxWidth int) string {
	var b strings.Builder
	for _, r := range p.Rows {
		cur := barLen(r.CurrentPercent, maxWidth)
		tgt := barLen(r.TargetPercent, maxWidth)

		var bar string
		if cur >= tgt {
			bar = valueStyle.Render(strings.Repeat("█", tgt)) + warnStyle.Render(strings.Repeat("█", cur-tgt))
		} else {
			bar = valueStyle.Render(strings.Repeat("█", cur)) + dimStyle.Render(strings.Repeat("░", tgt-cur))
		}
		fmt.Fprintf(&b, "  %-6s %s %s\n", r.Symbol, bar, mutedStyle.Render(FormatPercent(r.CurrentPercent)+" / "+FormatPercent(r.TargetPercent)))
	}
	return b.String()
}

func barLen(pct float64, maxWidth int) int {
	n := int(pct / 100 * float64(maxWidth))
	if n < 0 {
		return 0
	}
	if n > maxWidth {
		return maxWidth
	}
	return n
}
