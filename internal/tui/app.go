// Package tui provides the interactive Bubble Tea dashboard for firetrack.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/firetrack/internal/allocation"
	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/model"
	"github.com/theirongolddev/firetrack/internal/pricecache"
	"github.com/theirongolddev/firetrack/internal/tui/components"
	"github.com/theirongolddev/firetrack/internal/tui/theme"
)

// PricesLoadedMsg is sent when a price load finishes.
type PricesLoadedMsg struct {
	Snapshot model.PriceSnapshot
	Forced   bool
	Err      error
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	engine *allocation.Engine
	log    logrus.FieldLogger
	now    func() time.Time

	plan model.Plan

	// UI state
	width  int
	height int
	cursor int

	// Price loading
	loading bool
	spinner spinner.Model

	// Share editing
	editing    bool
	shareInput textinput.Model

	// Paycheck form (huh)
	form     *huh.Form
	formVals *InputsValues

	status    string
	statusErr bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 140
	barWidth         = 30
)

// NewApp creates the dashboard over an already loaded engine.
func NewApp(ctx context.Context, engine *allocation.Engine, log logrus.FieldLogger) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	ti := textinput.New()
	ti.Placeholder = "0"
	ti.CharLimit = 20
	ti.Width = 10
	ti.Prompt = ""

	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	return App{
		ctx:        ctx,
		engine:     engine,
		log:        log,
		now:        time.Now,
		plan:       engine.Plan(),
		spinner:    sp,
		shareInput: ti,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

func (a *App) recompute() {
	a.plan = a.engine.Plan()
	if a.cursor >= len(a.plan.Rows) {
		a.cursor = len(a.plan.Rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 80)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.form != nil {
			if msg.String() == "esc" {
				a.form = nil
				a.formVals = nil
				return a, nil
			}
			return a.updateForm(msg)
		}
		if a.editing {
			return a.updateShareInput(msg)
		}
		return a.updateKeys(msg)

	case PricesLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			a.log.WithError(msg.Err).Warn("price load failed")
			a.setStatus(describeLoadError(msg.Err), true)
			return a, nil
		}
		if !msg.Snapshot.IsZero() {
			a.engine.SetSnapshot(msg.Snapshot)
		}
		a.recompute()
		if msg.Forced {
			a.setStatus("Prices refreshed", false)
		} else {
			a.setStatus("Prices loaded", false)
		}
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.editing {
		var cmd tea.Cmd
		a.shareInput, cmd = a.shareInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r", "R":
		if a.loading {
			return a, nil
		}
		force := msg.String() == "R"
		a.loading = true
		if force {
			a.setStatus("Refreshing prices...", false)
		} else {
			a.setStatus("Loading prices (1-week cache)...", false)
		}
		return a, tea.Batch(a.spinner.Tick, loadPricesCmd(a.ctx, a.engine, force))
	case "j", "down":
		if a.cursor < len(a.plan.Rows)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "e", "enter":
		if len(a.plan.Rows) == 0 {
			return a, nil
		}
		sym := a.plan.Rows[a.cursor].Symbol
		a.editing = true
		a.shareInput.SetValue(a.engine.Shares()[sym])
		a.shareInput.CursorEnd()
		return a, a.shareInput.Focus()
	case "i":
		a.formVals = ValuesFromProfile(a.engine.Profile(), a.engine.HasSavedProfile())
		a.form = NewInputsForm(a.formVals)
		if a.width > 0 {
			a.form = a.form.WithWidth(min(a.width, 80)).WithHeight(a.height)
		}
		return a, a.form.Init()
	}
	return a, nil
}

func (a App) updateShareInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.editing = false
		a.shareInput.Blur()
		return a, nil
	case "enter":
		sym := a.plan.Rows[a.cursor].Symbol
		a.engine.SetShares(sym, strings.TrimSpace(a.shareInput.Value()))
		a.editing = false
		a.shareInput.Blur()
		if err := a.engine.SaveHoldings(); err != nil {
			a.log.WithError(err).Error("saving holdings failed")
			a.setStatus("Could not save shares: "+err.Error(), true)
		} else {
			a.setStatus(fmt.Sprintf("Saved %s shares", sym), false)
		}
		a.recompute()
		return a, nil
	}

	var cmd tea.Cmd
	a.shareInput, cmd = a.shareInput.Update(msg)
	return a, cmd
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		if err := a.engine.SetProfile(a.formVals.Profile(a.now())); err != nil {
			a.log.WithError(err).Error("saving inputs failed")
			a.setStatus("Could not save inputs: "+err.Error(), true)
		} else {
			a.setStatus("Inputs saved", false)
		}
		a.form = nil
		a.formVals = nil
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.form = nil
		a.formVals = nil
		return a, nil
	}

	return a, cmd
}

func loadPricesCmd(ctx context.Context, engine *allocation.Engine, force bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := engine.FetchSnapshot(ctx, force)
		return PricesLoadedMsg{Snapshot: snap, Forced: force, Err: err}
	}
}

func describeLoadError(err error) string {
	var pfe *pricecache.PriceFetchError
	if !errors.As(err, &pfe) {
		return "Price fetch failed: " + err.Error()
	}
	if pfe.Status != 0 {
		return fmt.Sprintf("Price fetch failed (HTTP %d): %s", pfe.Status, pfe.Message)
	}
	return "Price fetch failed: " + pfe.Message
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  firetrack needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.form != nil {
		return a.form.View()
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.contentWidth()

	var b strings.Builder

	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ firetrack")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" · FIRE Tracker")
	b.WriteString(logo + sub + "\n\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Paycheck", Value: cli.FormatMoney(a.plan.PayAmount), Note: string(a.engine.Profile().PayFrequency)},
		{Label: "Rent per paycheck", Value: cli.FormatMoney(a.plan.RentPerPaycheck)},
		{Label: "Left after rent", Value: cli.FormatMoney(a.plan.Leftover), Warn: a.plan.Leftover < 0},
		{Label: "Portfolio value", Value: cli.FormatMoney(a.plan.TotalValue)},
	}, w))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Suggested Contribution Table", a.renderTable(), w))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Current vs Target", a.renderBars(), w))
	b.WriteString("\n")

	b.WriteString(a.renderStatusLine())
	b.WriteString("\n")

	hints := "[r]load  [R]efresh  [j/k]select  [e]dit shares  [i]nputs  [q]uit"
	if a.editing {
		hints = "[enter]save  [esc]cancel"
	}
	b.WriteString(components.RenderStatusBar(w, hints, a.pricesAge()))

	return b.String()
}

var columnWidths = []int{6, 11, 10, 13, 10, 10, 9, 13}

func (a App) renderTable() string {
	t := theme.Active

	header := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selected := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)
	total := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder
	b.WriteString(header.Render(formatRow(cli.PlanHeaders)))
	b.WriteString("\n")

	for i, r := range a.plan.Rows {
		shares := cli.FormatShares(r.Shares)
		if a.editing && i == a.cursor {
			shares = a.shareInput.View()
		}
		diff := cli.FormatDiff(r.DiffPercent)
		cells := []string{
			string(r.Symbol),
			cli.FormatPrice(r.Price),
			shares,
			cli.FormatMoney(r.Value),
			cli.FormatPercent(r.CurrentPercent),
			cli.FormatPercent(r.TargetPercent),
			diff,
			cli.FormatMoney(r.SuggestedAmount),
		}

		style := cell
		if i == a.cursor {
			style = selected
		}
		b.WriteString(style.Render(formatRow(cells)))
		b.WriteString("\n")
	}

	b.WriteString(total.Render(formatRow([]string{
		cli.TotalMarker, "", "", cli.FormatMoney(a.plan.TotalValue), "", "", "", cli.FormatMoney(a.plan.TotalSuggested()),
	})))
	return b.String()
}

func formatRow(cells []string) string {
	var b strings.Builder
	for i, c := range cells {
		w := columnWidths[i]
		pad := max(w-lipgloss.Width(c), 0)
		if i == 0 {
			b.WriteString(c + strings.Repeat(" ", pad))
		} else {
			b.WriteString(" " + strings.Repeat(" ", pad) + c)
		}
	}
	return b.String()
}

func (a App) renderBars() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)

	lines := make([]string, 0, len(a.plan.Rows))
	for _, r := range a.plan.Rows {
		lines = append(lines, fmt.Sprintf("%-6s %s %s",
			r.Symbol,
			components.AllocationBar(r.CurrentPercent, r.TargetPercent, barWidth),
			muted.Render(cli.FormatPercent(r.CurrentPercent)+" / "+cli.FormatPercent(r.TargetPercent)),
		))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusLine() string {
	t := theme.Active
	switch {
	case a.loading:
		return " " + a.spinner.View() + lipgloss.NewStyle().Foreground(t.TextMuted).Render(" "+a.status)
	case a.status == "":
		return ""
	case a.statusErr:
		return lipgloss.NewStyle().Foreground(t.Red).Render(" " + a.status)
	default:
		return lipgloss.NewStyle().Foreground(t.Green).Render(" " + a.status)
	}
}

func (a App) pricesAge() string {
	snap := a.engine.Snapshot()
	if snap.IsZero() {
		return "no prices loaded"
	}
	return "prices " + cli.FormatAge(snap.Age(a.now()))
}
