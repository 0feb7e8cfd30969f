package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/allocation"
	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/model"
)

var flagClearHoldings bool

var holdingsCmd = &cobra.Command{
	Use:   "holdings [SYMBOL=SHARES ...]",
	Short: "Show or update share counts",
	Example: `  firetrack holdings
  firetrack holdings VTI=12 qqq=5.5
  firetrack holdings --clear`,
	RunE: runHoldings,
}

func init() {
	holdingsCmd.Flags().BoolVar(&flagClearHoldings, "clear", false, "Reset all share counts to 0 before applying any updates")
	rootCmd.AddCommand(holdingsCmd)
}

func runHoldings(_ *cobra.Command, args []string) error {
	updates, err := parseHoldingArgs(args)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if flagClearHoldings {
		if err := s.engine.ClearHoldings(); err != nil {
			return fmt.Errorf("clearing holdings: %w", err)
		}
		progressf("  Cleared saved share counts\n")
	}

	if len(updates) > 0 {
		for _, u := range updates {
			if !hasSymbol(s.engine.Targets(), u.sym) {
				progressf("  Note: %s is not in the target allocation and will not appear in the plan\n", u.sym)
			}
			s.engine.SetShares(u.sym, u.shares)
		}
		if err := s.engine.SaveHoldings(); err != nil {
			return fmt.Errorf("saving holdings: %w", err)
		}
	}

	shares := s.engine.Shares()
	holdings := allocation.Holdings(s.engine.Targets().Symbols(), shares, s.engine.Snapshot())

	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, []string{string(h.Symbol), cli.FormatShares(h.Shares), cli.FormatPrice(h.Price), cli.FormatMoney(h.Value)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Holdings (" + describeSnapshot(s) + ")",
		Headers: []string{"Symbol", "Shares", "Price", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

type holdingUpdate struct {
	sym    model.Symbol
	shares string
}

func parseHoldingArgs(args []string) ([]holdingUpdate, error) {
	out := make([]holdingUpdate, 0, len(args))
	for _, arg := range args {
		sym, n, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(sym) == "" {
			return nil, fmt.Errorf("invalid holding %q: want SYMBOL=SHARES", arg)
		}
		out = append(out, holdingUpdate{sym: model.NormalizeSymbol(sym), shares: strings.TrimSpace(n)})
	}
	return out, nil
}

func hasSymbol(ta model.TargetAllocation, sym model.Symbol) bool {
	for _, s := range ta.Symbols() {
		if s == sym {
			return true
		}
	}
	return false
}
