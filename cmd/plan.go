package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/cli"
)

var (
	flagRefresh bool
	flagChart   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the suggested contribution for this paycheck",
	RunE:  runPlan,
}

func init() {
	addPlanFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func addPlanFlags(c *cobra.Command) {
	c.Flags().BoolVar(&flagRefresh, "refresh", false, "Fetch fresh prices even if the 1-week cache is valid")
	c.Flags().StringVar(&flagChart, "chart", "", "Also write a current-vs-target PNG chart to this path")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if flagRefresh {
		progressf("  Refreshing prices...\n")
	} else {
		progressf("  Loading prices (1-week cache)...\n")
	}
	if err := s.engine.RefreshPrices(cmd.Context(), flagRefresh); err != nil {
		// The plan still renders; unknown prices show as "-".
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
	}

	plan := s.engine.Plan()

	fmt.Println()
	fmt.Println(cli.RenderTitle("FIRE TRACKER  " + describeSnapshot(s)))
	fmt.Println()
	fmt.Print(cli.RenderPlan(plan))
	fmt.Println()
	fmt.Print(cli.RenderAllocationBars(plan, 40))
	fmt.Println()

	if flagChart != "" {
		png, err := cli.RenderAllocationChart(plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagChart, png, 0o644); err != nil { //nolint:gosec // user-chosen output file
			return fmt.Errorf("writing chart: %w", err)
		}
		progressf("  Chart written to %s\n", flagChart)
	}

	return nil
}
