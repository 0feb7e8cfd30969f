package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/pricecache"
)

var flagPricesRefresh bool

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show the cached price snapshot, fetching if it is stale",
	RunE:  runPrices,
}

func init() {
	pricesCmd.Flags().BoolVar(&flagPricesRefresh, "refresh", false, "Fetch fresh prices even if the 1-week cache is valid")
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	source := "cache"
	if _, fresh := s.prices.Peek(); flagPricesRefresh || !fresh {
		source = "marketstack"
		progressf("  Fetching prices...\n")
	}

	snap, err := s.prices.Get(cmd.Context(), flagPricesRefresh)
	if err != nil {
		if stored, ok := s.prices.Stored(); ok {
			progressf("  Last stored snapshot is %s old\n", cli.FormatAge(stored.Age(time.Now())))
		}
		return err
	}

	rows := make([][]string, 0, len(snap.Prices))
	for _, sym := range s.engine.Targets().Symbols() {
		rows = append(rows, []string{string(sym), cli.FormatPrice(snap.Price(sym))})
	}

	expires := snap.CapturedAt.Add(pricecache.FreshnessWindow)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Prices",
		Headers: []string{"Symbol", "Close"},
		Rows:    rows,
	}))
	fmt.Printf("  Source:     %s\n", source)
	fmt.Printf("  Updated:    %s (%s)\n", snap.CapturedAt.Local().Format(time.DateTime), cli.FormatAge(snap.Age(time.Now())))
	fmt.Printf("  Fresh until %s\n", expires.Local().Format(time.DateTime))
	fmt.Printf("  Snapshot:   %s\n", snap.ID)
	fmt.Println()
	return nil
}
