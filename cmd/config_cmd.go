package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/config"
	"github.com/theirongolddev/firetrack/internal/marketstack"
	"github.com/theirongolddev/firetrack/internal/pricecache"
	"github.com/theirongolddev/firetrack/internal/store"
	"github.com/theirongolddev/firetrack/internal/tui/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = config.DBPath(cfg)
	}

	fmt.Println("  [General]")
	fmt.Printf("    Log level: %s\n", cfg.General.LogLevel)
	fmt.Printf("    Store:     %s\n", dbPath)
	for _, line := range storeRecordLines(dbPath, time.Now()) {
		fmt.Printf("    %s\n", line)
	}
	fmt.Println()

	fmt.Println("  [Marketstack]")
	fmt.Printf("    API key:  %s\n", cli.MaskKey(config.GetMarketstackKey(cfg)))
	baseURL := cfg.Marketstack.BaseURL
	if baseURL == "" {
		baseURL = marketstack.DefaultBaseURL
	}
	fmt.Printf("    Base URL: %s\n", baseURL)
	fmt.Printf("    Rate:     %.2g req/s\n", cfg.Marketstack.RequestsPerSecond)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Addr: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s (available: %s)\n", cfg.Appearance.Theme, strings.Join(theme.Names(), ", "))
	fmt.Println()

	targets, err := cfg.Targets()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(targets)+2)
	var sum float64
	for _, t := range targets {
		rows = append(rows, []string{string(t.Symbol), cli.FormatPercent(t.Percent)})
		sum += t.Percent
	}
	rows = append(rows, []string{"---"}, []string{cli.TotalMarker, cli.FormatPercent(sum)})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Target allocation",
		Headers: []string{"Symbol", "Target"},
		Rows:    rows,
	}))
	if sum != 100 {
		fmt.Println("  Note: targets do not sum to 100%; they are used as given.")
	}
	fmt.Println()
	return nil
}

var storeRecords = []struct {
	label string
	key   string
}{
	{"Prices", pricecache.SnapshotKey},
	{"Inputs", store.InputsKey},
	{"Holdings", store.HoldingsKey},
}

// storeRecordLines describes when each record was last written. A missing
// store is left uncreated.
func storeRecordLines(dbPath string, now time.Time) []string {
	if _, err := os.Stat(dbPath); err != nil {
		return []string{"Records:   none (store not created yet)"}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return []string{fmt.Sprintf("Records:   unreadable (%v)", err)}
	}
	defer db.Close()

	lines := make([]string, 0, len(storeRecords))
	for _, r := range storeRecords {
		label := fmt.Sprintf("%-10s", r.label+":")
		at, ok, err := db.UpdatedAt(r.key)
		switch {
		case err != nil:
			lines = append(lines, fmt.Sprintf("%s unreadable (%v)", label, err))
		case !ok:
			lines = append(lines, label+" not saved")
		default:
			lines = append(lines, label+" saved "+cli.FormatAge(now.Sub(at)))
		}
	}
	return lines
}
