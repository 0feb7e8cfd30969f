// Package cmd implements the firetrack CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/allocation"
	"github.com/theirongolddev/firetrack/internal/config"
	"github.com/theirongolddev/firetrack/internal/marketstack"
	"github.com/theirongolddev/firetrack/internal/pricecache"
	"github.com/theirongolddev/firetrack/internal/store"
)

var (
	flagDBPath   string
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "firetrack",
	Short:        "Paycheck contribution planner",
	Long:         "Split what is left of each paycheck after rent across your target ETF allocation.",
	RunE:         runPlan,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Store database path (default $XDG_CACHE_HOME/firetrack/firetrack.db)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Keep price snapshots in memory only")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	addPlanFlags(rootCmd)
}

// session bundles everything a command needs. Close releases the store.
type session struct {
	cfg    config.Config
	log    *logrus.Logger
	db     *store.SQLite
	prices *pricecache.Cache
	engine *allocation.Engine
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	name := cfg.General.LogLevel
	if flagLogLevel != "" {
		name = flagLogLevel
	}
	if name == "" {
		name = "warn"
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	return log, nil
}

// openSession is the shared wiring used by all commands: config, logger,
// store, price client, price cache and the loaded engine.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	targets, err := cfg.Targets()
	if err != nil {
		return nil, err
	}

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = config.DBPath(cfg)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.WithField("path", dbPath).Debug("store opened")

	var snapshots pricecache.KV = db
	if flagNoCache {
		snapshots = store.NewMemory()
	}

	opts := []marketstack.ClientOption{
		marketstack.WithRateLimit(cfg.Marketstack.RequestsPerSecond),
		marketstack.WithLogger(log),
	}
	if cfg.Marketstack.BaseURL != "" {
		opts = append(opts, marketstack.WithBaseURL(cfg.Marketstack.BaseURL))
	}
	client := marketstack.NewClient(config.GetMarketstackKey(cfg), opts...)

	prices := pricecache.New(client, snapshots, targets.Symbols(), pricecache.WithLogger(log))
	engine := allocation.New(prices, store.NewInputs(db), targets)
	if err := engine.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &session{cfg: cfg, log: log, db: db, prices: prices, engine: engine}, nil
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func describeSnapshot(s *session) string {
	snap := s.engine.Snapshot()
	if snap.IsZero() {
		return "no prices loaded"
	}
	return fmt.Sprintf("prices as of %s", snap.CapturedAt.Local().Format(time.DateTime))
}
