package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the plan and prices over a local HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8788)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if flagLogLevel == "" && s.log.GetLevel() < logrus.InfoLevel {
		s.log.SetLevel(logrus.InfoLevel)
	}

	addr := s.cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressf("  Serving on http://%s (Ctrl+C to stop)\n", addr)
	svc := server.New(server.Config{Addr: addr, Logger: s.log}, s.engine, s.prices)
	return svc.Run(ctx)
}
