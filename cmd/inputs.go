package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/firetrack/internal/cli"
	"github.com/theirongolddev/firetrack/internal/model"
	"github.com/theirongolddev/firetrack/internal/tui"
)

var (
	flagPay           string
	flagPayFrequency  string
	flagRent          string
	flagRentFrequency string
)

var inputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "Set paycheck and rent (interactive form when no flags are given)",
	RunE:  runInputs,
}

func init() {
	inputsCmd.Flags().StringVar(&flagPay, "pay", "", "Paycheck amount")
	inputsCmd.Flags().StringVar(&flagPayFrequency, "pay-frequency", "", "weekly, biweekly, monthly or annually")
	inputsCmd.Flags().StringVar(&flagRent, "rent", "", "Rent amount")
	inputsCmd.Flags().StringVar(&flagRentFrequency, "rent-frequency", "", "weekly or monthly")
	rootCmd.AddCommand(inputsCmd)
}

func runInputs(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	vals := tui.ValuesFromProfile(s.engine.Profile(), s.engine.HasSavedProfile())

	if !anyChanged(cmd, "pay", "pay-frequency", "rent", "rent-frequency") {
		if err := tui.NewInputsForm(vals).Run(); err != nil {
			return fmt.Errorf("inputs form: %w", err)
		}
	} else {
		if err := applyInputFlags(cmd, vals); err != nil {
			return err
		}
	}

	if err := s.engine.SetProfile(vals.Profile(time.Now())); err != nil {
		return fmt.Errorf("saving inputs: %w", err)
	}

	plan := s.engine.Plan()
	fmt.Println()
	fmt.Println(cli.RenderSummary(plan))
	fmt.Println()
	progressf("  Saved. Run `firetrack plan` to see suggested contributions.\n")
	return nil
}

func applyInputFlags(cmd *cobra.Command, vals *tui.InputsValues) error {
	if cmd.Flags().Changed("pay") {
		if err := tui.ValidateAmount(flagPay); err != nil {
			return fmt.Errorf("--pay: %w", err)
		}
		vals.PayAmount = flagPay
	}
	if cmd.Flags().Changed("rent") {
		if err := tui.ValidateAmount(flagRent); err != nil {
			return fmt.Errorf("--rent: %w", err)
		}
		vals.RentAmount = flagRent
	}
	if cmd.Flags().Changed("pay-frequency") {
		f, err := parseFrequency(flagPayFrequency, model.PayFrequencies)
		if err != nil {
			return fmt.Errorf("--pay-frequency: %w", err)
		}
		vals.PayFrequency = f
	}
	if cmd.Flags().Changed("rent-frequency") {
		f, err := parseFrequency(flagRentFrequency, model.RentFrequencies)
		if err != nil {
			return fmt.Errorf("--rent-frequency: %w", err)
		}
		vals.RentFrequency = f
	}
	return nil
}

func parseFrequency(raw string, allowed []model.Frequency) (model.Frequency, error) {
	for _, f := range allowed {
		if model.Frequency(raw) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frequency %q (want one of %v)", raw, allowed)
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}
