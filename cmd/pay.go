package cmd

import (
	"fmt"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/model"

	"github.com/spf13/cobra"
)

var flagPayAmount string

var payCmd = &cobra.Command{
	Use:   "pay <id>",
	Short: "Mark a bill paid for the current cycle",
	Long:  "Mark a bill paid. The paid amount defaults to the bill's amount.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPay,
}

var renewCmd = &cobra.Command{
	Use:   "renew <id>",
	Short: "Move a paid bill back to pending for its next cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runRenew,
}

func init() {
	payCmd.Flags().StringVarP(&flagPayAmount, "amount", "a", "", "Amount actually paid")
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(renewCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	o, err := s.st.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if o.Paid {
		return fmt.Errorf("%s is already paid; run `paytrack renew %s` to start the next cycle", o.Name(), cli.ShortID(o.ID))
	}

	amount := o.Amount
	if flagPayAmount != "" {
		if amount, err = parseAmount(flagPayAmount); err != nil {
			return err
		}
	}

	updated, err := s.st.Update(ctx, o.ID, model.PayPatch(s.clock.Now(), amount))
	if err != nil {
		return err
	}
	fmt.Printf("  Paid %s  %s\n", updated.Label(), cli.FormatAmount(amount))
	printNextDue(s, updated)
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}

func runRenew(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	o, err := s.st.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	if !o.Paid {
		fmt.Printf("  %s is already pending.\n", o.Label())
		return nil
	}

	updated, err := s.st.Update(ctx, o.ID, model.RenewPatch())
	if err != nil {
		return err
	}
	fmt.Printf("  Renewed %s\n", updated.Label())
	printNextDue(s, updated)
	pushAfterWrite(ctx, s.cfg, s.st)
	return nil
}

// printNextDue shows where the bill lands after a state change.
func printNextDue(s *session, o model.Obligation) {
	today, err := s.today()
	if err != nil {
		return
	}
	pr, err := projector(s.cfg).Project(o, today)
	if err != nil {
		return
	}
	res := alert.Classify(o, pr.Days, s.cfg.Alerts.ThresholdDays)
	fmt.Printf("  Next due %s  %s\n", cli.FormatDate(pr.Due), cli.RenderStatus(res.Status.String(), cli.FormatDays(pr.Days)))
}
