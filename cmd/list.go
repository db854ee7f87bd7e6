package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/schedule"

	"github.com/spf13/cobra"
)

var (
	flagListTab  string
	flagListJSON bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bills by urgency",
	RunE:    runList,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, listCmd} {
		c.Flags().StringVarP(&flagListTab, "tab", "t", "pending", "Which bills to show: pending, paid, all")
		c.Flags().BoolVar(&flagListJSON, "json", false, "Print machine-readable JSON")
	}
	rootCmd.AddCommand(listCmd)
}

// listEntry is the JSON shape of one listed bill.
type listEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Due    string `json:"due"`
	Days   int    `json:"days"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Paid   bool   `json:"paid"`
}

func runList(cmd *cobra.Command, _ []string) error {
	tab, err := alert.ParseTab(flagListTab)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	evals, today, err := evaluateAll(cmd.Context(), s)
	if err != nil {
		return err
	}
	shown := alert.Filter(evals, tab)

	if flagListJSON {
		out := make([]listEntry, 0, len(shown))
		for _, e := range shown {
			out = append(out, listEntry{
				ID:     e.Obligation.ID,
				Name:   e.Obligation.Name(),
				Amount: e.Obligation.Amount.String(),
				Due:    e.Projection.Due.Format(schedule.DayLayout),
				Days:   e.Days(),
				Status: e.Result.Status.String(),
				Text:   e.Result.Text,
				Paid:   e.Obligation.Paid,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(evals) == 0 {
		fmt.Println("\n  No bills yet. Add one with `paytrack add` or load examples with `paytrack seed`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BILLS  %s  %s", tab, today.Format("Mon Jan 2, 2006"))))
	fmt.Println()

	if len(shown) == 0 {
		fmt.Printf("  Nothing %s.\n\n", tab)
	} else {
		rows := make([][]string, 0, len(shown))
		for _, e := range shown {
			rows = append(rows, []string{
				cli.ShortID(e.Obligation.ID),
				e.Obligation.Label(),
				cli.FormatDate(e.Projection.Due),
				cli.FormatAmount(e.Obligation.Amount),
				cli.RenderStatus(e.Result.Status.String(), e.Result.Text),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:    []string{"ID", "Bill", "Due", "Amount", "Status"},
			Rows:       rows,
			RightAlign: map[int]bool{3: true},
		}))
	}

	c := alert.Count(evals)
	fmt.Printf("  Paid this cycle  %s\n", cli.RenderProgressBar(c.Paid, len(evals), 20))
	if c.Overdue > 0 {
		fmt.Printf("  %s\n", cli.RenderStatus("overdue", cli.Plural(c.Overdue, "bill")+" overdue"))
	}
	fmt.Println()
	return nil
}

// evaluateAll loads, projects and sorts every bill. Bills that cannot be
// projected are reported on stderr and left out.
func evaluateAll(ctx context.Context, s *session) ([]alert.Evaluation, time.Time, error) {
	today, err := s.today()
	if err != nil {
		return nil, time.Time{}, err
	}
	obs, err := s.st.List(ctx)
	if err != nil {
		return nil, today, err
	}
	evals, err := alert.Evaluate(projector(s.cfg), obs, today, s.cfg.Alerts.ThresholdDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
	}
	alert.SortByUrgency(evals)
	return evals, today, nil
}
