package cmd

import (
	"fmt"
	"log/slog"

	"github.com/theirongolddev/paytrack/internal/alert"
	"github.com/theirongolddev/paytrack/internal/cli"
	"github.com/theirongolddev/paytrack/internal/daemon"
	"github.com/theirongolddev/paytrack/internal/logging"

	"github.com/spf13/cobra"
)

// notifyLogRetentionDays bounds the notification log; older marks can never
// suppress a reminder again.
const notifyLogRetentionDays = 60

var flagCheckNotify bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show today's reminders, optionally delivering them",
	Long: `Evaluate every bill and list the reminders due today. With --notify the
reminders are delivered (log line plus the configured notify command), at
most once per bill per day. Suitable for cron.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckNotify, "notify", false, "Deliver reminders instead of only listing them")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	logger := slog.Default()
	svc := daemon.New(daemon.Config{
		Source:    s.st,
		Sink:      buildSink(s.cfg, logger),
		Marker:    s.st,
		Clock:     s.clock,
		Projector: projector(s.cfg),
		Threshold: s.cfg.Alerts.ThresholdDays,
		Mode:      s.cfg.Notify.Mode,
		Hour:      s.cfg.Notify.Hour,
		Logger:    logger,
	})

	res, err := svc.Sweep(ctx, flagCheckNotify)
	if err != nil {
		logging.LogError(logger, err, "check finished with errors")
	}

	if len(res.Reminders) == 0 {
		fmt.Println("  No reminders today.")
	}
	for _, n := range res.Reminders {
		fmt.Printf("  %s\n", cli.RenderStatus(n.Status, n.Message))
	}
	if flagCheckNotify {
		fmt.Printf("  Delivered %d of %d (others were already sent today)\n", len(res.Delivered), len(res.Reminders))
		if _, err := s.st.PruneNotifications(ctx, res.Today.AddDate(0, 0, -notifyLogRetentionDays)); err != nil {
			logging.LogError(logger, err, "pruning notification log")
		}
	}

	if c := alert.Count(res.Evaluations); c.Overdue > 0 {
		fmt.Printf("  %s\n", cli.RenderStatus("overdue", cli.Plural(c.Overdue, "bill")+" overdue"))
	}
	return err
}
