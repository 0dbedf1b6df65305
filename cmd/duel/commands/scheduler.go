package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duelist/stockduel/internal/scheduler"
	"github.com/duelist/stockduel/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Start the bracket refresh scheduler",
	Long: `Runs the cron scheduler that periodically refreshes every
non-completed bracket: re-fetches prices, activates brackets whose start
date passed and scores brackets whose window closed.

The sweep schedule comes from DUEL_REFRESH_SCHEDULE
(default "0 */10 * * * *", every ten minutes).

Example:
  go run ./cmd/duel scheduler`,
	RunE: runScheduler,
}

var runOnce bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&runOnce, "once", false, "run one refresh sweep and exit")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockDuel Scheduler ===")

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if runOnce {
		return app.service.RefreshAll(cmd.Context())
	}

	sched := scheduler.New(app.log)
	refreshJob := jobs.NewBracketRefreshJob(app.service, app.log, app.cfg.Duel.RefreshSchedule)
	if err := sched.AddJob(refreshJob); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("\nScheduler running (schedule: %s)\n", app.cfg.Duel.RefreshSchedule)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	for kind, st := range app.usage.Snapshot() {
		app.log.WithFields(map[string]interface{}{
			"kind":     kind,
			"calls":    st.Calls,
			"failures": st.Failures,
		}).Info("Provider usage")
	}

	return nil
}
