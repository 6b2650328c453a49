package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/cobra"

	"github.com/rcliao/shop-recommender/internal/logger"
	"github.com/rcliao/shop-recommender/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete idle conversations",
		Long: "Delete conversations with no message for longer than --idle. With --schedule the sweep " +
			"repeats on a cron expression until interrupted.",
		Run: runSweep,
	}

	cmd.Flags().Duration("idle", 0, "Idle threshold (default: sweep_idle from config)")
	cmd.Flags().String("schedule", "", "Cron expression, e.g. \"0 * * * *\" (default: sweep_schedule from config)")

	RootCmd.AddCommand(cmd)
}

func runSweep(cmd *cobra.Command, args []string) {
	idle, _ := cmd.Flags().GetDuration("idle")
	schedule, _ := cmd.Flags().GetString("schedule")
	if idle <= 0 {
		idle = cfg.SweepIdle
	}
	if schedule == "" {
		schedule = cfg.SweepSchedule
	}
	if schedule != "" && !gronx.New().IsValid(schedule) {
		exitErr("sweep", fmt.Errorf("invalid schedule %q", schedule))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()
	m := newManager(s)

	if schedule == "" {
		removed, err := m.Sweep(cmd.Context(), idle)
		if err != nil {
			exitErr("sweep", err)
		}
		fmt.Printf(`{"ok":true,"removed":%d}`+"\n", removed)
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sweepOnSchedule(ctx, m, schedule, idle); err != nil && ctx.Err() == nil {
		exitErr("sweep", err)
	}
}

// sweepOnSchedule runs a sweep at every tick of the cron expression until
// ctx is cancelled.
func sweepOnSchedule(ctx context.Context, m *session.Manager, schedule string, idle time.Duration) error {
	for {
		next, err := gronx.NextTickAfter(schedule, time.Now(), false)
		if err != nil {
			return err
		}
		logger.InfoCF("cli", "Next sweep scheduled", map[string]interface{}{
			"at":       next.Format(time.RFC3339),
			"schedule": schedule,
		})

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		removed, err := m.Sweep(ctx, idle)
		if err != nil {
			return err
		}
		fmt.Printf(`{"ok":true,"at":%q,"removed":%d}`+"\n", time.Now().UTC().Format(time.RFC3339), removed)
	}
}
