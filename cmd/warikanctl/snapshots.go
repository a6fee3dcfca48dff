package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"warikan/internal/cli"
	"warikan/internal/core"
	"warikan/internal/services"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored settlement snapshots for a year, or the latest one for a month",
	RunE:  runSnapshots,
}

var snapshotNowCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record a snapshot of the newest month now",
	RunE:  runSnapshotNow,
}

func init() {
	snapshotsCmd.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default: current year)")
	snapshotsCmd.Flags().IntVarP(&flagMonth, "month", "m", 0, "Show only the latest snapshot of this month")
	rootCmd.AddCommand(snapshotsCmd, snapshotNowCmd)
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	year := flagYear
	if year == 0 {
		year = time.Now().In(a.cfg.Location()).Year()
	}
	var snaps []core.Snapshot
	if flagMonth != 0 {
		p := core.Period{Year: year, Month: flagMonth}
		if err := p.Validate(); err != nil {
			return err
		}
		latest, err := a.backend.Store.LatestSnapshot(ctx, p)
		if err != nil {
			return err
		}
		if flagJSON {
			return a.printJSON(latest)
		}
		snaps = []core.Snapshot{latest}
	} else {
		snaps, err = a.backend.Store.ListSnapshots(ctx, year)
		if err != nil {
			return err
		}
	}
	if flagJSON {
		return a.printJSON(snaps)
	}
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, cli.RenderSnapshots(year, snaps))
	return nil
}

func runSnapshotNow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := services.NewSnapshotScheduler(a.settlements, a.backend.Store, services.SnapshotSchedulerConfig{})
	stored, err := sched.RunOnce(ctx)
	if err != nil {
		return err
	}
	if !stored {
		fmt.Fprintln(a.out, "ledger is empty, nothing recorded")
		return nil
	}
	fmt.Fprintln(a.out, "snapshot recorded")
	return nil
}
