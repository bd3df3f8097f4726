package main

import (
	"context"
	"fmt"

	"github.com/trezcool/kelasi/core/cycle"
)

// syncProgress reconciles the progress counters of every active cycle, or of
// a single cycle when cycleID is set. Failures are reported per cycle and do
// not stop the run.
func (cli *commandLine) syncProgress(ctx context.Context, cycleID string) error {
	var cycles []cycle.Cycle
	if cycleID != "" {
		cyc, err := cli.cycles.GetCycle(ctx, cycleID)
		if err != nil {
			return err
		}
		cycles = append(cycles, cyc)
	} else {
		var err error
		if cycles, err = cli.cycles.FilterCycles(ctx, cycle.QueryFilter{Status: cycle.StatusActive}); err != nil {
			return err
		}
	}

	var failed int
	for _, cyc := range cycles {
		progress, err := cli.scheduleSvc.SyncProgress(ctx, cyc.ID)
		if err != nil {
			failed++
			logger.Printf("syncprogress: cycle %s (%s): %v", cyc.ID, cyc.Name, err)
			continue
		}
		logger.Printf(
			"syncprogress: cycle %s (%s): %d/%d completed, %d remaining",
			cyc.ID, cyc.Name, progress.CompletedMeetings, progress.TotalMeetings, progress.RemainingMeetings,
		)
	}
	if failed > 0 {
		return fmt.Errorf("syncprogress: %d of %d cycles failed", failed, len(cycles))
	}
	return nil
}
