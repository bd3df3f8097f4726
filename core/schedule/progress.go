package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/registration"
)

// Progress is the recomputed counter set returned by SyncProgress.
type Progress struct {
	CycleID           string `json:"cycle_id"`
	TotalMeetings     int    `json:"total_meetings"`
	CompletedMeetings int    `json:"completed_meetings"`
	RemainingMeetings int    `json:"remaining_meetings"`
}

// SyncProgress is the authoritative counter repair: it recomputes the cycle's
// completed/total/remaining counters from the actual meeting records. Total
// tolerates over-generation by keeping the larger of the stored plan and the
// actual row count.
func (svc *Service) SyncProgress(ctx context.Context, cycleID string) (Progress, error) {
	cyc, err := svc.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return Progress{}, err
	}

	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		return svc.reconcile(ctx, &cyc, tx)
	})
	if err != nil {
		return Progress{}, err
	}

	return Progress{
		CycleID:           cyc.ID,
		TotalMeetings:     cyc.TotalMeetings,
		CompletedMeetings: cyc.CompletedMeetings,
		RemainingMeetings: cyc.RemainingMeetings,
	}, nil
}

// Duplicate clones a cycle onto a new start date: the start re-anchors on the
// cycle's weekday, the end date is projected (totalMeetings-1) weeks out
// without consulting holidays (an estimate, refined by actually generating
// meetings), and progress resets. Open registrations are copied and meetings
// generated according to `opts`.
func (svc *Service) Duplicate(ctx context.Context, cycleID string, newStart time.Time, opts cycle.DuplicateOptions) (cycle.Cycle, error) {
	orig, err := svc.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return cycle.Cycle{}, err
	}

	now := nowFunc().UTC()
	dup := orig
	dup.ID = ""
	dup.StartDate = cycle.AnchorWeekday(newStart, orig.Weekday)
	dup.EndDate = cycle.ProjectEndDate(newStart, orig.Weekday, orig.TotalMeetings)
	dup.Status = cycle.StatusActive
	dup.CompletedMeetings = 0
	dup.RemainingMeetings = orig.TotalMeetings
	dup.CreatedAt = now
	dup.UpdatedAt = now

	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		if dup, err = svc.cycles.CreateCycle(ctx, dup, tx); err != nil {
			return errors.Wrap(err, "inserting duplicated cycle")
		}

		if !opts.CopyRegistrations {
			return nil
		}
		regs, err := svc.regs.QueryRegistrationsByCycle(ctx, orig.ID, tx)
		if err != nil {
			return errors.Wrap(err, "querying registrations")
		}
		for _, reg := range regs {
			if !reg.Status.IsOpen() {
				continue
			}
			copied := registration.Registration{
				CycleID:       dup.ID,
				StudentName:   reg.StudentName,
				CustomerName:  reg.CustomerName,
				CustomerEmail: reg.CustomerEmail,
				Status:        reg.Status,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if _, err := svc.regs.CreateRegistration(ctx, copied, tx); err != nil {
				return errors.Wrap(err, "copying registration")
			}
		}
		return nil
	})
	if err != nil {
		return cycle.Cycle{}, err
	}

	if opts.GenerateMeetings {
		if _, err := svc.GenerateMeetings(ctx, dup.ID); err != nil {
			return cycle.Cycle{}, errors.Wrap(err, "generating meetings for duplicated cycle")
		}
		// pick up the end date set by generation
		if dup, err = svc.cycles.GetCycle(ctx, dup.ID); err != nil {
			return cycle.Cycle{}, err
		}
	}

	return dup, nil
}
