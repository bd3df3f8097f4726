package schedule

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/meeting"
)

// CompleteMeeting moves a scheduled meeting to completed: records the actor
// and timestamp, finalizes payment/revenue/profit figures when not already
// finalized, and shifts the owning cycle's counters. When the completion
// leaves the cycle with no remaining meetings, the completion cascade fires.
func (svc *Service) CompleteMeeting(ctx context.Context, meetingID string, cm meeting.CompleteMeeting) (meeting.Meeting, error) {
	mtg, err := svc.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	if err = mtg.Guard(meeting.ActionComplete); err != nil {
		return meeting.Meeting{}, err
	}

	cyc, err := svc.cycles.GetCycle(ctx, mtg.CycleID)
	if err != nil {
		return meeting.Meeting{}, err
	}

	if !mtg.IsFinalized() {
		payment, err := svc.paymentFor(ctx, cyc, mtg)
		if err != nil {
			return meeting.Meeting{}, err
		}
		revenue := cm.Revenue
		if revenue == 0 {
			if revenue, err = svc.revenueFor(ctx, cyc); err != nil {
				return meeting.Meeting{}, err
			}
		}
		mtg.InstructorPayment = payment
		mtg.Revenue = revenue
		mtg.Profit = revenue - payment
	}

	now := nowFunc().UTC()
	mtg.Status = meeting.StatusCompleted
	mtg.CompletedAt = null.TimeFrom(now)
	mtg.CompletedBy = null.StringFrom(cm.CompletedBy)
	mtg.UpdatedAt = now

	cyc.CompletedMeetings++
	cyc.RemainingMeetings--
	cyc.UpdatedAt = now
	if cyc.RemainingMeetings < 0 {
		return meeting.Meeting{}, &cycle.InconsistentCountersError{
			CycleID:   cyc.ID,
			Total:     cyc.TotalMeetings,
			Completed: cyc.CompletedMeetings,
			Remaining: cyc.RemainingMeetings,
		}
	}

	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		if mtg, err = svc.meetings.UpdateMeeting(ctx, mtg, tx); err != nil {
			return errors.Wrap(err, "updating meeting")
		}
		if cyc, err = svc.cycles.UpdateCycle(ctx, cyc, tx); err != nil {
			return errors.Wrap(err, "updating cycle counters")
		}
		return nil
	})
	if err != nil {
		return meeting.Meeting{}, err
	}

	// last remaining meeting completed: close out the cycle
	if cyc.RemainingMeetings == 0 && cyc.Status == cycle.StatusActive {
		if _, err := svc.CompleteCycle(ctx, cyc.ID); err != nil {
			return meeting.Meeting{}, errors.Wrap(err, "completing cycle")
		}
	}

	return mtg, nil
}

// CancelMeeting moves a scheduled meeting to cancelled. A cancelled meeting is
// neither completed nor pending: only the remaining counter shrinks.
func (svc *Service) CancelMeeting(ctx context.Context, meetingID string, cm meeting.CancelMeeting) (meeting.Meeting, error) {
	mtg, err := svc.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	if err = mtg.Guard(meeting.ActionCancel); err != nil {
		return meeting.Meeting{}, err
	}

	cyc, err := svc.cycles.GetCycle(ctx, mtg.CycleID)
	if err != nil {
		return meeting.Meeting{}, err
	}

	now := nowFunc().UTC()
	mtg.Status = meeting.StatusCancelled
	mtg.CancelReason = null.StringFrom(core.CleanString(cm.Reason))
	mtg.UpdatedAt = now

	cyc.RemainingMeetings--
	cyc.UpdatedAt = now
	if cyc.RemainingMeetings < 0 {
		return meeting.Meeting{}, &cycle.InconsistentCountersError{
			CycleID:   cyc.ID,
			Total:     cyc.TotalMeetings,
			Completed: cyc.CompletedMeetings,
			Remaining: cyc.RemainingMeetings,
		}
	}

	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		if mtg, err = svc.meetings.UpdateMeeting(ctx, mtg, tx); err != nil {
			return errors.Wrap(err, "updating meeting")
		}
		if _, err = svc.cycles.UpdateCycle(ctx, cyc, tx); err != nil {
			return errors.Wrap(err, "updating cycle counters")
		}
		return nil
	})
	if err != nil {
		return meeting.Meeting{}, err
	}
	return mtg, nil
}

// PostponeMeeting exchanges a scheduled meeting for a successor on a new date:
// the successor carries the same cycle, instructor and activity (times default
// to the original's), both records are linked, and the original becomes
// postponed. Counters are untouched; one scheduled meeting replaces another.
func (svc *Service) PostponeMeeting(ctx context.Context, meetingID string, pm meeting.PostponeMeeting) (meeting.Meeting, error) {
	orig, err := svc.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	if err = orig.Guard(meeting.ActionPostpone); err != nil {
		return meeting.Meeting{}, err
	}

	startTime := pm.NewStartTime
	if startTime == "" {
		startTime = orig.StartTime
	}
	endTime := pm.NewEndTime
	if endTime == "" {
		endTime = orig.EndTime
	}

	now := nowFunc().UTC()
	successor := meeting.Meeting{
		CycleID:           orig.CycleID,
		Date:              core.Date(pm.NewDate),
		StartTime:         startTime,
		EndTime:           endTime,
		DurationMinutes:   orig.DurationMinutes,
		Status:            meeting.StatusScheduled,
		InstructorID:      orig.InstructorID,
		IsSupport:         orig.IsSupport,
		ActivityType:      orig.ActivityType,
		RescheduledFromID: null.StringFrom(orig.ID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		if successor, err = svc.meetings.CreateMeeting(ctx, successor, tx); err != nil {
			return errors.Wrap(err, "inserting successor meeting")
		}

		orig.Status = meeting.StatusPostponed
		orig.RescheduledToID = null.StringFrom(successor.ID)
		orig.UpdatedAt = now
		if orig, err = svc.meetings.UpdateMeeting(ctx, orig, tx); err != nil {
			return errors.Wrap(err, "updating postponed meeting")
		}
		return nil
	})
	if err != nil {
		return meeting.Meeting{}, err
	}
	return successor, nil
}

// RecalculateMeeting re-runs the payment calculator against current rates and
// duration without changing status. Used when rates change after the fact.
func (svc *Service) RecalculateMeeting(ctx context.Context, meetingID string) (meeting.Meeting, error) {
	mtg, err := svc.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return meeting.Meeting{}, err
	}

	cyc, err := svc.cycles.GetCycle(ctx, mtg.CycleID)
	if err != nil {
		return meeting.Meeting{}, err
	}

	payment, err := svc.paymentFor(ctx, cyc, mtg)
	if err != nil {
		return meeting.Meeting{}, err
	}

	mtg.InstructorPayment = payment
	mtg.Profit = mtg.Revenue - payment
	mtg.UpdatedAt = nowFunc().UTC()

	if mtg, err = svc.meetings.UpdateMeeting(ctx, mtg); err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "updating meeting")
	}
	return mtg, nil
}
