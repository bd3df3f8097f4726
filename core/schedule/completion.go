package schedule

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/mail"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/lead"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
)

var errCycleAlreadyCompleted = errors.New("cycle is already completed")

type (
	// CycleSummary aggregates the final meeting set for human review.
	CycleSummary struct {
		CycleName         string  `json:"cycle_name"`
		MeetingsCompleted int     `json:"meetings_completed"`
		MeetingsCancelled int     `json:"meetings_cancelled"`
		MeetingsPostponed int     `json:"meetings_postponed"`
		Revenue           float64 `json:"revenue"`
		InstructorPayment float64 `json:"instructor_payment"`
		Profit            float64 `json:"profit"`
		Registrations     int     `json:"registrations"`
	}

	// CompletionResult reports the outcome of the completion cascade.
	CompletionResult struct {
		CycleID                string       `json:"cycle_id"`
		RegistrationsCompleted int          `json:"registrations_completed"`
		LeadsCreated           int          `json:"leads_created"`
		OrphansRemoved         int          `json:"orphans_removed"`
		Summary                CycleSummary `json:"summary"`
	}
)

// CompleteCycle runs the completion cascade: durably close the cycle, flip its
// open registrations to completed and emit one upsell lead per registration;
// then, best-effort, tear down conferencing resources of future meetings that
// never happened, delete those records, and send the summary notification.
// Triggered automatically when a meeting completion leaves the cycle with no
// remaining meetings, or invoked explicitly.
func (svc *Service) CompleteCycle(ctx context.Context, cycleID string) (CompletionResult, error) {
	cyc, err := svc.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return CompletionResult{}, err
	}
	if cyc.Status == cycle.StatusCompleted {
		return CompletionResult{}, core.NewValidationError(errCycleAlreadyCompleted)
	}

	res := CompletionResult{CycleID: cyc.ID}
	now := nowFunc().UTC()

	// durable cascade: cycle status, registrations, upsell leads
	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		cyc.Status = cycle.StatusCompleted
		cyc.UpdatedAt = now
		if cyc, err = svc.cycles.UpdateCycle(ctx, cyc, tx); err != nil {
			return errors.Wrap(err, "updating cycle status")
		}

		regs, err := svc.regs.QueryRegistrationsByCycle(ctx, cyc.ID, tx)
		if err != nil {
			return errors.Wrap(err, "querying registrations")
		}
		for _, reg := range regs {
			if !reg.Status.IsOpen() {
				continue
			}
			reg.Status = registration.StatusCompleted
			reg.UpdatedAt = now
			if _, err := svc.regs.UpdateRegistration(ctx, reg, tx); err != nil {
				return errors.Wrap(err, "completing registration")
			}
			res.RegistrationsCompleted++

			l := lead.Lead{
				StudentName:    reg.StudentName,
				CustomerName:   reg.CustomerName,
				CustomerEmail:  reg.CustomerEmail,
				CourseName:     cyc.Name,
				Source:         lead.SourceCycleCompleted,
				RegistrationID: reg.ID,
				CycleID:        cyc.ID,
				CreatedAt:      now,
			}
			if _, err := svc.leads.CreateLead(ctx, l, tx); err != nil {
				return errors.Wrap(err, "creating upsell lead")
			}
			res.LeadsCreated++
		}
		return nil
	})
	if err != nil {
		return CompletionResult{}, err
	}

	// best-effort tail: conferencing cleanup + orphan removal + summary email
	res.OrphansRemoved = svc.removeOrphanedMeetings(ctx, cyc)

	summary, err := svc.summarize(ctx, cyc, res.RegistrationsCompleted)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("summarizing completed cycle %s: %v", cyc.ID, err), err)
		return res, nil
	}
	res.Summary = summary
	svc.sendSummary(ctx, cyc, summary)

	return res, nil
}

// removeOrphanedMeetings deletes still-scheduled meetings dated strictly after
// now, requesting conferencing cleanup for each first. Cleanup failures are
// logged and never abort the cascade.
func (svc *Service) removeOrphanedMeetings(ctx context.Context, cyc cycle.Cycle) int {
	orphans, err := svc.meetings.FilterMeetings(ctx, meeting.QueryFilter{
		CycleID:  cyc.ID,
		Status:   meeting.StatusScheduled,
		DateFrom: core.Date(nowFunc().UTC()).AddDate(0, 0, 1),
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("querying orphaned meetings for cycle %s: %v", cyc.ID, err), err)
		return 0
	}
	if len(orphans) == 0 {
		return 0
	}

	ids := make([]string, 0, len(orphans))
	for _, mtg := range orphans {
		if mtg.ConferenceResourceID.Valid {
			if err := svc.conference.DeleteMeetingResource(ctx, mtg.ConferenceResourceID.String); err != nil {
				svc.logger.Warn(fmt.Sprintf(
					"deleting conference resource %s for meeting %s: %v",
					mtg.ConferenceResourceID.String, mtg.ID, err), err)
			}
		}
		ids = append(ids, mtg.ID)
	}

	cnt, err := svc.meetings.DeleteMeetingsByID(ctx, ids)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("deleting orphaned meetings for cycle %s: %v", cyc.ID, err), err)
		return 0
	}
	return cnt
}

func (svc *Service) summarize(ctx context.Context, cyc cycle.Cycle, regsCompleted int) (CycleSummary, error) {
	mtgs, err := svc.meetings.FilterMeetings(ctx, meeting.QueryFilter{CycleID: cyc.ID})
	if err != nil {
		return CycleSummary{}, errors.Wrap(err, "querying meetings")
	}

	summary := CycleSummary{CycleName: cyc.Name, Registrations: regsCompleted}
	for _, mtg := range mtgs {
		switch mtg.Status {
		case meeting.StatusCompleted:
			summary.MeetingsCompleted++
			summary.Revenue += mtg.Revenue
			summary.InstructorPayment += mtg.InstructorPayment
			summary.Profit += mtg.Profit
		case meeting.StatusCancelled:
			summary.MeetingsCancelled++
		case meeting.StatusPostponed:
			summary.MeetingsPostponed++
		}
	}
	return summary, nil
}

// sendSummary dispatches the completion summary to the operations inbox with
// the final meeting set attached as CSV. Fire-and-forget.
func (svc *Service) sendSummary(ctx context.Context, cyc cycle.Cycle, summary CycleSummary) {
	msg := &core.EmailMessage{
		To:           []mail.Address{svc.conf.OpsEmail()},
		Subject:      fmt.Sprintf("Cycle completed: %s", cyc.Name),
		TemplateName: "cycle-summary",
		TemplateData: summary,
	}

	if csvBuf, err := svc.meetingsCSV(ctx, cyc); err != nil {
		svc.logger.Warn(fmt.Sprintf("attaching meetings CSV for cycle %s: %v", cyc.ID, err), err)
	} else if err = msg.Attach(csvBuf, "meetings.csv", "text/csv"); err != nil {
		svc.logger.Warn(fmt.Sprintf("attaching meetings CSV for cycle %s: %v", cyc.ID, err), err)
	}

	svc.mailSvc.SendMessages(msg)
}

func (svc *Service) meetingsCSV(ctx context.Context, cyc cycle.Cycle) (*bytes.Buffer, error) {
	mtgs, err := svc.meetings.FilterMeetings(ctx, meeting.QueryFilter{CycleID: cyc.ID})
	if err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"date", "status", "instructor", "payment", "revenue", "profit"})
	for _, mtg := range mtgs {
		_ = w.Write([]string{
			mtg.ISODate(),
			string(mtg.Status),
			mtg.InstructorID.String,
			strconv.FormatFloat(mtg.InstructorPayment, 'f', 2, 64),
			strconv.FormatFloat(mtg.Revenue, 'f', 2, 64),
			strconv.FormatFloat(mtg.Profit, 'f', 2, 64),
		})
	}
	w.Flush()
	return buf, w.Error()
}
