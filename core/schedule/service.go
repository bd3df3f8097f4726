// Package schedule is the scheduling/billing core: it expands a cycle's
// recurrence definition into dated meetings, drives meetings and their owning
// cycle through their lifecycles, computes instructor pay, reconciles cycle
// progress counters and runs the cycle completion cascade.
//
// Every operation is synchronous request/response; multi-record mutations run
// as one transaction through the Atomizer. External collaborators (calendar,
// conferencing, email) are reached through the core interfaces and never block
// the durable parts of an operation.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/billing"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/instructor"
	"github.com/trezcool/kelasi/core/lead"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
)

var nowFunc = time.Now // for tests

type Service struct {
	atomic      core.Atomizer
	cycles      cycle.Repository
	meetings    meeting.Repository
	regs        registration.Repository
	leads       lead.Repository
	instructors instructor.Repository

	calendar   core.CalendarService
	conference core.ConferenceService
	mailSvc    core.EmailService

	conf   *core.Config
	logger core.Logger
}

func NewService(
	atomic core.Atomizer,
	cycles cycle.Repository,
	meetings meeting.Repository,
	regs registration.Repository,
	leads lead.Repository,
	instructors instructor.Repository,
	calendar core.CalendarService,
	conference core.ConferenceService,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		atomic:      atomic,
		cycles:      cycles,
		meetings:    meetings,
		regs:        regs,
		leads:       leads,
		instructors: instructors,
		calendar:    calendar,
		conference:  conference,
		mailSvc:     mailSvc,
		conf:        conf,
		logger:      logger,
	}
}

// CreateCycle validates and persists a new cycle. Meetings are not generated
// here; call GenerateMeetings once the cycle exists.
func (svc *Service) CreateCycle(ctx context.Context, nc cycle.NewCycle) (cycle.Cycle, error) {
	startDate, err := time.Parse(core.ISODateFormat, nc.StartDate)
	if err != nil {
		return cycle.Cycle{}, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "must be a valid ISO date"})
	}

	start, _ := core.ParseTimeOfDay(nc.StartTime)
	end, err := core.ParseTimeOfDay(nc.EndTime)
	if err == nil && !end.After(start) {
		return cycle.Cycle{}, core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: "must be after start_time"})
	}

	now := nowFunc().UTC()
	cyc := cycle.Cycle{
		Name:              core.CleanString(nc.Name),
		Weekday:           time.Weekday(nc.Weekday),
		StartTime:         nc.StartTime,
		EndTime:           nc.EndTime,
		DurationMinutes:   int(end.Sub(start).Minutes()),
		StartDate:         core.Date(startDate),
		EndDate:           cycle.ProjectEndDate(startDate, time.Weekday(nc.Weekday), nc.TotalMeetings),
		ActivityType:      meeting.ActivityType(nc.ActivityType),
		PricingMode:       cycle.PricingMode(nc.PricingMode),
		Status:            cycle.StatusActive,
		TotalMeetings:     nc.TotalMeetings,
		RemainingMeetings: nc.TotalMeetings,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if nc.PrimaryInstructorID != "" {
		if _, err := svc.instructors.GetInstructor(ctx, nc.PrimaryInstructorID); err != nil {
			return cycle.Cycle{}, err
		}
		cyc.PrimaryInstructorID = null.StringFrom(nc.PrimaryInstructorID)
	}
	if nc.InstructorBudget > 0 {
		cyc.InstructorBudget = null.Float64From(nc.InstructorBudget)
	}
	if nc.PricePerMeeting > 0 {
		cyc.PricePerMeeting = null.Float64From(nc.PricePerMeeting)
	}

	return svc.cycles.CreateCycle(ctx, cyc)
}

func (svc *Service) GetCycle(ctx context.Context, id string) (cycle.Cycle, error) {
	return svc.cycles.GetCycle(ctx, id)
}

func (svc *Service) GetMeeting(ctx context.Context, id string) (meeting.Meeting, error) {
	return svc.meetings.GetMeeting(ctx, id)
}

func (svc *Service) FilterCycles(ctx context.Context, filter cycle.QueryFilter) ([]cycle.Cycle, error) {
	return svc.cycles.FilterCycles(ctx, filter)
}

func (svc *Service) FilterMeetings(ctx context.Context, filter meeting.QueryFilter) ([]meeting.Meeting, error) {
	return svc.meetings.FilterMeetings(ctx, filter)
}

// GenerateMeetings expands the cycle's recurrence into meeting records.
// When the cycle already has meetings, generation resumes after the latest
// existing meeting date, so repeated calls are additive and never duplicate
// earlier dates. `count` defaults to the shortfall against the cycle's planned
// TotalMeetings.
func (svc *Service) GenerateMeetings(ctx context.Context, cycleID string, count ...int) (cycle.GenerateResult, error) {
	cyc, err := svc.cycles.GetCycle(ctx, cycleID)
	if err != nil {
		return cycle.GenerateResult{}, err
	}

	existing, err := svc.meetings.CountMeetings(ctx, cyc.ID, nil)
	if err != nil {
		return cycle.GenerateResult{}, errors.Wrap(err, "counting existing meetings")
	}

	want := cyc.TotalMeetings - existing
	if len(count) > 0 {
		want = count[0]
	}
	if want <= 0 {
		return cycle.GenerateResult{}, nil // already fully generated
	}

	start := cyc.StartDate
	if latest, err := svc.meetings.LatestMeetingDate(ctx, cyc.ID); err != nil {
		return cycle.GenerateResult{}, errors.Wrap(err, "getting latest meeting date")
	} else if !latest.IsZero() {
		start = latest.AddDate(0, 0, 1) // resume after the latest meeting
	}

	holidays := svc.holidaysForSpan(ctx, start, want)

	res, err := cycle.GenerateDates(start, cyc.Weekday, want, holidays)
	if err != nil {
		return res, core.NewValidationError(err)
	}
	if res.Truncated {
		svc.logger.Warn(fmt.Sprintf(
			"meeting generation for cycle %s truncated: %d of %d dates (holiday-bound)",
			cyc.ID, res.Generated, res.Requested))
	}
	if res.Generated == 0 {
		return res, nil
	}

	now := nowFunc().UTC()
	err = svc.atomic.Atomic(ctx, func(tx core.DBExecutor) error {
		for _, d := range res.Dates {
			mtg := meeting.Meeting{
				CycleID:         cyc.ID,
				Date:            d,
				StartTime:       cyc.StartTime,
				EndTime:         cyc.EndTime,
				DurationMinutes: cyc.DurationMinutes,
				Status:          meeting.StatusScheduled,
				InstructorID:    cyc.PrimaryInstructorID,
				ActivityType:    cyc.ActivityType,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if _, err := svc.meetings.CreateMeeting(ctx, mtg, tx); err != nil {
				return errors.Wrap(err, "inserting meeting")
			}
		}

		cyc.EndDate = res.Dates[len(res.Dates)-1]
		return svc.reconcile(ctx, &cyc, tx)
	})
	if err != nil {
		return cycle.GenerateResult{}, err
	}
	return res, nil
}

// holidaysForSpan merges the holiday sets of every year the generation run may
// touch, including the safety-bound overshoot.
func (svc *Service) holidaysForSpan(ctx context.Context, start time.Time, count int) core.HolidaySet {
	lastYear := start.AddDate(0, 0, count*3*7).Year()
	holidays := core.NewHolidaySet()
	for year := start.Year(); year <= lastYear; year++ {
		holidays = holidays.Merge(svc.calendar.FetchHolidays(ctx, year))
	}
	return holidays
}

// reconcile recomputes the cycle's progress counters from the actual meeting
// records and persists the cycle. Must run within the caller's transaction.
func (svc *Service) reconcile(ctx context.Context, cyc *cycle.Cycle, exec ...core.DBExecutor) error {
	completed, err := svc.meetings.CountMeetings(ctx, cyc.ID, []meeting.Status{meeting.StatusCompleted}, exec...)
	if err != nil {
		return errors.Wrap(err, "counting completed meetings")
	}
	total, err := svc.meetings.CountMeetings(ctx, cyc.ID, nil, exec...)
	if err != nil {
		return errors.Wrap(err, "counting meetings")
	}

	// tolerate cycles with more meetings generated than originally planned
	if cyc.TotalMeetings > total {
		total = cyc.TotalMeetings
	}

	cyc.TotalMeetings = total
	cyc.CompletedMeetings = completed
	cyc.RemainingMeetings = total - completed
	cyc.UpdatedAt = nowFunc().UTC()

	if !cyc.CountersConsistent() {
		return &cycle.InconsistentCountersError{
			CycleID:   cyc.ID,
			Total:     cyc.TotalMeetings,
			Completed: cyc.CompletedMeetings,
			Remaining: cyc.RemainingMeetings,
		}
	}

	updated, err := svc.cycles.UpdateCycle(ctx, *cyc, exec...)
	if err != nil {
		return errors.Wrap(err, "updating cycle counters")
	}
	*cyc = updated
	return nil
}

// ratesFor loads the rate table of the meeting's assigned instructor.
// An unassigned instructor yields empty rates (zero pay), not an error.
func (svc *Service) ratesFor(ctx context.Context, mtg meeting.Meeting) (billing.Rates, error) {
	if !mtg.InstructorID.Valid {
		return billing.Rates{}, nil
	}
	ins, err := svc.instructors.GetInstructor(ctx, mtg.InstructorID.String)
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return billing.Rates{}, nil
		}
		return billing.Rates{}, err
	}
	return ins.Rates(), nil
}

// paymentFor resolves the instructor payment for a meeting in its cycle's context.
func (svc *Service) paymentFor(ctx context.Context, cyc cycle.Cycle, mtg meeting.Meeting) (float64, error) {
	rates, err := svc.ratesFor(ctx, mtg)
	if err != nil {
		return 0, err
	}
	return billing.Calculate(
		billing.Context{
			PrimaryInstructorID: cyc.PrimaryInstructorID,
			Budget:              cyc.InstructorBudget,
			TotalMeetings:       cyc.TotalMeetings,
		},
		billing.Assignment{
			InstructorID:    mtg.InstructorID.String,
			IsSupport:       mtg.IsSupport,
			DurationMinutes: mtg.DurationMinutes,
			ActivityType:    mtg.ActivityType,
		},
		rates,
	), nil
}

// revenueFor computes a meeting's revenue from the cycle's pricing mode:
// per-child pricing multiplies the per-meeting price by the open registrations.
func (svc *Service) revenueFor(ctx context.Context, cyc cycle.Cycle) (float64, error) {
	price := cyc.PricePerMeeting.Float64
	if cyc.PricingMode != cycle.PricingInstitutionalChild {
		return price, nil
	}

	regs, err := svc.regs.QueryRegistrationsByCycle(ctx, cyc.ID)
	if err != nil {
		return 0, errors.Wrap(err, "querying registrations")
	}
	var open int
	for _, reg := range regs {
		if reg.Status.IsOpen() {
			open++
		}
	}
	return price * float64(open), nil
}

// PaymentPreview is the calculatePayment surface: resolve a payment without
// touching any meeting record.
type PaymentPreview struct {
	CycleID         string `json:"cycle_id" validate:"required"`
	InstructorID    string `json:"instructor_id" validate:"required"`
	IsSupport       bool   `json:"is_support"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	ActivityType    string `json:"activity_type" validate:"required,activitytype"`
}

func (svc *Service) PreviewPayment(ctx context.Context, pp PaymentPreview) (float64, error) {
	cyc, err := svc.cycles.GetCycle(ctx, pp.CycleID)
	if err != nil {
		return 0, err
	}
	ins, err := svc.instructors.GetInstructor(ctx, pp.InstructorID)
	if err != nil {
		return 0, err
	}
	return billing.Calculate(
		billing.Context{
			PrimaryInstructorID: cyc.PrimaryInstructorID,
			Budget:              cyc.InstructorBudget,
			TotalMeetings:       cyc.TotalMeetings,
		},
		billing.Assignment{
			InstructorID:    pp.InstructorID,
			IsSupport:       pp.IsSupport,
			DurationMinutes: pp.DurationMinutes,
			ActivityType:    meeting.ActivityType(pp.ActivityType),
		},
		ins.Rates(),
	), nil
}
