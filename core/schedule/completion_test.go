package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/lead"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
	emailsvc "github.com/trezcool/kelasi/services/email"
)

func Test_Service_CompleteCycle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	freezeNow(t, "2025-02-10")
	emailsvc.ClearSentMessages()

	cyc := createCycle(t, env, cycle.Cycle{
		Name:    "Robotics Club",
		Weekday: time.Monday, StartDate: date(t, "2025-01-06"),
		StartTime: "16:00", EndTime: "17:30", DurationMinutes: 90,
		TotalMeetings:     4,
		CompletedMeetings: 3,
		RemainingMeetings: 1,
	})

	createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-01-06"),
		Status: meeting.StatusCompleted, Revenue: 100, InstructorPayment: 60, Profit: 40,
	})
	createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-01-13"),
		Status: meeting.StatusCompleted, Revenue: 100, InstructorPayment: 60, Profit: 40,
	})
	createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-01-20"), Status: meeting.StatusCancelled,
	})
	createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-01-27"),
		Status: meeting.StatusCompleted, Revenue: 100, InstructorPayment: 60, Profit: 40,
	})
	// future meetings that never happened
	orphan1 := createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-02-17"),
		ConferenceResourceID: null.StringFrom("room-42"),
	})
	orphan2 := createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-02-24"),
	})

	reg1 := createRegistration(t, env, registration.Registration{
		CycleID: cyc.ID, StudentName: "Bintu", CustomerName: "Mrs Kalala",
		CustomerEmail: "kalala@example.com", Status: registration.StatusActive,
	})
	reg2 := createRegistration(t, env, registration.Registration{
		CycleID: cyc.ID, StudentName: "Pat", CustomerName: "Mr Ilunga",
		CustomerEmail: "ilunga@example.com", Status: registration.StatusRegistered,
	})
	closed := createRegistration(t, env, registration.Registration{
		CycleID: cyc.ID, StudentName: "Sam", Status: registration.StatusCancelled,
	})

	res, err := env.svc.CompleteCycle(ctx, cyc.ID)
	if err != nil {
		t.Fatalf("CompleteCycle() failed: %v", err)
	}

	if res.RegistrationsCompleted != 2 {
		t.Errorf("RegistrationsCompleted = %d; want 2", res.RegistrationsCompleted)
	}
	if res.LeadsCreated != 2 {
		t.Errorf("LeadsCreated = %d; want 2", res.LeadsCreated)
	}
	if res.OrphansRemoved != 2 {
		t.Errorf("OrphansRemoved = %d; want 2", res.OrphansRemoved)
	}

	cyc, _ = env.cycles.GetCycle(ctx, cyc.ID)
	if cyc.Status != cycle.StatusCompleted {
		t.Errorf("cycle Status = %s; want %s", cyc.Status, cycle.StatusCompleted)
	}

	// open registrations flipped, closed ones untouched
	for _, id := range []string{reg1.ID, reg2.ID} {
		reg, _ := env.regs.GetRegistration(ctx, id)
		if reg.Status != registration.StatusCompleted {
			t.Errorf("registration %s Status = %s; want %s", reg.StudentName, reg.Status, registration.StatusCompleted)
		}
	}
	if reg, _ := env.regs.GetRegistration(ctx, closed.ID); reg.Status != registration.StatusCancelled {
		t.Errorf("closed registration Status = %s; want untouched %s", reg.Status, registration.StatusCancelled)
	}

	// one upsell lead per completed registration
	leads, err := env.leads.QueryLeadsByCycle(ctx, cyc.ID)
	if err != nil {
		t.Fatalf("QueryLeadsByCycle() failed: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("have %d leads; want 2", len(leads))
	}
	for _, l := range leads {
		if l.Source != lead.SourceCycleCompleted {
			t.Errorf("lead Source = %s; want %s", l.Source, lead.SourceCycleCompleted)
		}
		if l.CourseName != cyc.Name {
			t.Errorf("lead CourseName = %s; want %s", l.CourseName, cyc.Name)
		}
	}

	// orphaned future meetings are gone, conferencing cleaned up first
	for _, id := range []string{orphan1.ID, orphan2.ID} {
		if _, err := env.meetings.GetMeeting(ctx, id); errors.Cause(err) != meeting.ErrNotFound {
			t.Errorf("orphan %s still exists", id)
		}
	}
	if deleted := env.conference.DeletedResources(); len(deleted) != 1 || deleted[0] != "room-42" {
		t.Errorf("conference resources deleted = %v; want [room-42]", deleted)
	}

	// summary reflects the final meeting set
	if res.Summary.MeetingsCompleted != 3 || res.Summary.MeetingsCancelled != 1 {
		t.Errorf("Summary = %+v; want 3 completed, 1 cancelled", res.Summary)
	}
	if res.Summary.Revenue != 300 || res.Summary.Profit != 120 {
		t.Errorf("Summary figures = (%v, %v); want (300, 120)", res.Summary.Revenue, res.Summary.Profit)
	}

	// the ops inbox gets the summary with the meetings CSV attached
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d emails; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0] != env.conf.OpsEmail() {
		t.Errorf("email To = %v; want %v", msg.To[0], env.conf.OpsEmail())
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].Filename != "meetings.csv" {
		t.Errorf("email attachments = %+v; want meetings.csv", msg.Attachments)
	}
}

func Test_Service_CompleteCycle_alreadyCompleted(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	cyc := createCycle(t, env, cycle.Cycle{
		Name:    "Done",
		Weekday: time.Monday, StartDate: date(t, "2025-01-06"),
		StartTime: "16:00", EndTime: "17:00", DurationMinutes: 60,
		Status:            cycle.StatusCompleted,
		TotalMeetings:     2,
		CompletedMeetings: 2,
	})

	_, err := env.svc.CompleteCycle(ctx, cyc.ID)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("CompleteCycle() error = %v; want *core.ValidationError", err)
	}
}

func Test_Service_CompleteCycle_conferenceFailureDoesNotAbort(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	freezeNow(t, "2025-02-10")

	env.conference.Err = errors.New("provider down")

	cyc := createCycle(t, env, cycle.Cycle{
		Name:    "Robotics Club",
		Weekday: time.Monday, StartDate: date(t, "2025-01-06"),
		StartTime: "16:00", EndTime: "17:00", DurationMinutes: 60,
		TotalMeetings: 2, CompletedMeetings: 2,
	})
	orphan := createMeeting(t, env, meeting.Meeting{
		CycleID: cyc.ID, Date: date(t, "2025-02-17"),
		ConferenceResourceID: null.StringFrom("room-13"),
	})

	res, err := env.svc.CompleteCycle(ctx, cyc.ID)
	if err != nil {
		t.Fatalf("CompleteCycle() failed: %v", err)
	}
	if res.OrphansRemoved != 1 {
		t.Errorf("OrphansRemoved = %d; want 1 despite cleanup failure", res.OrphansRemoved)
	}
	if _, err := env.meetings.GetMeeting(ctx, orphan.ID); errors.Cause(err) != meeting.ErrNotFound {
		t.Error("orphan still exists after cleanup failure")
	}

	cyc, _ = env.cycles.GetCycle(ctx, cyc.ID)
	if cyc.Status != cycle.StatusCompleted {
		t.Errorf("cycle Status = %s; want %s", cyc.Status, cycle.StatusCompleted)
	}
}
