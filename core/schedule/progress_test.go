package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
)

func Test_Service_SyncProgress(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// stored counters drifted from the actual meeting records
	cyc := createCycle(t, env, cycle.Cycle{
		Name:    "Maths",
		Weekday: time.Monday, StartDate: date(t, "2025-01-06"),
		StartTime: "16:00", EndTime: "17:00", DurationMinutes: 60,
		TotalMeetings:     4,
		CompletedMeetings: 0,
		RemainingMeetings: 4,
	})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-06"), Status: meeting.StatusCompleted})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-13"), Status: meeting.StatusCompleted})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-20"), Status: meeting.StatusCancelled})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-27")})

	prog, err := env.svc.SyncProgress(ctx, cyc.ID)
	if err != nil {
		t.Fatalf("SyncProgress() failed: %v", err)
	}
	if prog.TotalMeetings != 4 || prog.CompletedMeetings != 2 || prog.RemainingMeetings != 2 {
		t.Errorf("SyncProgress() = %+v; want (4, 2, 2)", prog)
	}

	cyc, _ = env.cycles.GetCycle(ctx, cyc.ID)
	if !cyc.CountersConsistent() {
		t.Errorf("counters inconsistent after sync: (%d, %d, %d)",
			cyc.TotalMeetings, cyc.CompletedMeetings, cyc.RemainingMeetings)
	}
}

func Test_Service_SyncProgress_overGenerated(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// more meetings exist than the stored plan (e.g. a postponement successor)
	cyc := createCycle(t, env, cycle.Cycle{
		Name:    "Maths",
		Weekday: time.Monday, StartDate: date(t, "2025-01-06"),
		StartTime: "16:00", EndTime: "17:00", DurationMinutes: 60,
		TotalMeetings:     2,
		RemainingMeetings: 2,
	})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-06"), Status: meeting.StatusPostponed})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-13")})
	createMeeting(t, env, meeting.Meeting{CycleID: cyc.ID, Date: date(t, "2025-01-15")})

	prog, err := env.svc.SyncProgress(ctx, cyc.ID)
	if err != nil {
		t.Fatalf("SyncProgress() failed: %v", err)
	}
	// total grows to the actual row count
	if prog.TotalMeetings != 3 || prog.CompletedMeetings != 0 || prog.RemainingMeetings != 3 {
		t.Errorf("SyncProgress() = %+v; want (3, 0, 3)", prog)
	}
}

func Test_Service_Duplicate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	freezeNow(t, "2025-03-01")

	orig := createCycle(t, env, cycle.Cycle{
		Name:    "Robotics Club",
		Weekday: time.Tuesday,
		StartDate: date(t, "2025-01-07"), EndDate: date(t, "2025-02-25"),
		StartTime: "16:00", EndTime: "17:30", DurationMinutes: 90,
		Status:            cycle.StatusCompleted,
		TotalMeetings:     8,
		CompletedMeetings: 8,
		PricePerMeeting:   null.Float64From(50),
	})
	createRegistration(t, env, registration.Registration{
		CycleID: orig.ID, StudentName: "Bintu", CustomerName: "Mrs Kalala",
		CustomerEmail: "kalala@example.com", Status: registration.StatusActive,
	})
	createRegistration(t, env, registration.Registration{
		CycleID: orig.ID, StudentName: "Pat", CustomerName: "Mr Ilunga",
		CustomerEmail: "ilunga@example.com", Status: registration.StatusCancelled,
	})

	// 2025-03-01 is a Saturday; the new start anchors on the cycle's Tuesday
	dup, err := env.svc.Duplicate(ctx, orig.ID, date(t, "2025-03-01"), cycle.DuplicateOptions{
		CopyRegistrations: true,
		GenerateMeetings:  true,
	})
	if err != nil {
		t.Fatalf("Duplicate() failed: %v", err)
	}

	if dup.ID == orig.ID {
		t.Fatal("Duplicate() returned the original cycle")
	}
	if got := dup.StartDate.Format(core.ISODateFormat); got != "2025-03-04" {
		t.Errorf("StartDate = %s; want 2025-03-04", got)
	}
	if got := dup.EndDate.Format(core.ISODateFormat); got != "2025-04-22" {
		t.Errorf("EndDate = %s; want 2025-04-22 (7 weeks after the anchor)", got)
	}
	if dup.Status != cycle.StatusActive {
		t.Errorf("Status = %s; want %s", dup.Status, cycle.StatusActive)
	}
	if dup.TotalMeetings != 8 || dup.CompletedMeetings != 0 || dup.RemainingMeetings != 8 {
		t.Errorf("counters = (%d, %d, %d); want (8, 0, 8)",
			dup.TotalMeetings, dup.CompletedMeetings, dup.RemainingMeetings)
	}
	if dup.PricePerMeeting != orig.PricePerMeeting {
		t.Errorf("PricePerMeeting = %v; want carried over", dup.PricePerMeeting)
	}

	// only open registrations are copied
	regs, err := env.regs.QueryRegistrationsByCycle(ctx, dup.ID)
	if err != nil {
		t.Fatalf("QueryRegistrationsByCycle() failed: %v", err)
	}
	if len(regs) != 1 || regs[0].StudentName != "Bintu" {
		t.Errorf("copied registrations = %+v; want only the open one", regs)
	}

	// meetings generated on the new grid
	mtgs, _ := env.meetings.FilterMeetings(ctx, meeting.QueryFilter{CycleID: dup.ID})
	if len(mtgs) != 8 {
		t.Fatalf("generated %d meetings; want 8", len(mtgs))
	}
	if got := mtgs[0].ISODate(); got != "2025-03-04" {
		t.Errorf("first meeting = %s; want 2025-03-04", got)
	}

	// the original is untouched
	orig, _ = env.cycles.GetCycle(ctx, orig.ID)
	if orig.Status != cycle.StatusCompleted || orig.CompletedMeetings != 8 {
		t.Errorf("original mutated: %+v", orig)
	}
}

func Test_Service_Duplicate_bare(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	freezeNow(t, "2025-03-01")

	orig := createCycle(t, env, cycle.Cycle{
		Name:    "Chess",
		Weekday: time.Friday, StartDate: date(t, "2025-01-10"),
		StartTime: "16:00", EndTime: "17:00", DurationMinutes: 60,
		TotalMeetings: 4,
	})
	createRegistration(t, env, registration.Registration{
		CycleID: orig.ID, StudentName: "Bintu", Status: registration.StatusActive,
	})

	dup, err := env.svc.Duplicate(ctx, orig.ID, date(t, "2025-03-07"), cycle.DuplicateOptions{})
	if err != nil {
		t.Fatalf("Duplicate() failed: %v", err)
	}

	if regs, _ := env.regs.QueryRegistrationsByCycle(ctx, dup.ID); len(regs) != 0 {
		t.Errorf("copied %d registrations; want 0", len(regs))
	}
	if cnt, _ := env.meetings.CountMeetings(ctx, dup.ID, nil); cnt != 0 {
		t.Errorf("generated %d meetings; want 0", cnt)
	}
}
