// Package testutil provides shared fixture helpers for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/instructor"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
	"github.com/trezcool/kelasi/core/staff"
)

// NewTestConfig returns a Config suitable for tests: no debug echo of raw
// errors and no external side effects.
func NewTestConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func CreateStaff(
	t *testing.T,
	repo staff.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
) staff.Staff {
	t.Helper()

	now := time.Now().UTC()
	stf := staff.Staff{
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := stf.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStaff() failed: %v", err)
		}
	}
	stf, err := repo.CreateStaff(context.Background(), stf)
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	return stf
}

// CreateInstructor persists an instructor with the given hourly rates;
// zero rates are left unset.
func CreateInstructor(t *testing.T, repo instructor.Repository, name string, online, frontal, private, support float64) instructor.Instructor {
	t.Helper()

	now := time.Now().UTC()
	ins := instructor.Instructor{
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if online > 0 {
		ins.RateOnline = null.Float64From(online)
	}
	if frontal > 0 {
		ins.RateFrontal = null.Float64From(frontal)
	}
	if private > 0 {
		ins.RatePrivate = null.Float64From(private)
	}
	if support > 0 {
		ins.RateSupport = null.Float64From(support)
	}
	ins, err := repo.CreateInstructor(context.Background(), ins)
	if err != nil {
		t.Fatalf("CreateInstructor() failed: %v", err)
	}
	return ins
}

// CreateCycle persists a cycle, defaulting status, activity type, pricing mode
// and the remaining counter when not provided.
func CreateCycle(t *testing.T, repo cycle.Repository, cyc cycle.Cycle) cycle.Cycle {
	t.Helper()

	now := time.Now().UTC()
	if cyc.Status == "" {
		cyc.Status = cycle.StatusActive
	}
	if cyc.ActivityType == "" {
		cyc.ActivityType = meeting.ActivityFrontal
	}
	if cyc.PricingMode == "" {
		cyc.PricingMode = cycle.PricingPrivate
	}
	if cyc.RemainingMeetings == 0 && cyc.CompletedMeetings == 0 {
		cyc.RemainingMeetings = cyc.TotalMeetings
	}
	cyc.CreatedAt, cyc.UpdatedAt = now, now
	cyc, err := repo.CreateCycle(context.Background(), cyc)
	if err != nil {
		t.Fatalf("CreateCycle() failed: %v", err)
	}
	return cyc
}

// CreateMeeting persists a meeting, defaulting status and activity type.
func CreateMeeting(t *testing.T, repo meeting.Repository, mtg meeting.Meeting) meeting.Meeting {
	t.Helper()

	now := time.Now().UTC()
	if mtg.Status == "" {
		mtg.Status = meeting.StatusScheduled
	}
	if mtg.ActivityType == "" {
		mtg.ActivityType = meeting.ActivityFrontal
	}
	mtg.CreatedAt, mtg.UpdatedAt = now, now
	mtg, err := repo.CreateMeeting(context.Background(), mtg)
	if err != nil {
		t.Fatalf("CreateMeeting() failed: %v", err)
	}
	return mtg
}

func CreateRegistration(t *testing.T, repo registration.Repository, reg registration.Registration) registration.Registration {
	t.Helper()

	now := time.Now().UTC()
	if reg.Status == "" {
		reg.Status = registration.StatusActive
	}
	reg.CreatedAt, reg.UpdatedAt = now, now
	reg, err := repo.CreateRegistration(context.Background(), reg)
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}
