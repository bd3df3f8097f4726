// Package billing computes an instructor's pay for a single meeting.
//
// Resolution order, first match wins:
//  1. envelope: a fixed budget on the cycle, split evenly across its meetings,
//     for the cycle's primary instructor only;
//  2. support: the instructor's support hourly rate, for support assignments;
//  3. activity rate: the instructor's hourly rate for the meeting's activity
//     type, falling back to the frontal rate when unset.
//
// Missing configuration yields a payment of 0, never an error: zero-pay
// meetings are surfaced for administrative review instead of failing the
// operation that needed the figure.
package billing

import (
	"math"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/meeting"
)

// Rates is an instructor's hourly rate table, keyed by activity type,
// plus an optional support rate.
type Rates struct {
	Online  null.Float64
	Frontal null.Float64
	Private null.Float64
	Support null.Float64
}

// ForActivity resolves the hourly rate for an activity type.
// Online and private lessons fall back to the frontal rate when unset.
func (r Rates) ForActivity(at meeting.ActivityType) float64 {
	switch at {
	case meeting.ActivityOnline:
		if r.Online.Valid {
			return r.Online.Float64
		}
	case meeting.ActivityPrivate:
		if r.Private.Valid {
			return r.Private.Float64
		}
	case meeting.ActivityFrontal:
	}
	return r.Frontal.Float64
}

// Context is the owning cycle's budget/role context.
type Context struct {
	PrimaryInstructorID null.String
	Budget              null.Float64 // fixed envelope for the primary instructor
	TotalMeetings       int
}

// Assignment describes the meeting side of the calculation.
type Assignment struct {
	InstructorID    string
	IsSupport       bool
	DurationMinutes int
	ActivityType    meeting.ActivityType
}

// Calculate resolves the payment for one meeting, rounded to the nearest
// whole currency unit.
func Calculate(ctx Context, asg Assignment, rates Rates) float64 {
	// envelope mode: flat per-meeting amount, duration ignored
	if ctx.Budget.Valid && ctx.TotalMeetings > 0 &&
		ctx.PrimaryInstructorID.Valid && ctx.PrimaryInstructorID.String == asg.InstructorID {
		return math.Round(ctx.Budget.Float64 / float64(ctx.TotalMeetings))
	}

	hours := float64(asg.DurationMinutes) / 60

	// support mode
	if asg.IsSupport {
		return math.Round(rates.Support.Float64 * hours)
	}

	// default/activity-rate mode
	return math.Round(rates.ForActivity(asg.ActivityType) * hours)
}
