package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/meeting"
)

var (
	// errors
	ErrNotFound       = errors.New("cycle not found")
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidCount   = errors.New("meeting count must be positive")
)

// InconsistentCountersError reports a counter state reconciliation cannot repair.
type InconsistentCountersError struct {
	CycleID   string
	Total     int
	Completed int
	Remaining int
}

func (err *InconsistentCountersError) Error() string {
	return fmt.Sprintf(
		"cycle %s counters are inconsistent: total=%d completed=%d remaining=%d",
		err.CycleID, err.Total, err.Completed, err.Remaining)
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PricingMode string

const (
	PricingPrivate            PricingMode = "private"
	PricingInstitutionalChild PricingMode = "institutional_per_child"
	PricingInstitutionalFixed PricingMode = "institutional_fixed"
)

var AllPricingModes = []PricingMode{PricingPrivate, PricingInstitutionalChild, PricingInstitutionalFixed}

// Cycle is a recurring class offering: a fixed weekday/time slot and a target
// number of meetings. The counter invariant TotalMeetings = CompletedMeetings +
// RemainingMeetings holds after every reconciliation.
type Cycle struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Weekday         time.Weekday         `json:"weekday"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	DurationMinutes int                  `json:"duration_minutes"`
	StartDate       time.Time            `json:"start_date"`
	EndDate         time.Time            `json:"end_date"`
	ActivityType    meeting.ActivityType `json:"activity_type"`
	PricingMode     PricingMode          `json:"pricing_mode"`
	Status          Status               `json:"status"`

	TotalMeetings     int `json:"total_meetings"`
	CompletedMeetings int `json:"completed_meetings"`
	RemainingMeetings int `json:"remaining_meetings"`

	PrimaryInstructorID null.String  `json:"primary_instructor_id"`
	InstructorBudget    null.Float64 `json:"instructor_budget"` // fixed envelope, split across TotalMeetings

	PricePerMeeting null.Float64 `json:"price_per_meeting"` // revenue per meeting when priced per occurrence

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CountersConsistent reports whether the counter invariant holds.
func (c *Cycle) CountersConsistent() bool {
	return c.TotalMeetings == c.CompletedMeetings+c.RemainingMeetings &&
		c.CompletedMeetings >= 0 && c.RemainingMeetings >= 0
}

type QueryFilter struct {
	Status       Status
	InstructorID string
	Search       string
}

type Repository interface {
	CreateCycle(ctx context.Context, cyc Cycle, exec ...core.DBExecutor) (Cycle, error)
	GetCycle(ctx context.Context, id string, exec ...core.DBExecutor) (Cycle, error)
	// FilterCycles applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on Cycle.Name.
	FilterCycles(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Cycle, error)
	UpdateCycle(ctx context.Context, cyc Cycle, exec ...core.DBExecutor) (Cycle, error)
}

// NewCycle contains information needed to create a new Cycle.
type NewCycle struct {
	Name                string  `json:"name" validate:"required"`
	Weekday             int     `json:"weekday" validate:"min=0,max=6"`
	StartTime           string  `json:"start_time" validate:"required,timeofday"`
	EndTime             string  `json:"end_time" validate:"required,timeofday"`
	StartDate           string  `json:"start_date" validate:"required"`
	TotalMeetings       int     `json:"total_meetings" validate:"required,gt=0"`
	ActivityType        string  `json:"activity_type" validate:"required,activitytype"`
	PricingMode         string  `json:"pricing_mode" validate:"required,pricingmode"`
	PrimaryInstructorID string  `json:"primary_instructor_id"`
	InstructorBudget    float64 `json:"instructor_budget" validate:"omitempty,gt=0"`
	PricePerMeeting     float64 `json:"price_per_meeting" validate:"omitempty,gt=0"`
}

// DuplicateOptions tunes cycle duplication.
type DuplicateOptions struct {
	CopyRegistrations bool `json:"copy_registrations"`
	GenerateMeetings  bool `json:"generate_meetings"`
}
