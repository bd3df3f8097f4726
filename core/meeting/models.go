package meeting

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
)

var (
	// errors
	ErrNotFound = errors.New("meeting not found")
)

// Status is a meeting's lifecycle state. Scheduled is the only non-terminal state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusPostponed Status = "postponed"
)

func (s Status) IsTerminal() bool { return s != StatusScheduled }

// ActivityType drives instructor rate resolution.
type ActivityType string

const (
	ActivityOnline  ActivityType = "online"
	ActivityFrontal ActivityType = "frontal"
	ActivityPrivate ActivityType = "private_lesson"
)

var AllActivityTypes = []ActivityType{ActivityOnline, ActivityFrontal, ActivityPrivate}

// Action is a requested lifecycle transition.
type Action string

const (
	ActionComplete    Action = "complete"
	ActionCancel      Action = "cancel"
	ActionPostpone    Action = "postpone"
	ActionRecalculate Action = "recalculate"
)

// InvalidTransitionError is returned when an action is requested on a meeting
// whose status does not allow it. Terminal meetings reject everything but a
// recalculation.
type InvalidTransitionError struct {
	MeetingID string
	From      Status
	Action    Action
}

func (err *InvalidTransitionError) Error() string {
	return "cannot " + string(err.Action) + " a " + string(err.From) + " meeting"
}

// CanTransition reports whether `action` is allowed from status `from`.
// Recalculate is allowed from any state; everything else requires Scheduled.
func CanTransition(from Status, action Action) bool {
	if action == ActionRecalculate {
		return true
	}
	return from == StatusScheduled
}

type Meeting struct {
	ID              string       `json:"id"`
	CycleID         string       `json:"cycle_id"`
	Date            time.Time    `json:"date"`
	StartTime       string       `json:"start_time"`
	EndTime         string       `json:"end_time"`
	DurationMinutes int          `json:"duration_minutes"`
	Status          Status       `json:"status"`
	InstructorID    null.String  `json:"instructor_id"`
	IsSupport       bool         `json:"is_support"`
	ActivityType    ActivityType `json:"activity_type"`

	InstructorPayment float64 `json:"instructor_payment"`
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`

	ConferenceResourceID null.String `json:"conference_resource_id"`

	// postponement links; resolved by lookup, never embedded
	RescheduledToID   null.String `json:"rescheduled_to_id"`
	RescheduledFromID null.String `json:"rescheduled_from_id"`

	CompletedAt  null.Time   `json:"completed_at"`
	CompletedBy  null.String `json:"completed_by"`
	CancelReason null.String `json:"cancel_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ISODate returns the meeting date in the calendar wire format.
func (m *Meeting) ISODate() string {
	return m.Date.Format(core.ISODateFormat)
}

// IsFinalized reports whether payment figures were already persisted for this meeting.
func (m *Meeting) IsFinalized() bool {
	return m.InstructorPayment != 0 || m.Revenue != 0
}

// Guard returns an InvalidTransitionError when `action` is not allowed on this meeting.
func (m *Meeting) Guard(action Action) error {
	if !CanTransition(m.Status, action) {
		return &InvalidTransitionError{MeetingID: m.ID, From: m.Status, Action: action}
	}
	return nil
}

type QueryFilter struct {
	CycleID      string
	Status       Status
	InstructorID string
	DateFrom     time.Time
	DateTo       time.Time
}

type Repository interface {
	CreateMeeting(ctx context.Context, mtg Meeting, exec ...core.DBExecutor) (Meeting, error)
	GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
	// FilterMeetings applies AND operation on available QueryFilter fields, ordered by date.
	FilterMeetings(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Meeting, error)
	// LatestMeetingDate returns the zero time when the cycle has no meetings yet.
	LatestMeetingDate(ctx context.Context, cycleID string, exec ...core.DBExecutor) (time.Time, error)
	CountMeetings(ctx context.Context, cycleID string, statuses []Status, exec ...core.DBExecutor) (int, error)
	UpdateMeeting(ctx context.Context, mtg Meeting, exec ...core.DBExecutor) (Meeting, error)
	DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
}

// CompleteMeeting carries the inputs of a completion transition.
type CompleteMeeting struct {
	CompletedBy string  `json:"completed_by" validate:"required"`
	Revenue     float64 `json:"revenue" validate:"omitempty,gte=0"`
}

// CancelMeeting carries the inputs of a cancellation transition.
type CancelMeeting struct {
	Reason string `json:"reason" validate:"required"`
}

// PostponeMeeting carries the inputs of a postponement transition.
// Times default to the original meeting's when omitted.
type PostponeMeeting struct {
	NewDate      time.Time `json:"new_date" validate:"required"`
	NewStartTime string    `json:"new_start_time" validate:"omitempty,timeofday"`
	NewEndTime   string    `json:"new_end_time" validate:"omitempty,timeofday"`
}
