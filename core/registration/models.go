package registration

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

var (
	// errors
	ErrNotFound = errors.New("registration not found")
)

type Status string

const (
	StatusRegistered Status = "registered"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsOpen reports whether the registration still counts toward the cycle:
// open registrations are flipped to completed when the cycle closes.
func (s Status) IsOpen() bool {
	return s == StatusRegistered || s == StatusActive
}

// Registration is a student's enrollment in a cycle.
type Registration struct {
	ID            string `json:"id"`
	CycleID       string `json:"cycle_id"`
	StudentName   string `json:"student_name"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Status        Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	CreateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Registration, error)
	GetRegistration(ctx context.Context, id string, exec ...core.DBExecutor) (Registration, error)
	QueryRegistrationsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]Registration, error)
	UpdateRegistration(ctx context.Context, reg Registration, exec ...core.DBExecutor) (Registration, error)
}
