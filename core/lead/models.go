package lead

import (
	"context"
	"time"

	"github.com/trezcool/kelasi/core"
)

// SourceCycleCompleted marks leads emitted by the cycle completion cascade.
const SourceCycleCompleted = "cycle_completed"

// Lead is a sales follow-up handoff record, created when a customer's course
// ends. This core only creates leads; working them is someone else's job.
type Lead struct {
	ID             string    `json:"id"`
	StudentName    string    `json:"student_name"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	CourseName     string    `json:"course_name"`
	Source         string    `json:"source"`
	RegistrationID string    `json:"registration_id"`
	CycleID        string    `json:"cycle_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type Repository interface {
	CreateLead(ctx context.Context, l Lead, exec ...core.DBExecutor) (Lead, error)
	QueryLeadsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]Lead, error)
}
