package instructor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/billing"
)

var (
	// errors
	ErrNotFound = errors.New("instructor not found")
)

// Instructor is a teacher with an hourly rate table. The rate table is a
// read-only input to the payment calculator; rate management is administrative.
type Instructor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`

	RateOnline  null.Float64 `json:"rate_online"`
	RateFrontal null.Float64 `json:"rate_frontal"`
	RatePrivate null.Float64 `json:"rate_private"`
	RateSupport null.Float64 `json:"rate_support"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rates adapts the instructor's rate table for the payment calculator.
func (i *Instructor) Rates() billing.Rates {
	return billing.Rates{
		Online:  i.RateOnline,
		Frontal: i.RateFrontal,
		Private: i.RatePrivate,
		Support: i.RateSupport,
	}
}

type Repository interface {
	CreateInstructor(ctx context.Context, ins Instructor, exec ...core.DBExecutor) (Instructor, error)
	GetInstructor(ctx context.Context, id string, exec ...core.DBExecutor) (Instructor, error)
	QueryAllInstructors(ctx context.Context, exec ...core.DBExecutor) ([]Instructor, error)
	UpdateInstructor(ctx context.Context, ins Instructor, exec ...core.DBExecutor) (Instructor, error)
}
