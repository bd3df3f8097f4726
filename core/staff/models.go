package staff

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kelasi/core"
)

var (
	// errors
	ErrNotFound    = errors.New("staff member not found")
	ErrEmailExists = errors.New("a staff member with this email already exists")
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
)

var AllRoles = []string{RoleAdmin, RoleScheduler}

// Staff is an operator account for the admin/API surface.
type Staff struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Staff) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Staff) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s *Staff) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Staff) IsAdmin() bool { return s.HasRole(RoleAdmin) }

type Repository interface {
	CheckEmailUniqueness(ctx context.Context, email string, excluded []Staff, exec ...core.DBExecutor) error
	CreateStaff(ctx context.Context, stf Staff, exec ...core.DBExecutor) (Staff, error)
	GetStaff(ctx context.Context, id string, exec ...core.DBExecutor) (Staff, error)
	GetStaffByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Staff, error)
	QueryAllStaff(ctx context.Context, exec ...core.DBExecutor) ([]Staff, error)
	UpdateStaff(ctx context.Context, stf Staff, exec ...core.DBExecutor) (Staff, error)
}

// NewStaff contains information needed to create a new Staff member.
type NewStaff struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,staffroles"`
}
