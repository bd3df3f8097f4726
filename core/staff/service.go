package staff

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
)

var nowFunc = time.Now // for tests

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excl ...Staff) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excl); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	if err := svc.checkUniqueness(ctx, ns.Email); err != nil {
		return Staff{}, err
	}

	now := nowFunc().UTC()
	stf := Staff{
		Name:      core.CleanString(ns.Name),
		Email:     core.CleanString(ns.Email, true /* lower */),
		IsActive:  true,
		Roles:     ns.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := stf.SetPassword(ns.Password); err != nil {
		return Staff{}, err
	}
	return svc.repo.CreateStaff(ctx, stf)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	return svc.repo.GetStaff(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Staff, error) {
	return svc.repo.GetStaffByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Staff, error) {
	return svc.repo.QueryAllStaff(ctx)
}

// Authenticate checks credentials and stamps the last login on success.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Staff, error) {
	stf, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Staff{}, err
	}
	if !stf.IsActive {
		return Staff{}, ErrNotFound
	}
	if err := stf.CheckPassword(pwd); err != nil {
		return Staff{}, ErrNotFound
	}

	stf.LastLogin = nowFunc().UTC()
	stf.UpdatedAt = stf.LastLogin
	return svc.repo.UpdateStaff(ctx, stf)
}

// SetPassword resets a staff member's password (admin CLI).
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (Staff, error) {
	stf, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Staff{}, err
	}
	if err := stf.SetPassword(pwd); err != nil {
		return Staff{}, err
	}
	stf.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateStaff(ctx, stf)
}
