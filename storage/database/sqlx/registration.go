package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/registration"
)

type dbRegistration struct {
	ID            string    `db:"id"`
	CycleID       string    `db:"cycle_id"`
	StudentName   string    `db:"student_name"`
	CustomerName  string    `db:"customer_name"`
	CustomerEmail string    `db:"customer_email"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r dbRegistration) toCore() registration.Registration {
	return registration.Registration{
		ID:            r.ID,
		CycleID:       r.CycleID,
		StudentName:   r.StudentName,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Status:        registration.Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toDBRegistration(r registration.Registration) dbRegistration {
	return dbRegistration{
		ID:            r.ID,
		CycleID:       r.CycleID,
		StudentName:   r.StudentName,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type registrationRepository struct {
	db *sqlx.DB
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *sqlx.DB) *registrationRepository {
	return &registrationRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to registration.ErrNotFound
func (repo registrationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return registration.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const insertRegistrationSQL = `
INSERT INTO registrations (id, cycle_id, student_name, customer_name, customer_email, status, created_at, updated_at)
VALUES (:id, :cycle_id, :student_name, :customer_name, :customer_email, :status, :created_at, :updated_at)`

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	reg.ID = uuid.New().String()
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertRegistrationSQL, toDBRegistration(reg)); err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo registrationRepository) GetRegistration(ctx context.Context, id string, exec ...core.DBExecutor) (registration.Registration, error) {
	var r dbRegistration
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, "SELECT * FROM registrations WHERE id = $1", id)
	if err != nil {
		return registration.Registration{}, repo.trapNoRowsErr(err, "getting registration")
	}
	return r.toCore(), nil
}

func (repo registrationRepository) QueryRegistrationsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]registration.Registration, error) {
	var rows []dbRegistration
	err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows,
		"SELECT * FROM registrations WHERE cycle_id = $1 ORDER BY created_at", cycleID)
	if err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}

	regs := make([]registration.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, r.toCore())
	}
	return regs, nil
}

const updateRegistrationSQL = `
UPDATE registrations SET
	cycle_id = :cycle_id, student_name = :student_name, customer_name = :customer_name,
	customer_email = :customer_email, status = :status, updated_at = :updated_at
WHERE id = :id`

func (repo registrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), updateRegistrationSQL, toDBRegistration(reg))
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "updating registration")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, nil
}
