package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/instructor"
)

type dbInstructor struct {
	ID          string       `db:"id"`
	Name        string       `db:"name"`
	Email       string       `db:"email"`
	IsActive    bool         `db:"is_active"`
	RateOnline  null.Float64 `db:"rate_online"`
	RateFrontal null.Float64 `db:"rate_frontal"`
	RatePrivate null.Float64 `db:"rate_private"`
	RateSupport null.Float64 `db:"rate_support"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (i dbInstructor) toCore() instructor.Instructor {
	return instructor.Instructor{
		ID:          i.ID,
		Name:        i.Name,
		Email:       i.Email,
		IsActive:    i.IsActive,
		RateOnline:  i.RateOnline,
		RateFrontal: i.RateFrontal,
		RatePrivate: i.RatePrivate,
		RateSupport: i.RateSupport,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toDBInstructor(i instructor.Instructor) dbInstructor {
	return dbInstructor{
		ID:          i.ID,
		Name:        i.Name,
		Email:       i.Email,
		IsActive:    i.IsActive,
		RateOnline:  i.RateOnline,
		RateFrontal: i.RateFrontal,
		RatePrivate: i.RatePrivate,
		RateSupport: i.RateSupport,
		CreatedAt:   i.CreatedAt.UTC(),
		UpdatedAt:   i.UpdatedAt.UTC(),
	}
}

type instructorRepository struct {
	db *sqlx.DB
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

func NewInstructorRepository(db *sqlx.DB) *instructorRepository {
	return &instructorRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to instructor.ErrNotFound
func (repo instructorRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return instructor.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const insertInstructorSQL = `
INSERT INTO instructors (id, name, email, is_active, rate_online, rate_frontal, rate_private, rate_support, created_at, updated_at)
VALUES (:id, :name, :email, :is_active, :rate_online, :rate_frontal, :rate_private, :rate_support, :created_at, :updated_at)`

func (repo instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	ins.ID = uuid.New().String()
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertInstructorSQL, toDBInstructor(ins)); err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "inserting instructor")
	}
	return ins, nil
}

func (repo instructorRepository) GetInstructor(ctx context.Context, id string, exec ...core.DBExecutor) (instructor.Instructor, error) {
	var i dbInstructor
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &i, "SELECT * FROM instructors WHERE id = $1", id)
	if err != nil {
		return instructor.Instructor{}, repo.trapNoRowsErr(err, "getting instructor")
	}
	return i.toCore(), nil
}

func (repo instructorRepository) QueryAllInstructors(ctx context.Context, exec ...core.DBExecutor) ([]instructor.Instructor, error) {
	var rows []dbInstructor
	err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, "SELECT * FROM instructors ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "querying instructors")
	}

	instructors := make([]instructor.Instructor, 0, len(rows))
	for _, i := range rows {
		instructors = append(instructors, i.toCore())
	}
	return instructors, nil
}

const updateInstructorSQL = `
UPDATE instructors SET
	name = :name, email = :email, is_active = :is_active, rate_online = :rate_online,
	rate_frontal = :rate_frontal, rate_private = :rate_private, rate_support = :rate_support,
	updated_at = :updated_at
WHERE id = :id`

func (repo instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), updateInstructorSQL, toDBInstructor(ins))
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "updating instructor")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	return ins, nil
}
