package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/staff"
)

type dbStaff struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (s dbStaff) toCore() staff.Staff {
	return staff.Staff{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Roles:        s.Roles,
		PasswordHash: s.PasswordHash,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		LastLogin:    s.LastLogin.Time,
	}
}

func toDBStaff(s staff.Staff) dbStaff {
	return dbStaff{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Roles:        s.Roles,
		PasswordHash: s.PasswordHash,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt.UTC(),
		UpdatedAt:    s.UpdatedAt.UTC(),
		LastLogin:    sql.NullTime{Time: s.LastLogin.UTC(), Valid: !s.LastLogin.IsZero()},
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to staff.ErrNotFound
func (repo staffRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return staff.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo staffRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded []staff.Staff, exec ...core.DBExecutor) error {
	query := "SELECT EXISTS (SELECT 1 FROM staff WHERE email = ?"
	args := []interface{}{email}

	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, stf := range excluded {
			ids = append(ids, stf.ID)
		}
		var err error
		if query, args, err = sqlx.In(query+" AND id NOT IN (?)", email, ids); err != nil {
			return errors.Wrap(err, "checking staff uniqueness")
		}
	}
	query += ")"
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var exists bool
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &exists, query, args...); err != nil {
		return errors.Wrap(err, "checking staff uniqueness")
	}
	if exists {
		return staff.ErrEmailExists
	}
	return nil
}

const insertStaffSQL = `
INSERT INTO staff (id, name, email, roles, password_hash, is_active, created_at, updated_at, last_login)
VALUES (:id, :name, :email, :roles, :password_hash, :is_active, :created_at, :updated_at, :last_login)`

func (repo staffRepository) CreateStaff(ctx context.Context, stf staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	stf.ID = uuid.New().String()
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertStaffSQL, toDBStaff(stf)); err != nil {
		return staff.Staff{}, errors.Wrap(err, "inserting staff")
	}
	return stf, nil
}

func (repo staffRepository) GetStaff(ctx context.Context, id string, exec ...core.DBExecutor) (staff.Staff, error) {
	var s dbStaff
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &s, "SELECT * FROM staff WHERE id = $1", id)
	if err != nil {
		return staff.Staff{}, repo.trapNoRowsErr(err, "getting staff")
	}
	return s.toCore(), nil
}

func (repo staffRepository) GetStaffByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (staff.Staff, error) {
	var s dbStaff
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &s, "SELECT * FROM staff WHERE LOWER(email) = LOWER($1)", email)
	if err != nil {
		return staff.Staff{}, repo.trapNoRowsErr(err, "getting staff by email")
	}
	return s.toCore(), nil
}

func (repo staffRepository) QueryAllStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error) {
	var rows []dbStaff
	err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, "SELECT * FROM staff ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}

	members := make([]staff.Staff, 0, len(rows))
	for _, s := range rows {
		members = append(members, s.toCore())
	}
	return members, nil
}

const updateStaffSQL = `
UPDATE staff SET
	name = :name, email = :email, roles = :roles, password_hash = :password_hash,
	is_active = :is_active, updated_at = :updated_at, last_login = :last_login
WHERE id = :id`

func (repo staffRepository) UpdateStaff(ctx context.Context, stf staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), updateStaffSQL, toDBStaff(stf))
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "updating staff")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return stf, nil
}
