package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/lead"
)

type dbLead struct {
	ID             string    `db:"id"`
	StudentName    string    `db:"student_name"`
	CustomerName   string    `db:"customer_name"`
	CustomerEmail  string    `db:"customer_email"`
	CourseName     string    `db:"course_name"`
	Source         string    `db:"source"`
	RegistrationID string    `db:"registration_id"`
	CycleID        string    `db:"cycle_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func (l dbLead) toCore() lead.Lead {
	return lead.Lead{
		ID:             l.ID,
		StudentName:    l.StudentName,
		CustomerName:   l.CustomerName,
		CustomerEmail:  l.CustomerEmail,
		CourseName:     l.CourseName,
		Source:         l.Source,
		RegistrationID: l.RegistrationID,
		CycleID:        l.CycleID,
		CreatedAt:      l.CreatedAt,
	}
}

type leadRepository struct {
	db *sqlx.DB
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(db *sqlx.DB) *leadRepository {
	return &leadRepository{db: db}
}

const insertLeadSQL = `
INSERT INTO leads (id, student_name, customer_name, customer_email, course_name, source, registration_id, cycle_id, created_at)
VALUES (:id, :student_name, :customer_name, :customer_email, :course_name, :source, :registration_id, :cycle_id, :created_at)`

func (repo leadRepository) CreateLead(ctx context.Context, l lead.Lead, exec ...core.DBExecutor) (lead.Lead, error) {
	l.ID = uuid.New().String()
	row := dbLead{
		ID:             l.ID,
		StudentName:    l.StudentName,
		CustomerName:   l.CustomerName,
		CustomerEmail:  l.CustomerEmail,
		CourseName:     l.CourseName,
		Source:         l.Source,
		RegistrationID: l.RegistrationID,
		CycleID:        l.CycleID,
		CreatedAt:      l.CreatedAt.UTC(),
	}
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertLeadSQL, row); err != nil {
		return lead.Lead{}, errors.Wrap(err, "inserting lead")
	}
	return l, nil
}

func (repo leadRepository) QueryLeadsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]lead.Lead, error) {
	var rows []dbLead
	err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows,
		"SELECT * FROM leads WHERE cycle_id = $1 ORDER BY created_at", cycleID)
	if err != nil {
		return nil, errors.Wrap(err, "querying leads")
	}

	leads := make([]lead.Lead, 0, len(rows))
	for _, l := range rows {
		leads = append(leads, l.toCore())
	}
	return leads, nil
}
