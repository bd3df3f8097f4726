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
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/meeting"
)

type dbCycle struct {
	ID                  string       `db:"id"`
	Name                string       `db:"name"`
	Weekday             int          `db:"weekday"`
	StartTime           string       `db:"start_time"`
	EndTime             string       `db:"end_time"`
	DurationMinutes     int          `db:"duration_minutes"`
	StartDate           time.Time    `db:"start_date"`
	EndDate             time.Time    `db:"end_date"`
	ActivityType        string       `db:"activity_type"`
	PricingMode         string       `db:"pricing_mode"`
	Status              string       `db:"status"`
	TotalMeetings       int          `db:"total_meetings"`
	CompletedMeetings   int          `db:"completed_meetings"`
	RemainingMeetings   int          `db:"remaining_meetings"`
	PrimaryInstructorID null.String  `db:"primary_instructor_id"`
	InstructorBudget    null.Float64 `db:"instructor_budget"`
	PricePerMeeting     null.Float64 `db:"price_per_meeting"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

func (c dbCycle) toCore() cycle.Cycle {
	return cycle.Cycle{
		ID:                  c.ID,
		Name:                c.Name,
		Weekday:             time.Weekday(c.Weekday),
		StartTime:           c.StartTime,
		EndTime:             c.EndTime,
		DurationMinutes:     c.DurationMinutes,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		ActivityType:        meeting.ActivityType(c.ActivityType),
		PricingMode:         cycle.PricingMode(c.PricingMode),
		Status:              cycle.Status(c.Status),
		TotalMeetings:       c.TotalMeetings,
		CompletedMeetings:   c.CompletedMeetings,
		RemainingMeetings:   c.RemainingMeetings,
		PrimaryInstructorID: c.PrimaryInstructorID,
		InstructorBudget:    c.InstructorBudget,
		PricePerMeeting:     c.PricePerMeeting,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func toDBCycle(c cycle.Cycle) dbCycle {
	return dbCycle{
		ID:                  c.ID,
		Name:                c.Name,
		Weekday:             int(c.Weekday),
		StartTime:           c.StartTime,
		EndTime:             c.EndTime,
		DurationMinutes:     c.DurationMinutes,
		StartDate:           c.StartDate.UTC(),
		EndDate:             c.EndDate.UTC(),
		ActivityType:        string(c.ActivityType),
		PricingMode:         string(c.PricingMode),
		Status:              string(c.Status),
		TotalMeetings:       c.TotalMeetings,
		CompletedMeetings:   c.CompletedMeetings,
		RemainingMeetings:   c.RemainingMeetings,
		PrimaryInstructorID: c.PrimaryInstructorID,
		InstructorBudget:    c.InstructorBudget,
		PricePerMeeting:     c.PricePerMeeting,
		CreatedAt:           c.CreatedAt.UTC(),
		UpdatedAt:           c.UpdatedAt.UTC(),
	}
}

type cycleRepository struct {
	db *sqlx.DB
}

var _ cycle.Repository = (*cycleRepository)(nil) // interface compliance check

func NewCycleRepository(db *sqlx.DB) *cycleRepository {
	return &cycleRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to cycle.ErrNotFound
func (repo cycleRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return cycle.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const insertCycleSQL = `
INSERT INTO cycles (
	id, name, weekday, start_time, end_time, duration_minutes, start_date, end_date,
	activity_type, pricing_mode, status, total_meetings, completed_meetings, remaining_meetings,
	primary_instructor_id, instructor_budget, price_per_meeting, created_at, updated_at
) VALUES (
	:id, :name, :weekday, :start_time, :end_time, :duration_minutes, :start_date, :end_date,
	:activity_type, :pricing_mode, :status, :total_meetings, :completed_meetings, :remaining_meetings,
	:primary_instructor_id, :instructor_budget, :price_per_meeting, :created_at, :updated_at
)`

func (repo cycleRepository) CreateCycle(ctx context.Context, cyc cycle.Cycle, exec ...core.DBExecutor) (cycle.Cycle, error) {
	cyc.ID = uuid.New().String()
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertCycleSQL, toDBCycle(cyc)); err != nil {
		return cycle.Cycle{}, errors.Wrap(err, "inserting cycle")
	}
	return cyc, nil
}

func (repo cycleRepository) GetCycle(ctx context.Context, id string, exec ...core.DBExecutor) (cycle.Cycle, error) {
	var c dbCycle
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &c, "SELECT * FROM cycles WHERE id = $1", id)
	if err != nil {
		return cycle.Cycle{}, repo.trapNoRowsErr(err, "getting cycle")
	}
	return c.toCore(), nil
}

func (repo cycleRepository) FilterCycles(ctx context.Context, filter cycle.QueryFilter, exec ...core.DBExecutor) ([]cycle.Cycle, error) {
	query := "SELECT * FROM cycles WHERE 1=1"
	var args []interface{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += " AND status = $" + itoa(len(args))
	}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		query += " AND primary_instructor_id = $" + itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += " AND name ILIKE $" + itoa(len(args))
	}
	query += " ORDER BY start_date"

	var rows []dbCycle
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering cycles")
	}

	cycles := make([]cycle.Cycle, 0, len(rows))
	for _, c := range rows {
		cycles = append(cycles, c.toCore())
	}
	return cycles, nil
}

const updateCycleSQL = `
UPDATE cycles SET
	name = :name, weekday = :weekday, start_time = :start_time, end_time = :end_time,
	duration_minutes = :duration_minutes, start_date = :start_date, end_date = :end_date,
	activity_type = :activity_type, pricing_mode = :pricing_mode, status = :status,
	total_meetings = :total_meetings, completed_meetings = :completed_meetings,
	remaining_meetings = :remaining_meetings, primary_instructor_id = :primary_instructor_id,
	instructor_budget = :instructor_budget, price_per_meeting = :price_per_meeting,
	updated_at = :updated_at
WHERE id = :id`

func (repo cycleRepository) UpdateCycle(ctx context.Context, cyc cycle.Cycle, exec ...core.DBExecutor) (cycle.Cycle, error) {
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), updateCycleSQL, toDBCycle(cyc))
	if err != nil {
		return cycle.Cycle{}, errors.Wrap(err, "updating cycle")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cycle.Cycle{}, cycle.ErrNotFound
	}
	return cyc, nil
}
