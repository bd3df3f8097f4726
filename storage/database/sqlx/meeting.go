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
	"github.com/trezcool/kelasi/core/meeting"
)

type dbMeeting struct {
	ID                   string      `db:"id"`
	CycleID              string      `db:"cycle_id"`
	Date                 time.Time   `db:"date"`
	StartTime            string      `db:"start_time"`
	EndTime              string      `db:"end_time"`
	DurationMinutes      int         `db:"duration_minutes"`
	Status               string      `db:"status"`
	InstructorID         null.String `db:"instructor_id"`
	IsSupport            bool        `db:"is_support"`
	ActivityType         string      `db:"activity_type"`
	InstructorPayment    float64     `db:"instructor_payment"`
	Revenue              float64     `db:"revenue"`
	Profit               float64     `db:"profit"`
	ConferenceResourceID null.String `db:"conference_resource_id"`
	RescheduledToID      null.String `db:"rescheduled_to_id"`
	RescheduledFromID    null.String `db:"rescheduled_from_id"`
	CompletedAt          null.Time   `db:"completed_at"`
	CompletedBy          null.String `db:"completed_by"`
	CancelReason         null.String `db:"cancel_reason"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}

func (m dbMeeting) toCore() meeting.Meeting {
	return meeting.Meeting{
		ID:                   m.ID,
		CycleID:              m.CycleID,
		Date:                 m.Date,
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		DurationMinutes:      m.DurationMinutes,
		Status:               meeting.Status(m.Status),
		InstructorID:         m.InstructorID,
		IsSupport:            m.IsSupport,
		ActivityType:         meeting.ActivityType(m.ActivityType),
		InstructorPayment:    m.InstructorPayment,
		Revenue:              m.Revenue,
		Profit:               m.Profit,
		ConferenceResourceID: m.ConferenceResourceID,
		RescheduledToID:      m.RescheduledToID,
		RescheduledFromID:    m.RescheduledFromID,
		CompletedAt:          m.CompletedAt,
		CompletedBy:          m.CompletedBy,
		CancelReason:         m.CancelReason,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toDBMeeting(m meeting.Meeting) dbMeeting {
	return dbMeeting{
		ID:                   m.ID,
		CycleID:              m.CycleID,
		Date:                 m.Date.UTC(),
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		DurationMinutes:      m.DurationMinutes,
		Status:               string(m.Status),
		InstructorID:         m.InstructorID,
		IsSupport:            m.IsSupport,
		ActivityType:         string(m.ActivityType),
		InstructorPayment:    m.InstructorPayment,
		Revenue:              m.Revenue,
		Profit:               m.Profit,
		ConferenceResourceID: m.ConferenceResourceID,
		RescheduledToID:      m.RescheduledToID,
		RescheduledFromID:    m.RescheduledFromID,
		CompletedAt:          m.CompletedAt,
		CompletedBy:          m.CompletedBy,
		CancelReason:         m.CancelReason,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

type meetingRepository struct {
	db *sqlx.DB
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(db *sqlx.DB) *meetingRepository {
	return &meetingRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to meeting.ErrNotFound
func (repo meetingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return meeting.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const insertMeetingSQL = `
INSERT INTO meetings (
	id, cycle_id, date, start_time, end_time, duration_minutes, status, instructor_id,
	is_support, activity_type, instructor_payment, revenue, profit, conference_resource_id,
	rescheduled_to_id, rescheduled_from_id, completed_at, completed_by, cancel_reason,
	created_at, updated_at
) VALUES (
	:id, :cycle_id, :date, :start_time, :end_time, :duration_minutes, :status, :instructor_id,
	:is_support, :activity_type, :instructor_payment, :revenue, :profit, :conference_resource_id,
	:rescheduled_to_id, :rescheduled_from_id, :completed_at, :completed_by, :cancel_reason,
	:created_at, :updated_at
)`

func (repo meetingRepository) CreateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	mtg.ID = uuid.New().String()
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), insertMeetingSQL, toDBMeeting(mtg)); err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "inserting meeting")
	}
	return mtg, nil
}

func (repo meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	var m dbMeeting
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &m, "SELECT * FROM meetings WHERE id = $1", id)
	if err != nil {
		return meeting.Meeting{}, repo.trapNoRowsErr(err, "getting meeting")
	}
	return m.toCore(), nil
}

func (repo meetingRepository) FilterMeetings(ctx context.Context, filter meeting.QueryFilter, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	query := "SELECT * FROM meetings WHERE 1=1"
	var args []interface{}

	if filter.CycleID != "" {
		args = append(args, filter.CycleID)
		query += " AND cycle_id = $" + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += " AND status = $" + itoa(len(args))
	}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		query += " AND instructor_id = $" + itoa(len(args))
	}
	if !filter.DateFrom.IsZero() {
		args = append(args, filter.DateFrom.UTC())
		query += " AND date >= $" + itoa(len(args))
	}
	if !filter.DateTo.IsZero() {
		args = append(args, filter.DateTo.UTC())
		query += " AND date <= $" + itoa(len(args))
	}
	query += " ORDER BY date"

	var rows []dbMeeting
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering meetings")
	}

	mtgs := make([]meeting.Meeting, 0, len(rows))
	for _, m := range rows {
		mtgs = append(mtgs, m.toCore())
	}
	return mtgs, nil
}

func (repo meetingRepository) LatestMeetingDate(ctx context.Context, cycleID string, exec ...core.DBExecutor) (time.Time, error) {
	var latest sql.NullTime
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &latest,
		"SELECT MAX(date) FROM meetings WHERE cycle_id = $1", cycleID)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "getting latest meeting date")
	}
	return latest.Time, nil
}

func (repo meetingRepository) CountMeetings(ctx context.Context, cycleID string, statuses []meeting.Status, exec ...core.DBExecutor) (int, error) {
	query := "SELECT COUNT(*) FROM meetings WHERE cycle_id = ?"
	args := []interface{}{cycleID}

	if len(statuses) > 0 {
		sts := make([]string, 0, len(statuses))
		for _, st := range statuses {
			sts = append(sts, string(st))
		}
		var err error
		if query, args, err = sqlx.In(query+" AND status IN (?)", cycleID, sts); err != nil {
			return 0, errors.Wrap(err, "counting meetings")
		}
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	var cnt int
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &cnt, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting meetings")
	}
	return cnt, nil
}

const updateMeetingSQL = `
UPDATE meetings SET
	cycle_id = :cycle_id, date = :date, start_time = :start_time, end_time = :end_time,
	duration_minutes = :duration_minutes, status = :status, instructor_id = :instructor_id,
	is_support = :is_support, activity_type = :activity_type,
	instructor_payment = :instructor_payment, revenue = :revenue, profit = :profit,
	conference_resource_id = :conference_resource_id, rescheduled_to_id = :rescheduled_to_id,
	rescheduled_from_id = :rescheduled_from_id, completed_at = :completed_at,
	completed_by = :completed_by, cancel_reason = :cancel_reason, updated_at = :updated_at
WHERE id = :id`

func (repo meetingRepository) UpdateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), updateMeetingSQL, toDBMeeting(mtg))
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "updating meeting")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	return mtg, nil
}

func (repo meetingRepository) DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("DELETE FROM meetings WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting meetings")
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	res, err := getExec(repo.db, exec).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting meetings")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting meetings")
	}
	return int(n), nil
}
