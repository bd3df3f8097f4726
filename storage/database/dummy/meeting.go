package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/meeting"
)

type meetingRepository struct {
	db *meetingTable
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(db *DB) *meetingRepository {
	return &meetingRepository{db: db.meeting}
}

func (repo *meetingRepository) CreateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mtg.ID = uuid.New().String()
	repo.db.table[mtg.ID] = &mtg
	return mtg, nil
}

func (repo *meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mtg, ok := repo.db.table[id]; ok {
		return *mtg, nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

func (repo *meetingRepository) FilterMeetings(ctx context.Context, filter meeting.QueryFilter, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mtgs := make([]meeting.Meeting, 0, len(repo.db.table))
	for _, mtg := range repo.db.table {
		if filter.CycleID != "" && mtg.CycleID != filter.CycleID {
			continue
		}
		if filter.Status != "" && mtg.Status != filter.Status {
			continue
		}
		if filter.InstructorID != "" && mtg.InstructorID.String != filter.InstructorID {
			continue
		}
		if !filter.DateFrom.IsZero() && mtg.Date.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && mtg.Date.After(filter.DateTo) {
			continue
		}
		mtgs = append(mtgs, *mtg)
	}
	sort.Slice(mtgs, func(i, j int) bool { return mtgs[i].Date.Before(mtgs[j].Date) })
	return mtgs, nil
}

func (repo *meetingRepository) LatestMeetingDate(ctx context.Context, cycleID string, exec ...core.DBExecutor) (time.Time, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var latest time.Time
	for _, mtg := range repo.db.table {
		if mtg.CycleID == cycleID && mtg.Date.After(latest) {
			latest = mtg.Date
		}
	}
	return latest, nil
}

func (repo *meetingRepository) CountMeetings(ctx context.Context, cycleID string, statuses []meeting.Status, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var cnt int
	for _, mtg := range repo.db.table {
		if mtg.CycleID != cycleID {
			continue
		}
		if len(statuses) == 0 {
			cnt++
			continue
		}
		for _, st := range statuses {
			if mtg.Status == st {
				cnt++
				break
			}
		}
	}
	return cnt, nil
}

func (repo *meetingRepository) UpdateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[mtg.ID]; !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	repo.db.table[mtg.ID] = &mtg
	return mtg, nil
}

func (repo *meetingRepository) DeleteMeetingsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
