package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/lead"
)

type leadRepository struct {
	db *leadTable
}

var _ lead.Repository = (*leadRepository)(nil) // interface compliance check

func NewLeadRepository(db *DB) *leadRepository {
	return &leadRepository{db: db.lead}
}

func (repo *leadRepository) CreateLead(ctx context.Context, l lead.Lead, exec ...core.DBExecutor) (lead.Lead, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = uuid.New().String()
	repo.db.table[l.ID] = &l
	return l, nil
}

func (repo *leadRepository) QueryLeadsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]lead.Lead, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	leads := make([]lead.Lead, 0, len(repo.db.table))
	for _, l := range repo.db.table {
		if l.CycleID == cycleID {
			leads = append(leads, *l)
		}
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].StudentName < leads[j].StudentName })
	return leads, nil
}
