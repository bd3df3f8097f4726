package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
)

type cycleRepository struct {
	db *cycleTable
}

var _ cycle.Repository = (*cycleRepository)(nil) // interface compliance check

func NewCycleRepository(db *DB) *cycleRepository {
	return &cycleRepository{db: db.cycle}
}

func (repo *cycleRepository) CreateCycle(ctx context.Context, cyc cycle.Cycle, exec ...core.DBExecutor) (cycle.Cycle, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cyc.ID = uuid.New().String()
	repo.db.table[cyc.ID] = &cyc
	return cyc, nil
}

func (repo *cycleRepository) GetCycle(ctx context.Context, id string, exec ...core.DBExecutor) (cycle.Cycle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cyc, ok := repo.db.table[id]; ok {
		return *cyc, nil
	}
	return cycle.Cycle{}, cycle.ErrNotFound
}

func (repo *cycleRepository) FilterCycles(ctx context.Context, filter cycle.QueryFilter, exec ...core.DBExecutor) ([]cycle.Cycle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cycles := make([]cycle.Cycle, 0, len(repo.db.table))
	for _, cyc := range repo.db.table {
		if filter.Status != "" && cyc.Status != filter.Status {
			continue
		}
		if filter.InstructorID != "" && cyc.PrimaryInstructorID.String != filter.InstructorID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(cyc.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cycles = append(cycles, *cyc)
	}
	return cycles, nil
}

func (repo *cycleRepository) UpdateCycle(ctx context.Context, cyc cycle.Cycle, exec ...core.DBExecutor) (cycle.Cycle, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cyc.ID]; !ok {
		return cycle.Cycle{}, cycle.ErrNotFound
	}
	repo.db.table[cyc.ID] = &cyc
	return cyc, nil
}
