package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/registration"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db.reg}
}

func (repo *registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	reg.ID = uuid.New().String()
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) GetRegistration(ctx context.Context, id string, exec ...core.DBExecutor) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) QueryRegistrationsByCycle(ctx context.Context, cycleID string, exec ...core.DBExecutor) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		if reg.CycleID == cycleID {
			regs = append(regs, *reg)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].StudentName < regs[j].StudentName })
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[reg.ID]; !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	repo.db.table[reg.ID] = &reg
	return reg, nil
}
