package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/staff"
)

type staffRepository struct {
	db *staffTable
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db.staffMember}
}

func (repo *staffRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded []staff.Staff, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, stf := range repo.db.table {
		if stf.Email != email {
			continue
		}
		var excl bool
		for _, ex := range excluded {
			if ex.ID == stf.ID {
				excl = true
				break
			}
		}
		if !excl {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stf.ID = uuid.New().String()
	repo.db.table[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) GetStaff(ctx context.Context, id string, exec ...core.DBExecutor) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stf, ok := repo.db.table[id]; ok {
		return *stf, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, stf := range repo.db.table {
		if stf.Email == email {
			return *stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) QueryAllStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]staff.Staff, 0, len(repo.db.table))
	for _, stf := range repo.db.table {
		members = append(members, *stf)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Email < members[j].Email })
	return members, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, stf staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[stf.ID]; !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	repo.db.table[stf.ID] = &stf
	return stf, nil
}
