package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/instructor"
)

type instructorRepository struct {
	db *instructorTable
}

var _ instructor.Repository = (*instructorRepository)(nil) // interface compliance check

func NewInstructorRepository(db *DB) *instructorRepository {
	return &instructorRepository{db: db.instructor}
}

func (repo *instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ins.ID = uuid.New().String()
	repo.db.table[ins.ID] = &ins
	return ins, nil
}

func (repo *instructorRepository) GetInstructor(ctx context.Context, id string, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ins, ok := repo.db.table[id]; ok {
		return *ins, nil
	}
	return instructor.Instructor{}, instructor.ErrNotFound
}

func (repo *instructorRepository) QueryAllInstructors(ctx context.Context, exec ...core.DBExecutor) ([]instructor.Instructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instructors := make([]instructor.Instructor, 0, len(repo.db.table))
	for _, ins := range repo.db.table {
		instructors = append(instructors, *ins)
	}
	sort.Slice(instructors, func(i, j int) bool { return instructors[i].Name < instructors[j].Name })
	return instructors, nil
}

func (repo *instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor, exec ...core.DBExecutor) (instructor.Instructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[ins.ID]; !ok {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	repo.db.table[ins.ID] = &ins
	return ins, nil
}
