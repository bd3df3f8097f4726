// Package dummydb provides in-memory repositories used by tests and local
// development. Tables are guarded by RW mutexes; transactions are a no-op
// (every write is applied immediately).
package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/instructor"
	"github.com/trezcool/kelasi/core/lead"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
	"github.com/trezcool/kelasi/core/staff"
)

type (
	DB struct {
		cycle       *cycleTable
		meeting     *meetingTable
		reg         *registrationTable
		lead        *leadTable
		instructor  *instructorTable
		staffMember *staffTable
	}

	cycleTable struct {
		sync.RWMutex
		table map[string]*cycle.Cycle
	}

	meetingTable struct {
		sync.RWMutex
		table map[string]*meeting.Meeting
	}

	registrationTable struct {
		sync.RWMutex
		table map[string]*registration.Registration
	}

	leadTable struct {
		sync.RWMutex
		table map[string]*lead.Lead
	}

	instructorTable struct {
		sync.RWMutex
		table map[string]*instructor.Instructor
	}

	staffTable struct {
		sync.RWMutex
		table map[string]*staff.Staff
	}
)

var _ core.Atomizer = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		cycle:       &cycleTable{table: make(map[string]*cycle.Cycle)},
		meeting:     &meetingTable{table: make(map[string]*meeting.Meeting)},
		reg:         &registrationTable{table: make(map[string]*registration.Registration)},
		lead:        &leadTable{table: make(map[string]*lead.Lead)},
		instructor:  &instructorTable{table: make(map[string]*instructor.Instructor)},
		staffMember: &staffTable{table: make(map[string]*staff.Staff)},
	}
	return db, nil
}

// Atomic applies fn immediately; the in-memory store has no transactions.
func (db *DB) Atomic(ctx context.Context, fn func(tx core.DBExecutor) error) error {
	return fn(nil)
}
