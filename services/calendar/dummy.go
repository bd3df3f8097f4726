package calendarsvc

import (
	"context"
	"sync"

	"github.com/trezcool/kelasi/core"
)

// DummyService serves a fixed holiday set and counts fetches.
type DummyService struct {
	mu       sync.Mutex
	holidays core.HolidaySet
	calls    int
}

var _ core.CalendarService = (*DummyService)(nil)

func NewDummyService(dates ...string) *DummyService {
	return &DummyService{holidays: core.NewHolidaySet(dates...)}
}

func (svc *DummyService) FetchHolidays(ctx context.Context, year int) core.HolidaySet {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.calls++
	return svc.holidays
}

func (svc *DummyService) Calls() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.calls
}
