// Package calendarsvc supplies holiday calendars from an external HTTP source.
//
// Successfully fetched years are memoized for the process lifetime (holidays
// for a fixed year do not change); a failed fetch degrades to an empty set and
// is retried on the next access, so scheduling is never blocked on the source.
package calendarsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/trezcool/kelasi/core"
)

type service struct {
	client  *http.Client
	baseURL string
	logger  core.Logger

	mu    sync.RWMutex
	cache map[int]core.HolidaySet
}

var _ core.CalendarService = (*service)(nil)

func NewService(conf *core.Config, logger core.Logger) *service {
	return &service{
		client:  &http.Client{Timeout: conf.Calendar.Timeout},
		baseURL: conf.Calendar.BaseURL,
		logger:  logger,
		cache:   make(map[int]core.HolidaySet),
	}
}

// FetchHolidays returns the holiday set for `year`, hitting the external
// source at most once per year per process.
func (svc *service) FetchHolidays(ctx context.Context, year int) core.HolidaySet {
	svc.mu.RLock()
	set, ok := svc.cache[year]
	svc.mu.RUnlock()
	if ok {
		return set
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if set, ok = svc.cache[year]; ok { // fetched while waiting for the lock
		return set
	}

	set, err := svc.fetch(ctx, year)
	if err != nil {
		// degrade: scheduling continues without a calendar; not cached so the
		// year is retried on next access
		svc.logger.Warn(fmt.Sprintf("fetching holidays for %d: %v", year, err), err)
		return core.NewHolidaySet()
	}

	svc.cache[year] = set
	return set
}

func (svc *service) fetch(ctx context.Context, year int) (core.HolidaySet, error) {
	url := fmt.Sprintf("%s/holidays?year=%d", svc.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := svc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar source returned %d", res.StatusCode)
	}

	var body struct {
		Dates []string `json:"dates"`
	}
	if err = json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	return core.NewHolidaySet(body.Dates...), nil
}
