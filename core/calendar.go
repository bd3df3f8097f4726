package core

import "context"

// ISODateFormat is the wire format for holiday dates.
const ISODateFormat = "2006-01-02"

// HolidaySet is an immutable set of ISO dates on which no meeting may be scheduled.
type HolidaySet map[string]struct{}

func NewHolidaySet(dates ...string) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (set HolidaySet) Contains(isoDate string) bool {
	_, ok := set[isoDate]
	return ok
}

func (set HolidaySet) Len() int { return len(set) }

// Merge returns a new set holding the union of both sets.
func (set HolidaySet) Merge(other HolidaySet) HolidaySet {
	merged := make(HolidaySet, len(set)+len(other))
	for d := range set {
		merged[d] = struct{}{}
	}
	for d := range other {
		merged[d] = struct{}{}
	}
	return merged
}

// CalendarService supplies the set of non-teaching dates for a given year.
// Implementations memoize successfully fetched years and degrade to an empty
// set when the backing source is unreachable; scheduling is never blocked on it.
type CalendarService interface {
	FetchHolidays(ctx context.Context, year int) HolidaySet
}
