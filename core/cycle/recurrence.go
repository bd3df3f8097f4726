package cycle

import (
	"time"

	"github.com/trezcool/kelasi/core"
)

// safetyFactor caps date generation at count*safetyFactor attempts, so a
// pathological holiday set covering every occurrence cannot loop forever.
const safetyFactor = 3

// GenerateResult reports the outcome of a date generation run.
// Truncated is set when the safety bound was hit before reaching the requested
// count; Shortfall is then the number of dates still missing.
type GenerateResult struct {
	Requested int         `json:"requested"`
	Generated int         `json:"generated"`
	Truncated bool        `json:"truncated"`
	Shortfall int         `json:"shortfall"`
	Dates     []time.Time `json:"dates"`
}

// AnchorWeekday advances `start` forward, day by day, until its weekday
// matches `target`. It never moves backward.
func AnchorWeekday(start time.Time, target time.Weekday) time.Time {
	d := core.Date(start)
	for d.Weekday() != target {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// GenerateDates expands a recurrence definition into concrete meeting dates:
// anchor `start` on `weekday`, then step in fixed 7-day increments, skipping
// dates in `holidays`. Skipped slots do not shift the weekly grid.
func GenerateDates(start time.Time, weekday time.Weekday, count int, holidays core.HolidaySet) (GenerateResult, error) {
	res := GenerateResult{Requested: count}

	if weekday < time.Sunday || weekday > time.Saturday {
		return res, ErrInvalidWeekday
	}
	if count <= 0 {
		return res, ErrInvalidCount
	}

	maxAttempts := count * safetyFactor
	d := AnchorWeekday(start, weekday)

	for attempts := 0; len(res.Dates) < count && attempts < maxAttempts; attempts++ {
		if !holidays.Contains(d.Format(core.ISODateFormat)) {
			res.Dates = append(res.Dates, d)
		}
		d = d.AddDate(0, 0, 7)
	}

	res.Generated = len(res.Dates)
	if res.Generated < count {
		res.Truncated = true
		res.Shortfall = count - res.Generated
	}
	return res, nil
}

// ProjectEndDate estimates the end date of a cycle starting at `start`:
// the weekday anchor plus (totalMeetings-1) weeks. Holidays are not consulted;
// the estimate is refined when meetings are actually generated.
func ProjectEndDate(start time.Time, weekday time.Weekday, totalMeetings int) time.Time {
	anchor := AnchorWeekday(start, weekday)
	if totalMeetings < 1 {
		return anchor
	}
	return anchor.AddDate(0, 0, (totalMeetings-1)*7)
}
