package cycle

import (
	"testing"
	"time"

	"github.com/trezcool/kelasi/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnchorWeekday(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		target time.Weekday
		want   time.Time
	}{
		{name: "already on target", start: date(2025, 1, 6), target: time.Monday, want: date(2025, 1, 6)},
		{name: "advances forward", start: date(2025, 3, 1), target: time.Tuesday, want: date(2025, 3, 4)},
		{name: "never moves backward", start: date(2025, 1, 7), target: time.Monday, want: date(2025, 1, 13)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnchorWeekday(tt.start, tt.target); !got.Equal(tt.want) {
				t.Errorf("AnchorWeekday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateDates(t *testing.T) {
	t.Run("holiday skipped, grid preserved", func(t *testing.T) {
		holidays := core.NewHolidaySet("2025-01-20")

		res, err := GenerateDates(date(2025, 1, 6), time.Monday, 3, holidays)
		if err != nil {
			t.Fatalf("GenerateDates() unexpected error = %v", err)
		}
		want := []time.Time{date(2025, 1, 6), date(2025, 1, 13), date(2025, 1, 27)}
		assertDates(t, res.Dates, want)
		if res.Truncated {
			t.Error("GenerateDates() truncated = true, want false")
		}
	})

	t.Run("all dates on target weekday and outside holiday set", func(t *testing.T) {
		holidays := core.NewHolidaySet("2025-02-05", "2025-03-05")

		res, err := GenerateDates(date(2025, 1, 31), time.Wednesday, 8, holidays)
		if err != nil {
			t.Fatalf("GenerateDates() unexpected error = %v", err)
		}
		if len(res.Dates) != 8 {
			t.Fatalf("GenerateDates() produced %d dates, want 8", len(res.Dates))
		}
		for _, d := range res.Dates {
			if d.Weekday() != time.Wednesday {
				t.Errorf("date %v is a %v, want Wednesday", d, d.Weekday())
			}
			if holidays.Contains(d.Format(core.ISODateFormat)) {
				t.Errorf("date %v is in the holiday set", d)
			}
		}
	})

	t.Run("safety bound truncates with signal", func(t *testing.T) {
		// every Monday of Jan-Mar 2025 is a holiday
		holidays := core.NewHolidaySet()
		for d := date(2025, 1, 6); d.Before(date(2025, 4, 1)); d = d.AddDate(0, 0, 7) {
			holidays[d.Format(core.ISODateFormat)] = struct{}{}
		}

		res, err := GenerateDates(date(2025, 1, 6), time.Monday, 4, holidays)
		if err != nil {
			t.Fatalf("GenerateDates() unexpected error = %v", err)
		}
		if !res.Truncated {
			t.Error("GenerateDates() truncated = false, want true")
		}
		if res.Generated+res.Shortfall != res.Requested {
			t.Errorf("generated %d + shortfall %d != requested %d", res.Generated, res.Shortfall, res.Requested)
		}
		if len(res.Dates) != res.Generated {
			t.Errorf("len(dates) = %d, generated = %d", len(res.Dates), res.Generated)
		}
	})

	t.Run("invalid inputs", func(t *testing.T) {
		if _, err := GenerateDates(date(2025, 1, 6), time.Weekday(7), 3, nil); err != ErrInvalidWeekday {
			t.Errorf("GenerateDates() error = %v, want ErrInvalidWeekday", err)
		}
		if _, err := GenerateDates(date(2025, 1, 6), time.Monday, 0, nil); err != ErrInvalidCount {
			t.Errorf("GenerateDates() error = %v, want ErrInvalidCount", err)
		}
		if _, err := GenerateDates(date(2025, 1, 6), time.Monday, -3, nil); err != ErrInvalidCount {
			t.Errorf("GenerateDates() error = %v, want ErrInvalidCount", err)
		}
	})
}

func TestProjectEndDate(t *testing.T) {
	// duplicating a Tuesday cycle of 8 meetings to Saturday 2025-03-01:
	// anchors to 2025-03-04 and projects 7 weeks out.
	got := ProjectEndDate(date(2025, 3, 1), time.Tuesday, 8)
	if want := date(2025, 4, 22); !got.Equal(want) {
		t.Errorf("ProjectEndDate() = %v, want %v", got, want)
	}
}

func assertDates(t *testing.T, got, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
