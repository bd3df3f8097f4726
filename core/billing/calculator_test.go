package billing

import (
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/meeting"
)

func TestCalculate(t *testing.T) {
	rates := Rates{
		Online:  null.Float64From(100),
		Frontal: null.Float64From(120),
		Support: null.Float64From(60),
	}

	tests := []struct {
		name  string
		ctx   Context
		asg   Assignment
		rates Rates
		want  float64
	}{
		{
			name: "envelope mode: flat per-meeting amount",
			ctx: Context{
				PrimaryInstructorID: null.StringFrom("prim"),
				Budget:              null.Float64From(1000),
				TotalMeetings:       10,
			},
			asg:   Assignment{InstructorID: "prim", DurationMinutes: 90, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  100,
		},
		{
			name: "envelope mode: duration independent",
			ctx: Context{
				PrimaryInstructorID: null.StringFrom("prim"),
				Budget:              null.Float64From(1000),
				TotalMeetings:       10,
			},
			asg:   Assignment{InstructorID: "prim", DurationMinutes: 45, ActivityType: meeting.ActivityOnline},
			rates: rates,
			want:  100,
		},
		{
			name: "envelope mode: rounds to nearest unit",
			ctx: Context{
				PrimaryInstructorID: null.StringFrom("prim"),
				Budget:              null.Float64From(1000),
				TotalMeetings:       3,
			},
			asg:   Assignment{InstructorID: "prim", DurationMinutes: 60, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  333,
		},
		{
			name: "envelope does not apply to non-primary instructor",
			ctx: Context{
				PrimaryInstructorID: null.StringFrom("prim"),
				Budget:              null.Float64From(1000),
				TotalMeetings:       10,
			},
			asg:   Assignment{InstructorID: "other", DurationMinutes: 60, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  120,
		},
		{
			name:  "envelope absent: primary falls through to activity rate",
			ctx:   Context{PrimaryInstructorID: null.StringFrom("prim"), TotalMeetings: 10},
			asg:   Assignment{InstructorID: "prim", DurationMinutes: 60, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  120,
		},
		{
			name:  "envelope with zero total meetings falls through",
			ctx:   Context{PrimaryInstructorID: null.StringFrom("prim"), Budget: null.Float64From(1000)},
			asg:   Assignment{InstructorID: "prim", DurationMinutes: 60, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  120,
		},
		{
			name:  "support mode",
			asg:   Assignment{InstructorID: "sup", IsSupport: true, DurationMinutes: 90, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  90,
		},
		{
			name:  "support mode with no support rate pays zero",
			asg:   Assignment{InstructorID: "sup", IsSupport: true, DurationMinutes: 90},
			rates: Rates{Frontal: null.Float64From(120)},
			want:  0,
		},
		{
			name:  "activity-rate mode: frontal 120/hr, 90 min",
			asg:   Assignment{InstructorID: "i", DurationMinutes: 90, ActivityType: meeting.ActivityFrontal},
			rates: rates,
			want:  180,
		},
		{
			name:  "activity-rate mode: online rate set",
			asg:   Assignment{InstructorID: "i", DurationMinutes: 60, ActivityType: meeting.ActivityOnline},
			rates: rates,
			want:  100,
		},
		{
			name:  "activity-rate mode: private falls back to frontal",
			asg:   Assignment{InstructorID: "i", DurationMinutes: 60, ActivityType: meeting.ActivityPrivate},
			rates: rates,
			want:  120,
		},
		{
			name: "no configuration at all pays zero",
			asg:  Assignment{InstructorID: "i", DurationMinutes: 60, ActivityType: meeting.ActivityFrontal},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Calculate(tt.ctx, tt.asg, tt.rates); got != tt.want {
				t.Errorf("Calculate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatesForActivity(t *testing.T) {
	rates := Rates{Frontal: null.Float64From(150)}
	for _, at := range meeting.AllActivityTypes {
		if got := rates.ForActivity(at); got != 150 {
			t.Errorf("ForActivity(%s) = %v, want frontal fallback 150", at, got)
		}
	}
}
