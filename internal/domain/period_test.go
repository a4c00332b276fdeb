package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodStart(t *testing.T) {
	// Saturday 2026-08-29 15:04 UTC
	now := time.Date(2026, 8, 29, 15, 4, 0, 0, time.UTC)

	cases := []struct {
		period Period
		want   time.Time
	}{
		{PeriodDaily, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)},
		{PeriodWeekly, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)}, // Monday
		{PeriodMonthly, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYearly, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.period.Start(now, time.UTC))
		})
	}
}

func TestPeriodStart_WeekStartsMondayOnSunday(t *testing.T) {
	// Sunday belongs to the week that began six days earlier.
	sunday := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, PeriodWeekly.Start(sunday, time.UTC))
}

func TestPeriodStart_RespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 23:30 UTC is already the next day at UTC+3.
	now := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, loc)
	assert.True(t, PeriodDaily.Start(now, loc).Equal(want))
}
