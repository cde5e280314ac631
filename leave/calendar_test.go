package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/leave-engine/leave"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDays_FullWeek(t *testing.T) {
	// GIVEN: Monday through Friday, no holidays
	// THEN: all five days count

	cal := leave.NewBusinessCalendar(nil)
	got := cal.CountBusinessDays(date(2024, time.June, 3), date(2024, time.June, 7), true)
	assert.Equal(t, 5, got)
}

func TestCountBusinessDays_SpanningWeekend(t *testing.T) {
	// GIVEN: Friday through the following Monday
	// THEN: Saturday and Sunday are excluded

	cal := leave.NewBusinessCalendar(nil)
	got := cal.CountBusinessDays(date(2024, time.June, 7), date(2024, time.June, 10), true)
	assert.Equal(t, 2, got)
}

func TestCountBusinessDays_WeekendOnly(t *testing.T) {
	cal := leave.NewBusinessCalendar(nil)
	got := cal.CountBusinessDays(date(2024, time.June, 8), date(2024, time.June, 9), true)
	assert.Equal(t, 0, got)
}

func TestCountBusinessDays_HolidayExclusion(t *testing.T) {
	// GIVEN: July 4 2024 (a Thursday) is a configured holiday
	// WHEN: counting Mon Jul 1 through Fri Jul 5
	// THEN: the holiday is skipped only when exclusion is requested

	holidays := leave.NewHolidaySet(date(2024, time.July, 4))
	cal := leave.NewBusinessCalendar(holidays)

	assert.Equal(t, 4, cal.CountBusinessDays(date(2024, time.July, 1), date(2024, time.July, 5), true))
	assert.Equal(t, 5, cal.CountBusinessDays(date(2024, time.July, 1), date(2024, time.July, 5), false))
}

func TestCountBusinessDays_HolidayOnWeekend_NoDoubleExclusion(t *testing.T) {
	// A holiday falling on a Saturday must not change the count.

	holidays := leave.NewHolidaySet(date(2024, time.June, 8))
	cal := leave.NewBusinessCalendar(holidays)

	got := cal.CountBusinessDays(date(2024, time.June, 3), date(2024, time.June, 10), true)
	assert.Equal(t, 6, got)
}

func TestCountBusinessDays_SingleWeekday(t *testing.T) {
	// start == end on a weekday returns 1

	cal := leave.NewBusinessCalendar(nil)
	got := cal.CountBusinessDays(date(2024, time.June, 5), date(2024, time.June, 5), true)
	assert.Equal(t, 1, got)
}

func TestCountBusinessDays_InvertedRange(t *testing.T) {
	// start > end is a caller error and yields zero

	cal := leave.NewBusinessCalendar(nil)
	got := cal.CountBusinessDays(date(2024, time.June, 7), date(2024, time.June, 3), true)
	assert.Equal(t, 0, got)
}

func TestCountBusinessDays_Deterministic(t *testing.T) {
	// Same inputs, same holiday configuration: repeated calls agree.

	holidays := leave.NewHolidaySet(date(2024, time.December, 25), date(2024, time.December, 26))
	cal := leave.NewBusinessCalendar(holidays)

	start, end := date(2024, time.December, 23), date(2024, time.December, 31)
	first := cal.CountBusinessDays(start, end, true)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cal.CountBusinessDays(start, end, true))
	}
}

func TestCountBusinessDays_IgnoresTimeOfDay(t *testing.T) {
	// Timestamps are normalized to dates before counting.

	cal := leave.NewBusinessCalendar(nil)
	start := time.Date(2024, time.June, 3, 23, 30, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 7, 1, 15, 0, 0, time.UTC)
	assert.Equal(t, 5, cal.CountBusinessDays(start, end, true))
}

func TestHolidaySet_AddRemove(t *testing.T) {
	set := leave.NewHolidaySet()
	d := date(2024, time.July, 4)

	assert.False(t, set.IsHoliday(d))
	set.Add(d)
	assert.True(t, set.IsHoliday(d))
	set.Remove(d)
	assert.False(t, set.IsHoliday(d))
}

func TestHolidaySet_DatesSorted(t *testing.T) {
	set := leave.NewHolidaySet(
		date(2024, time.December, 25),
		date(2024, time.January, 1),
		date(2024, time.July, 4),
	)

	dates := set.Dates()
	assert.Len(t, dates, 3)
	assert.Equal(t, date(2024, time.January, 1), dates[0])
	assert.Equal(t, date(2024, time.July, 4), dates[1])
	assert.Equal(t, date(2024, time.December, 25), dates[2])
}
