/*
calendar.go - Business-day calculation with holiday exclusion

PURPOSE:
  Counts working days between two dates. A day counts unless it falls on a
  weekend or, when asked, on a configured holiday.

DETERMINISM:
  CountBusinessDays is pure: same inputs and holiday configuration, same
  answer. Required so an audited day count can be reproduced later.

SEE ALSO:
  - engine.go: calls CountBusinessDays with holidays excluded
*/
package leave

import (
	"sort"
	"sync"
	"time"
)

// HolidayProvider answers whether a given date is a configured holiday.
// Implementations must be safe for concurrent reads.
type HolidayProvider interface {
	IsHoliday(date time.Time) bool
}

// =============================================================================
// BUSINESS CALENDAR
// =============================================================================

type BusinessCalendar struct {
	holidays HolidayProvider
}

// NewBusinessCalendar creates a calendar over the given holiday set.
// A nil provider means no holidays are configured.
func NewBusinessCalendar(holidays HolidayProvider) *BusinessCalendar {
	if holidays == nil {
		holidays = emptyHolidays{}
	}
	return &BusinessCalendar{holidays: holidays}
}

// CountBusinessDays returns the number of working days in [start, end]
// inclusive. Saturdays and Sundays never count; configured holidays are
// skipped when excludeHolidays is true.
//
// start == end on a weekday returns 1. start > end is a caller error and
// returns 0; the engine rejects inverted ranges before ever getting here.
func (c *BusinessCalendar) CountBusinessDays(start, end time.Time, excludeHolidays bool) int {
	start, end = DateOnly(start), DateOnly(end)
	if start.After(end) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if excludeHolidays && c.holidays.IsHoliday(d) {
			continue
		}
		count++
	}
	return count
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

type emptyHolidays struct{}

func (emptyHolidays) IsHoliday(time.Time) bool { return false }

// =============================================================================
// HOLIDAY SET - Mutable, concurrency-safe HolidayProvider
// =============================================================================

// HolidaySet is the standard HolidayProvider: a set of ISO dates loaded at
// startup and adjusted through holiday management calls.
type HolidaySet struct {
	mu    sync.RWMutex
	dates map[string]bool // keyed "2006-01-02"
}

func NewHolidaySet(dates ...time.Time) *HolidaySet {
	s := &HolidaySet{dates: make(map[string]bool)}
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s *HolidaySet) Add(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dates[DateOnly(date).Format("2006-01-02")] = true
}

func (s *HolidaySet) Remove(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dates, DateOnly(date).Format("2006-01-02"))
}

func (s *HolidaySet) IsHoliday(date time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dates[DateOnly(date).Format("2006-01-02")]
}

// Dates returns the configured holidays in ascending order.
func (s *HolidaySet) Dates() []time.Time {
	s.mu.RLock()
	keys := make([]string, 0, len(s.dates))
	for k := range s.dates {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		t, err := time.Parse("2006-01-02", k)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
