package tracking

import (
	"errors"
	"math"
)

// DefaultWindowDays is the rolling window used for completion rates and the calendar
const DefaultWindowDays = 28

var ErrInvalidWindow = errors.New("window must be at least one day")

// Streak counts consecutive completed days walking back from today inclusive.
// The walk stops at the first missing day, so an older run behind a gap does
// not count. Days after today are never consulted.
func Streak(s Set, today string) int {
	start, err := ParseDay(today)
	if err != nil {
		return 0
	}

	streak := 0
	// A streak can never be longer than the set itself.
	for i := 0; i < len(s); i++ {
		expected := start.AddDate(0, 0, -i).Format(DayLayout)
		if !s.Has(expected) {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the longest run of consecutive days anywhere in the set
func LongestStreak(s Set) int {
	longest := 0
	for d := range s {
		// Only start counting at the first day of a run.
		if s.Has(AddDays(d, -1)) {
			continue
		}
		run := 1
		for next := AddDays(d, 1); s.Has(next); next = AddDays(next, 1) {
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Window lists the windowDays days ending at today, oldest first
func Window(today string, windowDays int) []string {
	if windowDays <= 0 {
		return nil
	}
	start, err := ParseDay(today)
	if err != nil {
		return nil
	}

	days := make([]string, windowDays)
	for i := 0; i < windowDays; i++ {
		days[i] = start.AddDate(0, 0, i-windowDays+1).Format(DayLayout)
	}
	return days
}

// Rate is the rounded percentage of window days that are completed
func Rate(s Set, today string, windowDays int) (int, error) {
	if windowDays <= 0 {
		return 0, ErrInvalidWindow
	}

	done := 0
	for _, d := range Window(today, windowDays) {
		if s.Has(d) {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(windowDays) * 100)), nil
}
