// Package tracking holds the completion, streak and statistics rules for habits.
//
// Every function is pure: the caller supplies "today" as a YYYY-MM-DD string and
// nothing here reads a clock or touches storage.
package tracking

import (
	"sort"
	"time"
)

// DayLayout is the only accepted date format for completions
const DayLayout = "2006-01-02"

// ToggleResult reports which way a toggle went
type ToggleResult string

const (
	Unchanged ToggleResult = "unchanged"
	Added     ToggleResult = "added"
	Removed   ToggleResult = "removed"
)

// Set is a set of completion days keyed by YYYY-MM-DD
type Set map[string]struct{}

// NewSet builds a set from the given days, collapsing duplicates
func NewSet(days ...string) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

func (s Set) Has(day string) bool {
	_, ok := s[day]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Sorted returns the days newest first. The fixed-width ISO layout makes
// lexicographic order chronological.
func (s Set) Sorted() []string {
	days := make([]string, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days
}

// ParseDay parses a YYYY-MM-DD string as a UTC midnight
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DayLayout, day)
}

// ValidDay reports whether day is a real calendar date in YYYY-MM-DD form.
// Round-tripping rejects inputs such as "2024-1-5" that time.Parse would not
// normalise back to the same string.
func ValidDay(day string) bool {
	t, err := ParseDay(day)
	if err != nil {
		return false
	}
	return t.Format(DayLayout) == day
}

// AddDays shifts day by n calendar days. An unparsable day yields "".
func AddDays(day string, n int) string {
	t, err := ParseDay(day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, n).Format(DayLayout)
}

// Today formats now as a calendar day in loc (UTC when loc is nil)
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DayLayout)
}

// Toggle flips membership of day and returns a new set. Days after today are
// never marked; the input is returned untouched with Unchanged.
func Toggle(s Set, day, today string) (Set, ToggleResult) {
	if day > today {
		return s, Unchanged
	}

	out := s.Clone()
	if out.Has(day) {
		delete(out, day)
		return out, Removed
	}
	out[day] = struct{}{}
	return out, Added
}
