package tracking

// Entry is the slice of a habit the aggregate needs
type Entry struct {
	Category    string
	Completions Set
}

// Summary is the cross-habit statistics payload
type Summary struct {
	TotalHabits      int            `json:"totalHabits"`
	CompletedToday   int            `json:"completedToday"`
	TotalCompletions int            `json:"totalCompletions"`
	MaxStreak        int            `json:"maxStreak"`
	CategoryCounts   map[string]int `json:"categoryCounts"`
}

// Aggregate folds a collection of habits into a Summary. Only categories that
// actually occur appear in CategoryCounts.
func Aggregate(entries []Entry, today string) Summary {
	sum := Summary{
		TotalHabits:    len(entries),
		CategoryCounts: map[string]int{},
	}

	for _, e := range entries {
		if e.Completions.Has(today) {
			sum.CompletedToday++
		}
		sum.TotalCompletions += e.Completions.Len()
		if streak := Streak(e.Completions, today); streak > sum.MaxStreak {
			sum.MaxStreak = streak
		}
		sum.CategoryCounts[e.Category]++
	}

	return sum
}

// Day is one cell of the rolling calendar
type Day struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Completed bool   `json:"completed"`
	Today     bool   `json:"today"`
}

// Calendar renders the window ending at today, oldest first
func Calendar(s Set, today string, days int) []Day {
	window := Window(today, days)
	out := make([]Day, 0, len(window))
	for _, d := range window {
		t, _ := ParseDay(d)
		out = append(out, Day{
			Date:      d,
			Weekday:   t.Weekday().String()[:3],
			Completed: s.Has(d),
			Today:     d == today,
		})
	}
	return out
}
