package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"habitual/models"
	"habitual/tracking"
)

// Snapshot is a self-contained export of one user's habits
type Snapshot struct {
	ExportedAt time.Time              `json:"exportedAt"`
	Today      string                 `json:"today"`
	User       models.UserResponse    `json:"user"`
	Habits     []models.HabitResponse `json:"habits"`
	Summary    tracking.Summary       `json:"summary"`
}

// BuildSnapshot loads everything the user owns and derives figures as of today
func BuildSnapshot(ctx context.Context, db *gorm.DB, user *models.User, now time.Time) (*Snapshot, error) {
	today := tracking.Today(now, user.Location())

	habits, err := NewHabitStore(db).List(ctx, user.ID, ListFilter{})
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ExportedAt: now.UTC(),
		Today:      today,
		User:       user.ToResponse(),
		Habits:     make([]models.HabitResponse, len(habits)),
	}
	entries := make([]tracking.Entry, len(habits))
	for i := range habits {
		snap.Habits[i] = habits[i].ToResponse(today, user.StatsWindowDays)
		entries[i] = habits[i].Entry()
	}
	snap.Summary = tracking.Aggregate(entries, today)

	return snap, nil
}

// FileName is the name a snapshot is stored under
func (s *Snapshot) FileName() string {
	return fmt.Sprintf("habitual-%s-%s.json", s.User.Username, s.ExportedAt.Format("20060102-150405"))
}

func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
