package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"habitual/tracking"
)

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryProductivity Category = "productivity"
	CategoryLearning     Category = "learning"
	CategoryMindfulness  Category = "mindfulness"
	CategorySocial       Category = "social"
	CategoryFinance      Category = "finance"
	CategoryCreativity   Category = "creativity"
	CategoryOther        Category = "other"
)

// Categories lists every accepted category in display order
var Categories = []Category{
	CategoryHealth,
	CategoryProductivity,
	CategoryLearning,
	CategoryMindfulness,
	CategorySocial,
	CategoryFinance,
	CategoryCreativity,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyCustom}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

const DefaultHabitColor = "#667eea"

type Habit struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"ownerId"`
	Name        string         `gorm:"not null" json:"name"`
	Category    Category       `gorm:"not null;index" json:"category"`
	Frequency   Frequency      `gorm:"not null;default:daily" json:"frequency"`
	Color       string         `gorm:"not null;default:#667eea" json:"color"`
	Completions []Completion   `gorm:"foreignKey:HabitID" json:"-"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Completion marks one day as done. The composite key keeps each day unique per habit.
type Completion struct {
	HabitID   string    `gorm:"primaryKey;size:36"`
	Day       string    `gorm:"primaryKey;size:10"`
	CreatedAt time.Time
}

// CompletionSet converts the loaded completions into the tracking set
func (h *Habit) CompletionSet() tracking.Set {
	s := make(tracking.Set, len(h.Completions))
	for _, c := range h.Completions {
		s[c.Day] = struct{}{}
	}
	return s
}

// Entry is the habit as seen by the statistics aggregate
func (h *Habit) Entry() tracking.Entry {
	return tracking.Entry{
		Category:    string(h.Category),
		Completions: h.CompletionSet(),
	}
}

// HabitResponse is the wire shape of a habit plus the figures derived from it
type HabitResponse struct {
	ID             string    `json:"id"`
	OwnerID        uint      `json:"ownerId"`
	Name           string    `json:"name"`
	Category       Category  `json:"category"`
	Frequency      Frequency `json:"frequency"`
	Color          string    `json:"color"`
	Completions    []string  `json:"completions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Streak         int       `json:"streak"`
	LongestStreak  int       `json:"longestStreak"`
	CompletionRate int       `json:"completionRate"`
}

// ToResponse derives streaks and the completion rate as of today
func (h *Habit) ToResponse(today string, windowDays int) HabitResponse {
	set := h.CompletionSet()
	if windowDays <= 0 {
		windowDays = tracking.DefaultWindowDays
	}
	rate, _ := tracking.Rate(set, today, windowDays)

	return HabitResponse{
		ID:             h.ID,
		OwnerID:        h.UserID,
		Name:           h.Name,
		Category:       h.Category,
		Frequency:      h.Frequency,
		Color:          h.Color,
		Completions:    set.Sorted(),
		CreatedAt:      h.CreatedAt,
		UpdatedAt:      h.UpdatedAt,
		Streak:         tracking.Streak(set, today),
		LongestStreak:  tracking.LongestStreak(set),
		CompletionRate: rate,
	}
}

// CreateHabitInput is used for creating habits
type CreateHabitInput struct {
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Frequency Frequency `json:"frequency"`
	Color     string    `json:"color"`
}

// UpdateHabitInput is used for partial updates; nil means "keep"
type UpdateHabitInput struct {
	Name      *string    `json:"name"`
	Category  *Category  `json:"category"`
	Frequency *Frequency `json:"frequency"`
	Color     *string    `json:"color"`
}

// ToggleInput is the body of a completion toggle
type ToggleInput struct {
	Date string `json:"date"`
}
