package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habitual/models"
	"habitual/tracking"
)

// ErrNotFound covers both missing habits and habits owned by someone else
var ErrNotFound = errors.New("habit not found")

// ValidationError is a client input fault detected before any write
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ListFilter narrows List; zero values match everything
type ListFilter struct {
	Frequency models.Frequency
	Category  models.Category
}

// HabitStore persists habits and their completions, always scoped to an owner
type HabitStore struct {
	db *gorm.DB
}

func NewHabitStore(db *gorm.DB) *HabitStore {
	return &HabitStore{db: db}
}

func (s *HabitStore) Create(ctx context.Context, ownerID uint, input models.CreateHabitInput) (*models.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "Habit name is required")
	}
	if !input.Category.Valid() {
		return nil, invalid("category", "Invalid category")
	}
	frequency := input.Frequency
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	if !frequency.Valid() {
		return nil, invalid("frequency", "Invalid frequency")
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultHabitColor
	}

	habit := models.Habit{
		UserID:      ownerID,
		Name:        name,
		Category:    input.Category,
		Frequency:   frequency,
		Color:       color,
		Completions: []models.Completion{},
	}

	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

func (s *HabitStore) Get(ctx context.Context, ownerID uint, id string) (*models.Habit, error) {
	return s.get(s.db.WithContext(ctx), ownerID, id)
}

func (s *HabitStore) get(tx *gorm.DB, ownerID uint, id string) (*models.Habit, error) {
	var habit models.Habit
	err := tx.Preload("Completions").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&habit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load habit %s: %w", id, err)
	}
	return &habit, nil
}

// List returns the owner's habits, newest first
func (s *HabitStore) List(ctx context.Context, ownerID uint, filter ListFilter) ([]models.Habit, error) {
	query := s.db.WithContext(ctx).Preload("Completions").Where("user_id = ?", ownerID)

	if filter.Frequency != "" {
		if !filter.Frequency.Valid() {
			return nil, invalid("frequency", "Invalid frequency")
		}
		query = query.Where("frequency = ?", filter.Frequency)
	}
	if filter.Category != "" {
		if !filter.Category.Valid() {
			return nil, invalid("category", "Invalid category")
		}
		query = query.Where("category = ?", filter.Category)
	}

	var habits []models.Habit
	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Update applies only the fields present in input. Every present field is
// validated before anything is written.
func (s *HabitStore) Update(ctx context.Context, ownerID uint, id string, input models.UpdateHabitInput) (*models.Habit, error) {
	updates := map[string]interface{}{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name", "Habit name is required")
		}
		updates["name"] = name
	}
	if input.Category != nil {
		if !input.Category.Valid() {
			return nil, invalid("category", "Invalid category")
		}
		updates["category"] = *input.Category
	}
	if input.Frequency != nil {
		if !input.Frequency.Valid() {
			return nil, invalid("frequency", "Invalid frequency")
		}
		updates["frequency"] = *input.Frequency
	}
	if input.Color != nil {
		color := strings.TrimSpace(*input.Color)
		if color == "" {
			return nil, invalid("color", "Color is required")
		}
		updates["color"] = color
	}

	var habit *models.Habit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		habit, err = s.get(tx, ownerID, id)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(habit).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return fmt.Errorf("update habit %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes the habit and its completion history
func (s *HabitStore) Delete(ctx context.Context, ownerID uint, id string) (*models.Habit, error) {
	var habit *models.Habit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		habit, err = s.get(tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("habit_id = ?", habit.ID).Delete(&models.Completion{}).Error; err != nil {
			return fmt.Errorf("delete completions of %s: %w", id, err)
		}
		if err := tx.Delete(habit).Error; err != nil {
			return fmt.Errorf("delete habit %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

// ToggleCompletion flips day for the habit. The engine decides the direction
// from the loaded set; the write itself is keyed on (habit_id, day), so racing
// toggles can never store a day twice.
func (s *HabitStore) ToggleCompletion(ctx context.Context, ownerID uint, id, day, today string) (*models.Habit, tracking.ToggleResult, error) {
	if !tracking.ValidDay(day) {
		return nil, tracking.Unchanged, invalid("date", "Valid date is required (YYYY-MM-DD)")
	}

	var habit *models.Habit
	result := tracking.Unchanged
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		habit, err = s.get(tx, ownerID, id)
		if err != nil {
			return err
		}

		var next tracking.Set
		next, result = tracking.Toggle(habit.CompletionSet(), day, today)

		switch result {
		case tracking.Added:
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Completion{HabitID: habit.ID, Day: day}).Error
		case tracking.Removed:
			err = tx.Where("habit_id = ? AND day = ?", habit.ID, day).
				Delete(&models.Completion{}).Error
		default:
			return nil
		}
		if err != nil {
			return fmt.Errorf("toggle %s on %s: %w", day, id, err)
		}

		// Completions live in their own table, so bump updated_at explicitly
		if err := tx.Model(habit).Omit(clause.Associations).Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("touch habit %s: %w", id, err)
		}

		habit.Completions = habit.Completions[:0]
		for _, d := range next.Sorted() {
			habit.Completions = append(habit.Completions, models.Completion{HabitID: habit.ID, Day: d})
		}
		return nil
	})
	if err != nil {
		return nil, tracking.Unchanged, err
	}
	return habit, result, nil
}

// Summary aggregates every habit of the owner as of today
func (s *HabitStore) Summary(ctx context.Context, ownerID uint, today string) (tracking.Summary, error) {
	habits, err := s.List(ctx, ownerID, ListFilter{})
	if err != nil {
		return tracking.Summary{}, err
	}

	entries := make([]tracking.Entry, len(habits))
	for i := range habits {
		entries[i] = habits[i].Entry()
	}
	return tracking.Aggregate(entries, today), nil
}
