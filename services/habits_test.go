package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"habitual/config"
	"habitual/database"
	"habitual/models"
	"habitual/tracking"
)

const today = "2024-01-10"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabasePath:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		DisplayName:  username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func ptr[T any](v T) *T {
	return &v
}

func TestHabitStore_Create(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	habit, err := store.Create(ctx, user.ID, models.CreateHabitInput{
		Name:     "  Read  ",
		Category: models.CategoryLearning,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, habit.ID)
	assert.Equal(t, "Read", habit.Name)
	assert.Equal(t, models.FrequencyDaily, habit.Frequency)
	assert.Equal(t, models.DefaultHabitColor, habit.Color)
	assert.Equal(t, user.ID, habit.UserID)
	assert.Equal(t, 0, habit.CompletionSet().Len())
}

func TestHabitStore_CreateValidation(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	user := createUser(t, db, "alice")

	tests := []struct {
		name  string
		input models.CreateHabitInput
		field string
	}{
		{"blank name", models.CreateHabitInput{Name: "   ", Category: models.CategoryHealth}, "name"},
		{"unknown category", models.CreateHabitInput{Name: "Run", Category: "sports"}, "category"},
		{"missing category", models.CreateHabitInput{Name: "Run"}, "category"},
		{"unknown frequency", models.CreateHabitInput{Name: "Run", Category: models.CategoryHealth, Frequency: "hourly"}, "frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), user.ID, tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	var count int64
	db.Model(&models.Habit{}).Count(&count)
	assert.Zero(t, count)
}

func TestHabitStore_OwnerScoping(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	habit, err := store.Create(ctx, alice.ID, models.CreateHabitInput{Name: "Meditate", Category: models.CategoryMindfulness})
	require.NoError(t, err)

	_, err = store.Get(ctx, bob.ID, habit.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Update(ctx, bob.ID, habit.ID, models.UpdateHabitInput{Name: ptr("Hijacked")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = store.ToggleCompletion(ctx, bob.ID, habit.ID, today, today)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Delete(ctx, bob.ID, habit.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, alice.ID, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := store.Get(ctx, alice.ID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meditate", got.Name)
}

func TestHabitStore_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	names := []string{"first", "second", "third"}
	for i, name := range names {
		h, err := store.Create(ctx, user.ID, models.CreateHabitInput{
			Name:      name,
			Category:  models.CategoryHealth,
			Frequency: models.Frequencies[i],
		})
		require.NoError(t, err)
		created := time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Model(h).Update("created_at", created).Error)
	}
	_, err := store.Create(ctx, other.ID, models.CreateHabitInput{Name: "not mine", Category: models.CategoryHealth})
	require.NoError(t, err)

	habits, err := store.List(ctx, user.ID, ListFilter{})
	require.NoError(t, err)
	require.Len(t, habits, 3)
	assert.Equal(t, "third", habits[0].Name)
	assert.Equal(t, "second", habits[1].Name)
	assert.Equal(t, "first", habits[2].Name)

	weekly, err := store.List(ctx, user.ID, ListFilter{Frequency: models.FrequencyWeekly})
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	assert.Equal(t, "second", weekly[0].Name)

	_, err = store.List(ctx, user.ID, ListFilter{Category: "bogus"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHabitStore_UpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	habit, err := store.Create(ctx, user.ID, models.CreateHabitInput{
		Name:     "Save money",
		Category: models.CategoryFinance,
		Color:    "#ff0000",
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	updated, err := store.Update(ctx, user.ID, habit.ID, models.UpdateHabitInput{
		Frequency: ptr(models.FrequencyWeekly),
	})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(habit.UpdatedAt), "update must refresh updatedAt")

	reloaded, err := store.Get(ctx, user.ID, habit.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.UpdatedAt.After(habit.UpdatedAt))
	assert.Equal(t, "Save money", updated.Name)
	assert.Equal(t, models.CategoryFinance, updated.Category)
	assert.Equal(t, models.FrequencyWeekly, updated.Frequency)
	assert.Equal(t, "#ff0000", updated.Color)

	_, err = store.Update(ctx, user.ID, habit.ID, models.UpdateHabitInput{
		Name:     ptr("Renamed"),
		Category: ptr(models.Category("nope")),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)

	reloaded, err = store.Get(ctx, user.ID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Save money", reloaded.Name, "rejected update must not write")
}

func TestHabitStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	habit, err := store.Create(ctx, user.ID, models.CreateHabitInput{Name: "Call mom", Category: models.CategorySocial})
	require.NoError(t, err)
	_, _, err = store.ToggleCompletion(ctx, user.ID, habit.ID, today, today)
	require.NoError(t, err)

	_, err = store.Delete(ctx, user.ID, habit.ID)
	require.NoError(t, err)

	_, err = store.Get(ctx, user.ID, habit.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.Completion{}).Where("habit_id = ?", habit.ID).Count(&count)
	assert.Zero(t, count)

	_, err = store.Delete(ctx, user.ID, habit.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHabitStore_ToggleCompletion(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	habit, err := store.Create(ctx, user.ID, models.CreateHabitInput{Name: "Run", Category: models.CategoryHealth})
	require.NoError(t, err)

	t.Run("on and off", func(t *testing.T) {
		h, res, err := store.ToggleCompletion(ctx, user.ID, habit.ID, today, today)
		require.NoError(t, err)
		assert.Equal(t, tracking.Added, res)
		assert.Equal(t, []string{today}, h.CompletionSet().Sorted())
		assert.Equal(t, 1, tracking.Streak(h.CompletionSet(), today))

		h, res, err = store.ToggleCompletion(ctx, user.ID, habit.ID, today, today)
		require.NoError(t, err)
		assert.Equal(t, tracking.Removed, res)
		assert.Equal(t, 0, h.CompletionSet().Len())

		reloaded, err := store.Get(ctx, user.ID, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.CompletionSet().Len())
	})

	t.Run("future date is ignored", func(t *testing.T) {
		h, res, err := store.ToggleCompletion(ctx, user.ID, habit.ID, "2024-01-11", today)
		require.NoError(t, err)
		assert.Equal(t, tracking.Unchanged, res)
		assert.False(t, h.CompletionSet().Has("2024-01-11"))
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		_, _, err := store.ToggleCompletion(ctx, user.ID, habit.ID, "01/10/2024", today)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date", verr.Field)
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		for _, d := range []string{"2024-01-08", "2024-01-09", today} {
			_, _, err := store.ToggleCompletion(ctx, user.ID, habit.ID, d, today)
			require.NoError(t, err)
		}
		h, err := store.Get(ctx, user.ID, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, tracking.Streak(h.CompletionSet(), today))

		h, _, err = store.ToggleCompletion(ctx, user.ID, habit.ID, "2024-01-09", today)
		require.NoError(t, err)
		assert.Equal(t, 1, tracking.Streak(h.CompletionSet(), today))
	})

	t.Run("touches updated_at", func(t *testing.T) {
		before, err := store.Get(ctx, user.ID, habit.ID)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		after, _, err := store.ToggleCompletion(ctx, user.ID, habit.ID, "2024-01-01", today)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})
}

func TestHabitStore_Summary(t *testing.T) {
	db := setupTestDB(t)
	store := NewHabitStore(db)
	ctx := context.Background()
	user := createUser(t, db, "alice")

	empty, err := store.Summary(ctx, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, tracking.Summary{CategoryCounts: map[string]int{}}, empty)

	inputs := []models.CreateHabitInput{
		{Name: "Run", Category: models.CategoryHealth},
		{Name: "Stretch", Category: models.CategoryHealth},
		{Name: "Read", Category: models.CategoryLearning},
	}
	var ids []string
	for _, in := range inputs {
		h, err := store.Create(ctx, user.ID, in)
		require.NoError(t, err)
		ids = append(ids, h.ID)
	}
	for _, d := range []string{"2024-01-09", today} {
		_, _, err := store.ToggleCompletion(ctx, user.ID, ids[0], d, today)
		require.NoError(t, err)
	}
	_, _, err = store.ToggleCompletion(ctx, user.ID, ids[2], today, today)
	require.NoError(t, err)

	sum, err := store.Summary(ctx, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalHabits)
	assert.Equal(t, 2, sum.CompletedToday)
	assert.Equal(t, 3, sum.TotalCompletions)
	assert.Equal(t, 2, sum.MaxStreak)
	assert.Equal(t, map[string]int{"health": 2, "learning": 1}, sum.CategoryCounts)
}
