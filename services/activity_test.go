package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitual/models"
)

func TestListActivity(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	habit := &models.Habit{ID: "h-1", Name: "Read"}

	for i := 0; i < 3; i++ {
		require.NoError(t, LogActivitySync(db, HabitActivity(alice.ID, models.ActivityCompletionAdd, habit, today, "127.0.0.1")))
	}
	require.NoError(t, LogActivitySync(db, models.Activity{UserID: alice.ID, Action: models.ActivityLogin}))
	require.NoError(t, LogActivitySync(db, models.Activity{UserID: bob.ID, Action: models.ActivityLogin}))

	page, err := ListActivity(db, alice.ID, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Activity, 2)
	assert.Equal(t, models.ActivityLogin, page.Activity[0].Action, "newest first")

	page, err = ListActivity(db, alice.ID, string(models.ActivityCompletionAdd), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Activity, 1)
	assert.Equal(t, "Read", page.Activity[0].HabitName)
	require.NotNil(t, page.Activity[0].HabitID)
	assert.Equal(t, "h-1", *page.Activity[0].HabitID)

	page, err = ListActivity(db, bob.ID, "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Activity, 1)
}
