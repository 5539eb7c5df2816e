package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitual/config"
	"habitual/models"
)

func TestOpenMigratesSQLite(t *testing.T) {
	db, err := Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabasePath:   filepath.Join(t.TempDir(), "habitual.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []interface{}{&models.User{}, &models.Habit{}, &models.Completion{}, &models.Activity{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}

	first := &models.User{Username: "alice", Email: "alice@example.com", DisplayName: "Alice", PasswordHash: "x"}
	require.NoError(t, db.Create(first).Error)

	dupName := &models.User{Username: "alice", Email: "other@example.com", DisplayName: "Alice", PasswordHash: "x"}
	err = db.Create(dupName).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "got %v", err)

	dupDay := db.Create(&models.Completion{HabitID: "missing", Day: "2024-01-01"}).Error
	assert.False(t, IsDuplicate(dupDay), "foreign key failure is not a duplicate")
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.False(t, IsDuplicate(errors.New("connection refused")))
	assert.True(t, IsDuplicate(errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)")))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("/tmp/a.db"))
	assert.Equal(t, "/tmp/a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("/tmp/a.db?mode=rwc"))
}
