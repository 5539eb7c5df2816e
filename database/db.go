package database

import (
	"errors"
	"fmt"
	"strings"

	"habitual/config"
	"habitual/models"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured store and migrates the schema
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		dialector = sqlite.Open(sqliteDSN(cfg.DatabasePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the app uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Habit{}, &models.Completion{}, &models.Activity{})
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Connect opens the database from the global config and stores it in DB
func Connect() error {
	db, err := Open(config.GetConfig())
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// sqliteDSN turns on foreign keys and waits on locks instead of failing, since
// activity logging writes from background goroutines.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
