package services

import (
	"gorm.io/gorm"

	"habitual/logger"
	"habitual/models"
)

// LogActivity records an entry for the user without blocking the request
func LogActivity(db *gorm.DB, entry models.Activity) {
	// Fire and forget - don't block on activity logging
	go func() {
		if err := db.Create(&entry).Error; err != nil {
			logger.Warn("failed to record activity", "action", entry.Action, "user", entry.UserID, "err", err)
		}
	}()
}

// LogActivitySync records an entry and reports the outcome
func LogActivitySync(db *gorm.DB, entry models.Activity) error {
	return db.Create(&entry).Error
}

// HabitActivity builds an entry that references a habit
func HabitActivity(userID uint, action models.ActivityAction, habit *models.Habit, details, ip string) models.Activity {
	id := habit.ID
	return models.Activity{
		UserID:    userID,
		Action:    action,
		HabitID:   &id,
		HabitName: habit.Name,
		Details:   details,
		IPAddress: ip,
	}
}

// ActivityPage is one page of a user's activity, newest first
type ActivityPage struct {
	Activity []models.Activity `json:"activity"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ListActivity pages through the user's own entries, optionally by action
func ListActivity(db *gorm.DB, userID uint, action string, page, limit int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := db.Model(&models.Activity{}).Where("user_id = ?", userID)
	if action != "" {
		query = query.Where("action = ?", action)
	}
	// Shared by the count and the page query
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	entries := []models.Activity{}
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}

	return &ActivityPage{Activity: entries, Total: total, Page: page, Limit: limit}, nil
}
