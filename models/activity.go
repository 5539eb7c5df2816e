package models

import (
	"time"
)

type ActivityAction string

const (
	ActivityRegister         ActivityAction = "register"
	ActivityLogin            ActivityAction = "login"
	ActivityHabitCreate      ActivityAction = "habit_create"
	ActivityHabitUpdate      ActivityAction = "habit_update"
	ActivityHabitDelete      ActivityAction = "habit_delete"
	ActivityCompletionAdd    ActivityAction = "completion_add"
	ActivityCompletionRemove ActivityAction = "completion_remove"
	ActivityBackupExport     ActivityAction = "backup_export"
	ActivityBackupUpload     ActivityAction = "backup_upload"
)

var ActivityActions = []ActivityAction{
	ActivityRegister,
	ActivityLogin,
	ActivityHabitCreate,
	ActivityHabitUpdate,
	ActivityHabitDelete,
	ActivityCompletionAdd,
	ActivityCompletionRemove,
	ActivityBackupExport,
	ActivityBackupUpload,
}

// Activity is one entry of a user's own audit trail
type Activity struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"userId"`
	Action    ActivityAction `gorm:"index" json:"action"`
	HabitID   *string        `gorm:"index;size:36" json:"habitId,omitempty"`
	HabitName string         `json:"habitName,omitempty"`
	Details   string         `json:"details,omitempty"`
	IPAddress string         `json:"ipAddress"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}
