package models

import (
	"time"

	"gorm.io/gorm"
)

const DefaultTimezone = "UTC"

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;not null" json:"username"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName     string         `gorm:"not null" json:"displayName"`
	PasswordHash    string         `gorm:"not null" json:"-"`
	Timezone        string         `gorm:"not null;default:UTC" json:"timezone"`
	StatsWindowDays int            `gorm:"not null;default:28" json:"statsWindowDays"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserResponse is the safe response format for users
type UserResponse struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	Timezone        string    `json:"timezone"`
	StatsWindowDays int       `json:"statsWindowDays"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Timezone:        u.Timezone,
		StatsWindowDays: u.StatsWindowDays,
		CreatedAt:       u.CreatedAt,
	}
}

// Location resolves the user's timezone, falling back to UTC
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RegisterInput is the sign-up payload
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// SettingsInput carries per-user preferences; nil fields are left alone
type SettingsInput struct {
	Timezone        *string `json:"timezone"`
	StatsWindowDays *int    `json:"statsWindowDays"`
}
