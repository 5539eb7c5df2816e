package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"habitual/database"
	"habitual/logger"
	"habitual/models"
)

type UserSettings struct {
	Timezone        string `json:"timezone"`
	StatsWindowDays int    `json:"statsWindowDays"`
}

func settingsOf(u *models.User) UserSettings {
	return UserSettings{Timezone: u.Timezone, StatsWindowDays: u.StatsWindowDays}
}

// GetSettings returns the caller's preferences
func GetSettings(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(settingsOf(user))
}

// UpdateSettings changes the timezone used for "today" and the completion rate window
func UpdateSettings(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return userError(c, err)
	}

	var input models.SettingsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if input.Timezone != nil {
		tz := strings.TrimSpace(*input.Timezone)
		if tz == "" {
			return fieldError(c, "timezone", "Timezone is required")
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return fieldError(c, "timezone", "Unknown timezone")
		}
		updates["timezone"] = tz
		user.Timezone = tz
	}
	if input.StatsWindowDays != nil {
		if *input.StatsWindowDays < 1 || *input.StatsWindowDays > maxCalendarDays {
			return fieldError(c, "statsWindowDays", "Stats window must be between 1 and 365 days")
		}
		updates["stats_window_days"] = *input.StatsWindowDays
		user.StatsWindowDays = *input.StatsWindowDays
	}

	if len(updates) > 0 {
		if result := database.DB.Model(&models.User{ID: user.ID}).Updates(updates); result.Error != nil {
			logger.Error("failed to save settings", "user", user.ID, "err", result.Error)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save settings",
			})
		}
	}

	return c.JSON(settingsOf(user))
}
