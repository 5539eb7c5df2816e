package handlers

import (
	"github.com/gofiber/fiber/v2"

	"habitual/database"
	"habitual/logger"
	"habitual/middleware"
	"habitual/models"
	"habitual/services"
)

// ListActivity returns the caller's own activity, newest first
func ListActivity(c *fiber.Ctx) error {
	page, err := services.ListActivity(
		database.DB.WithContext(c.UserContext()),
		middleware.GetUserID(c),
		c.Query("action"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 50),
	)
	if err != nil {
		logger.Error("failed to fetch activity", "user", middleware.GetUserID(c), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activity",
		})
	}
	return c.JSON(page)
}

// GetActivityActions returns available actions for filtering
func GetActivityActions(c *fiber.Ctx) error {
	actions := make([]string, len(models.ActivityActions))
	for i, a := range models.ActivityActions {
		actions[i] = string(a)
	}
	return c.JSON(actions)
}
