package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"habitual/logger"
	"habitual/middleware"
	"habitual/services"
)

func fieldError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"field": field,
	})
}

func serverError(c *fiber.Ctx, msg string, err error) error {
	logger.Error(msg, "path", c.Path(), "user", middleware.GetUsername(c), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Server error",
	})
}

// userError maps a failed account lookup. Only a missing account is an auth
// failure; anything else is a storage fault.
func userError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	return serverError(c, "failed to load user", err)
}

// storeError maps a habit store failure onto a response
func storeError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return fieldError(c, verr.Field, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Habit not found",
		})
	default:
		return serverError(c, "habit store failure", err)
	}
}
