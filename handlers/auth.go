package handlers

import (
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"habitual/config"
	"habitual/database"
	"habitual/logger"
	"habitual/middleware"
	"habitual/models"
	"habitual/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Register creates an account and signs the user in
func Register(c *fiber.Ctx) error {
	var input models.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	if len(input.Username) < 3 {
		return fieldError(c, "username", "Username must be at least 3 characters")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fieldError(c, "email", "Valid email is required")
	}
	if len(input.Password) < 8 {
		return fieldError(c, "password", "Password must be at least 8 characters")
	}
	if input.DisplayName == "" {
		return fieldError(c, "displayName", "Display name is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	user := models.User{
		Username:        input.Username,
		Email:           input.Email,
		DisplayName:     input.DisplayName,
		PasswordHash:    string(hashedPassword),
		Timezone:        models.DefaultTimezone,
		StatsWindowDays: 28,
	}
	// The unique indexes decide; soft-deleted accounts still hold their names
	if result := database.DB.Create(&user); result.Error != nil {
		if database.IsDuplicate(result.Error) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Username or email already exists",
			})
		}
		logger.Error("failed to create user", "username", user.Username, "err", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	token, err := issueToken(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	services.LogActivity(database.DB, models.Activity{
		UserID:    user.ID,
		Action:    models.ActivityRegister,
		IPAddress: c.IP(),
	})

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// Login authenticates a user and returns a JWT token
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var user models.User
	if result := database.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&user); result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := issueToken(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	services.LogActivity(database.DB, models.Activity{
		UserID:    user.ID,
		Action:    models.ActivityLogin,
		IPAddress: c.IP(),
	})

	return c.JSON(AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// GetCurrentUser returns the currently authenticated user
func GetCurrentUser(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(user.ToResponse())
}

func issueToken(user *models.User) (string, error) {
	cfg := config.GetConfig()
	hours := cfg.SessionDurationHours
	if hours < 1 {
		hours = 24
	}
	return middleware.GenerateToken(user, cfg.JWTSecret, time.Duration(hours)*time.Hour)
}

// currentUser loads the account behind the request's token
func currentUser(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := database.DB.WithContext(c.UserContext()).First(&user, middleware.GetUserID(c)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
