package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"habitual/database"
	"habitual/models"
	"habitual/services"
	"habitual/tracking"
)

const maxCalendarDays = 365

type ToggleResponse struct {
	models.HabitResponse
	Toggled tracking.ToggleResult `json:"toggled"`
}

type CalendarResponse struct {
	HabitID string         `json:"habitId"`
	Today   string         `json:"today"`
	Days    []tracking.Day `json:"days"`
}

// requestScope loads the caller and resolves today in their timezone
func requestScope(c *fiber.Ctx) (*models.User, string, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, "", err
	}
	return user, tracking.Today(time.Now(), user.Location()), nil
}

func habitStore() *services.HabitStore {
	return services.NewHabitStore(database.DB)
}

// ListHabits returns the caller's habits, newest first
func ListHabits(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	habits, err := habitStore().List(c.UserContext(), user.ID, services.ListFilter{
		Frequency: models.Frequency(c.Query("frequency")),
		Category:  models.Category(c.Query("category")),
	})
	if err != nil {
		return storeError(c, err)
	}

	responses := make([]models.HabitResponse, len(habits))
	for i := range habits {
		responses[i] = habits[i].ToResponse(today, user.StatsWindowDays)
	}
	return c.JSON(responses)
}

func GetHabit(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	habit, err := habitStore().Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(habit.ToResponse(today, user.StatsWindowDays))
}

func CreateHabit(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	var input models.CreateHabitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	habit, err := habitStore().Create(c.UserContext(), user.ID, input)
	if err != nil {
		return storeError(c, err)
	}

	resp := habit.ToResponse(today, user.StatsWindowDays)
	services.LogActivity(database.DB, services.HabitActivity(user.ID, models.ActivityHabitCreate, habit, "", c.IP()))
	services.Events.Publish(user.ID, services.Event{Type: services.EventHabitCreated, HabitID: habit.ID, Habit: &resp})

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func UpdateHabit(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	var input models.UpdateHabitInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	habit, err := habitStore().Update(c.UserContext(), user.ID, c.Params("id"), input)
	if err != nil {
		return storeError(c, err)
	}

	resp := habit.ToResponse(today, user.StatsWindowDays)
	services.LogActivity(database.DB, services.HabitActivity(user.ID, models.ActivityHabitUpdate, habit, "", c.IP()))
	services.Events.Publish(user.ID, services.Event{Type: services.EventHabitUpdated, HabitID: habit.ID, Habit: &resp})

	return c.JSON(resp)
}

func DeleteHabit(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	habit, err := habitStore().Delete(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	services.LogActivity(database.DB, services.HabitActivity(user.ID, models.ActivityHabitDelete, habit, "", c.IP()))
	services.Events.Publish(user.ID, services.Event{Type: services.EventHabitDeleted, HabitID: habit.ID})

	return c.JSON(fiber.Map{
		"message": "Habit deleted successfully",
	})
}

// ToggleCompletion flips one day on or off; future days are left untouched
func ToggleCompletion(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	var input models.ToggleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	habit, result, err := habitStore().ToggleCompletion(c.UserContext(), user.ID, c.Params("id"), input.Date, today)
	if err != nil {
		return storeError(c, err)
	}

	resp := habit.ToResponse(today, user.StatsWindowDays)
	if result != tracking.Unchanged {
		action := models.ActivityCompletionAdd
		if result == tracking.Removed {
			action = models.ActivityCompletionRemove
		}
		services.LogActivity(database.DB, services.HabitActivity(user.ID, action, habit, input.Date, c.IP()))
		services.Events.Publish(user.ID, services.Event{
			Type:    services.EventCompletionToggle,
			HabitID: habit.ID,
			Habit:   &resp,
			Date:    input.Date,
			Toggled: string(result),
		})
	}

	return c.JSON(ToggleResponse{HabitResponse: resp, Toggled: result})
}

// GetCalendar returns the trailing window of days for one habit
func GetCalendar(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	days := c.QueryInt("days", tracking.DefaultWindowDays)
	if days < 1 || days > maxCalendarDays {
		return fieldError(c, "days", fmt.Sprintf("Days must be between 1 and %d", maxCalendarDays))
	}

	habit, err := habitStore().Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(CalendarResponse{
		HabitID: habit.ID,
		Today:   today,
		Days:    tracking.Calendar(habit.CompletionSet(), today, days),
	})
}

// GetStatsSummary aggregates every habit the caller owns
func GetStatsSummary(c *fiber.Ctx) error {
	user, today, err := requestScope(c)
	if err != nil {
		return userError(c, err)
	}

	summary, err := habitStore().Summary(c.UserContext(), user.ID, today)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(summary)
}
