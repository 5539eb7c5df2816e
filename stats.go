package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"habitual/database"
	"habitual/models"
	"habitual/services"
	"habitual/tracking"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18)
	valueStyle = lipgloss.NewStyle().Bold(true)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func statsCmd() *cobra.Command {
	var (
		username string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's habit statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}

			var user models.User
			if err := database.DB.Where("username = ?", username).First(&user).Error; err != nil {
				return fmt.Errorf("user %q not found", username)
			}

			today := date
			if today == "" {
				today = tracking.Today(time.Now(), user.Location())
			} else if !tracking.ValidDay(today) {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
			}

			store := services.NewHabitStore(database.DB)
			habits, err := store.List(cmd.Context(), user.ID, services.ListFilter{})
			if err != nil {
				return err
			}
			summary, err := store.Summary(cmd.Context(), user.ID, today)
			if err != nil {
				return err
			}

			renderStats(cmd.OutOrStdout(), &user, today, habits, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account to report on")
	cmd.Flags().StringVar(&date, "date", "", "day to treat as today (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func renderStats(w io.Writer, user *models.User, today string, habits []models.Habit, summary tracking.Summary) {
	row := func(label string, value interface{}) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(value)))
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s · %s", user.DisplayName, today)),
		row("Habits", summary.TotalHabits),
		row("Completed today", fmt.Sprintf("%d/%d", summary.CompletedToday, summary.TotalHabits)),
		row("Total check-ins", summary.TotalCompletions),
		row("Best streak", summary.MaxStreak),
	}

	categories := make([]string, 0, len(summary.CategoryCounts))
	for c := range summary.CategoryCounts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		lines = append(lines, row("  "+c, summary.CategoryCounts[c]))
	}

	if len(habits) > 0 {
		lines = append(lines, "")
	}
	for i := range habits {
		resp := habits[i].ToResponse(today, user.StatsWindowDays)
		mark := " "
		if habits[i].CompletionSet().Has(today) {
			mark = doneStyle.Render("✓")
		}
		lines = append(lines, fmt.Sprintf("%s %-24s streak %-3d rate %3d%%", mark, resp.Name, resp.Streak, resp.CompletionRate))
	}

	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
