// AngelaMos | 2026
// dto.go

package habit

import (
	"time"
)

type CreateHabitRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Motivation  string `json:"motivation"  validate:"max=500"`
}

type UpdateHabitRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Motivation  *string `json:"motivation,omitempty"  validate:"omitempty,max=500"`
}

type HabitResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Motivation     string     `json:"motivation,omitempty"`
	StreakCount    int        `json:"streak_count"`
	LongestStreak  int        `json:"longest_streak"`
	LastCompleted  *time.Time `json:"last_completed,omitempty"`
	CompletedToday bool       `json:"completed_today"`
	Archived       bool       `json:"archived"`
	CreatedAt      time.Time  `json:"created_at"`
}

type DashboardResponse struct {
	Habits         []HabitResponse `json:"habits"`
	TotalHabits    int             `json:"total_habits"`
	ActiveStreaks  int             `json:"active_streaks"`
	LongestStreak  int             `json:"longest_streak"`
	CompletedToday int             `json:"completed_today"`
	HabitLimit     int             `json:"habit_limit"`
}

type CompleteResponse struct {
	Habit     HabitResponse `json:"habit"`
	Completed bool          `json:"completed"`
	NewBadges []string      `json:"new_badges,omitempty"`
}

type UndoResponse struct {
	Habit  HabitResponse `json:"habit"`
	Undone bool          `json:"undone"`
}

func ToHabitResponse(h *Habit, today time.Time) HabitResponse {
	return HabitResponse{
		ID:             h.ID,
		Name:           h.Name,
		Description:    h.Description,
		Motivation:     h.Motivation,
		StreakCount:    h.StreakCount,
		LongestStreak:  h.LongestStreak,
		LastCompleted:  h.LastCompleted,
		CompletedToday: h.CompletedOn(today),
		Archived:       h.Archived,
		CreatedAt:      h.CreatedAt,
	}
}
