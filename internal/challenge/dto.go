// AngelaMos | 2026
// dto.go

package challenge

import (
	"time"
)

type CreateChallengeRequest struct {
	Name            string `json:"name"            validate:"required,min=1,max=100"`
	Description     string `json:"description"     validate:"max=500"`
	Icon            string `json:"icon"            validate:"max=16"`
	ChallengeType   string `json:"challenge_type"  validate:"required,oneof=competitive collaborative"`
	GoalType        string `json:"goal_type"       validate:"required,oneof=streak completions"`
	GoalTarget      *int   `json:"goal_target"     validate:"omitempty,min=1,max=10000"`
	MaxParticipants *int   `json:"max_participants" validate:"omitempty,min=2,max=1000"`
}

type UpdateChallengeRequest struct {
	Name            *string `json:"name"            validate:"omitempty,min=1,max=100"`
	Description     *string `json:"description"     validate:"omitempty,max=500"`
	Icon            *string `json:"icon"            validate:"omitempty,max=16"`
	ChallengeType   *string `json:"challenge_type"  validate:"omitempty,oneof=competitive collaborative"`
	GoalType        *string `json:"goal_type"       validate:"omitempty,oneof=streak completions"`
	GoalTarget      *int    `json:"goal_target"     validate:"omitempty,min=1,max=10000"`
	MaxParticipants *int    `json:"max_participants" validate:"omitempty,min=2,max=1000"`
}

type InviteRequest struct {
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"max=500"`
}

type LinkHabitRequest struct {
	HabitID      string `json:"habit_id"       validate:"omitempty,uuid"`
	NewHabitName string `json:"new_habit_name" validate:"omitempty,min=1,max=100"`
}

type ChallengeResponse struct {
	ID              string    `json:"id"`
	CreatorID       string    `json:"creator_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon"`
	ChallengeType   string    `json:"challenge_type"`
	GoalType        string    `json:"goal_type"`
	GoalTarget      *int      `json:"goal_target,omitempty"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	Status          string    `json:"status"`
	AllowInvites    bool      `json:"allow_invites"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ParticipantResponse struct {
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
}

type ActivityResponse struct {
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type MyChallengesResponse struct {
	Created []ChallengeResponse `json:"created"`
	Joined  []ChallengeResponse `json:"joined"`
}

// CollaborativeStats aggregates group progress for collaborative challenges.
type CollaborativeStats struct {
	TotalStreak       int     `json:"total_streak"`
	AverageStreak     float64 `json:"average_streak"`
	TotalCompletions  int     `json:"total_completions"`
	ParticipationRate float64 `json:"participation_rate"`
	ActiveToday       int     `json:"active_today"`
	TotalParticipants int     `json:"total_participants"`
}

type DetailResponse struct {
	Challenge          ChallengeResponse     `json:"challenge"`
	Participants       []ParticipantResponse `json:"participants"`
	LinkedHabitIDs     []string              `json:"linked_habit_ids"`
	RecentActivity     []ActivityResponse    `json:"recent_activity"`
	CollaborativeStats *CollaborativeStats   `json:"collaborative_stats,omitempty"`
}

type InviteResponse struct {
	Token     string    `json:"token"`
	InviteURL string    `json:"invite_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AcceptInviteResponse struct {
	Challenge ChallengeResponse `json:"challenge"`
	Rejoined  bool              `json:"rejoined"`
}

type LeaderboardEntryResponse struct {
	Rank             int        `json:"rank"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
}

type LeaderboardResponse struct {
	ChallengeID   string                     `json:"challenge_id"`
	ChallengeType string                     `json:"challenge_type"`
	Leaderboard   []LeaderboardEntryResponse `json:"leaderboard"`
}

func ToChallengeResponse(c *Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:              c.ID,
		CreatorID:       c.CreatorID,
		Name:            c.Name,
		Description:     c.Description,
		Icon:            c.Icon,
		ChallengeType:   c.ChallengeType,
		GoalType:        c.GoalType,
		GoalTarget:      c.GoalTarget,
		MaxParticipants: c.MaxParticipants,
		Status:          c.Status,
		AllowInvites:    c.AllowInvites,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
