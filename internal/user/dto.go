// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
}

type UpdateSettingsRequest struct {
	Timezone              *string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	EmailRemindersEnabled *bool   `json:"email_reminders_enabled,omitempty"`
	WeeklyDigestEnabled   *bool   `json:"weekly_digest_enabled,omitempty"`
}

type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email,max=255"`
	Password string `json:"password"  validate:"required"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free monthly annual lifetime"`
}

type UserResponse struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Role                  string     `json:"role"`
	Timezone              string     `json:"timezone"`
	SubscriptionTier      string     `json:"subscription_tier"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	HabitLimit            int        `json:"habit_limit"`
	PremiumActive         bool       `json:"premium_active"`
	EmailRemindersEnabled bool       `json:"email_reminders_enabled"`
	WeeklyDigestEnabled   bool       `json:"weekly_digest_enabled"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Tier     string `json:"tier"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Role:                  u.Role,
		Timezone:              u.Timezone,
		SubscriptionTier:      u.SubscriptionTier,
		SubscriptionStatus:    u.SubscriptionStatus,
		SubscriptionEndDate:   u.SubscriptionEndDate,
		HabitLimit:            u.HabitLimit,
		PremiumActive:         u.IsPremiumActive(),
		EmailRemindersEnabled: u.EmailRemindersEnabled,
		WeeklyDigestEnabled:   u.WeeklyDigestEnabled,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
