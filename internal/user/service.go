// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/habitflow/internal/auth"
	"github.com/carterperez-dev/habitflow/internal/core"
)

type Service struct {
	repo           Repository
	freeHabitLimit int
	purgeAfterDays int
}

func NewService(repo Repository, freeHabitLimit, purgeAfterDays int) *Service {
	return &Service{
		repo:           repo,
		freeHabitLimit: freeHabitLimit,
		purgeAfterDays: purgeAfterDays,
	}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name, timezone string,
) (*auth.UserInfo, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf(
			"create user: invalid timezone %q: %w",
			timezone,
			core.ErrInvalidInput,
		)
	}

	user := &User{
		ID:                 uuid.New().String(),
		Email:              strings.ToLower(email),
		PasswordHash:       passwordHash,
		Name:               name,
		Role:               RoleUser,
		Timezone:           timezone,
		SubscriptionTier:   TierFree,
		SubscriptionStatus: SubStatusFree,
		HabitLimit:         s.freeHabitLimit,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf(
				"update user: invalid timezone %q: %w",
				*req.Timezone,
				core.ErrInvalidInput,
			)
		}
		user.Timezone = *req.Timezone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateSettings(
	ctx context.Context,
	id string,
	req UpdateSettingsRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf(
				"update settings: invalid timezone %q: %w",
				*req.Timezone,
				core.ErrInvalidInput,
			)
		}
		user.Timezone = *req.Timezone
	}

	if req.EmailRemindersEnabled != nil {
		user.EmailRemindersEnabled = *req.EmailRemindersEnabled
	}

	if req.WeeklyDigestEnabled != nil {
		user.WeeklyDigestEnabled = *req.WeeklyDigestEnabled
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ChangeEmail(
	ctx context.Context,
	id string,
	req ChangeEmailRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		req.Password,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("change email: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("change email: %w", core.ErrUnauthorized)
	}

	newEmail := strings.ToLower(req.NewEmail)
	if err := s.repo.UpdateEmail(ctx, id, newEmail); err != nil {
		return nil, err
	}

	user.Email = newEmail
	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserTier(
	ctx context.Context,
	id, tier string,
) (*User, error) {
	if !ValidTier(tier) {
		return nil, fmt.Errorf(
			"update tier: invalid tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	state := SubscriptionState{
		UserID:     id,
		Tier:       tier,
		Status:     SubStatusFree,
		HabitLimit: s.freeHabitLimit,
	}

	if PaidTier(tier) {
		now := time.Now()
		state.Status = SubStatusActive
		state.StartDate = &now
		state.HabitLimit = UnlimitedHabits
		if tier != TierLifetime {
			end := now.AddDate(0, 0, tierDurationDays(tier))
			state.EndDate = &end
		}
	}

	if err := s.repo.ApplySubscription(ctx, state); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, user.ID)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	purgeAfter := time.Now().AddDate(0, 0, s.purgeAfterDays)
	return s.repo.SoftDelete(ctx, id, purgeAfter)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.DeleteUser(ctx, userID)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}

func tierDurationDays(tier string) int {
	if tier == TierAnnual {
		return 365
	}
	return 30
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Tier:         u.SubscriptionTier,
		TokenVersion: u.TokenVersion,
	}
}

var _ auth.UserProvider = (*Service)(nil)
