// AngelaMos | 2026
// service.go

package badge

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// SeedCatalog upserts the static badge catalog. Run once at startup.
func (s *Service) SeedCatalog(ctx context.Context) error {
	return s.repo.Seed(ctx)
}

// CheckAndAward evaluates every unearned active badge for the user and
// awards those whose requirement is now met. db may be a transaction so the
// award lands atomically with the action that triggered it. Returns slugs of
// newly awarded badges.
func (s *Service) CheckAndAward(
	ctx context.Context,
	db core.DBTX,
	userID string,
	now time.Time,
) ([]string, error) {
	repo := NewRepository(db)

	unearned, err := repo.ListUnearned(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(unearned) == 0 {
		return nil, nil
	}

	progress, err := repo.ProgressSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := owner.LocalDate(now)

	var awarded []string
	for _, b := range unearned {
		met, err := s.requirementMet(ctx, repo, &b, progress, userID, today)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}

		inserted, err := repo.Award(ctx, userID, b.ID)
		if err != nil {
			return nil, err
		}
		if inserted {
			awarded = append(awarded, b.Slug)
			slog.Info("badge awarded", "user_id", userID, "badge", b.Slug)
		}
	}

	return awarded, nil
}

func (s *Service) requirementMet(
	ctx context.Context,
	repo Repository,
	b *Badge,
	progress *Progress,
	userID string,
	today time.Time,
) (bool, error) {
	if b.RequirementType == ReqPerfectWeek {
		return s.perfectRun(ctx, repo, userID, today, b.RequirementValue)
	}
	return RequirementMet(b.RequirementType, b.RequirementValue, progress), nil
}

// RequirementMet evaluates the counter-based predicates against a progress
// snapshot. Perfect-week is handled separately since it walks days.
func RequirementMet(
	requirementType string,
	requirementValue int,
	p *Progress,
) bool {
	switch requirementType {
	case ReqAnyCompletion, ReqTotalCompletions:
		return p.TotalCompletions >= requirementValue
	case ReqStreakDays:
		return p.MaxStreak >= requirementValue
	case ReqHabitsCreated:
		return p.HabitsCreated >= requirementValue
	case ReqEarlyCompletions:
		return p.EarlyCompletions >= requirementValue
	case ReqLateCompletions:
		return p.LateCompletions >= requirementValue
	case ReqChallengesJoined:
		return p.ChallengesJoined >= requirementValue
	case ReqChallengesCreated:
		return p.ChallengesCreated >= requirementValue
	default:
		return false
	}
}

// perfectRun checks that every active habit was completed on each of the
// last days consecutive local dates, ending today.
func (s *Service) perfectRun(
	ctx context.Context,
	repo Repository,
	userID string,
	today time.Time,
	days int,
) (bool, error) {
	for offset := 0; offset < days; offset++ {
		date := today.AddDate(0, 0, -offset)

		ok, err := repo.CompletedAllHabitsOn(ctx, userID, date)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func (s *Service) MyBadges(
	ctx context.Context,
	userID string,
) (*BadgesResponse, error) {
	earned, err := s.repo.ListEarned(ctx, userID)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	earnedIDs := make(map[string]struct{}, len(earned))
	resp := &BadgesResponse{
		Earned: make([]EarnedBadgeResponse, 0, len(earned)),
		Locked: make([]BadgeResponse, 0),
	}

	for _, e := range earned {
		earnedIDs[e.ID] = struct{}{}
		resp.Earned = append(resp.Earned, ToEarnedBadgeResponse(&e))
	}

	for _, b := range all {
		if _, ok := earnedIDs[b.ID]; !ok {
			resp.Locked = append(resp.Locked, ToBadgeResponse(&b))
		}
	}

	return resp, nil
}

func (s *Service) UnseenBadges(
	ctx context.Context,
	userID string,
) ([]EarnedBadgeResponse, error) {
	unseen, err := s.repo.ListUnseen(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]EarnedBadgeResponse, 0, len(unseen))
	for _, e := range unseen {
		resp = append(resp, ToEarnedBadgeResponse(&e))
	}

	return resp, nil
}

func (s *Service) MarkSeen(ctx context.Context, userID string) error {
	return s.repo.MarkSeen(ctx, userID)
}
