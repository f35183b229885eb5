// AngelaMos | 2026
// service.go

package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Service struct {
	repo     Repository
	redis    *redis.Client
	cacheTTL time.Duration
	pageSize int
}

func NewService(
	repo Repository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	pageSize int,
) *Service {
	return &Service{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		pageSize: pageSize,
	}
}

type GlobalResponse struct {
	Leaders    []GlobalLeader `json:"leaders"`
	UserRank   *int           `json:"user_rank,omitempty"`
	TotalUsers int            `json:"total_users"`
	Type       string         `json:"leaderboard_type"`
}

type GlobalLeader struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	BestStreak    int    `json:"best_streak"`
	HabitCount    int    `json:"habit_count"`
	ActiveStreaks int    `json:"active_streaks"`
	BadgeCount    int    `json:"badge_count"`
	IsCurrentUser bool   `json:"is_current_user,omitempty"`
}

type CompletionsResponse struct {
	Leaders    []CompletionLeader `json:"leaders"`
	TotalUsers int                `json:"total_users"`
	Type       string             `json:"leaderboard_type"`
	TimeRange  string             `json:"time_range"`
}

type CompletionLeader struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	CompletionCount int    `json:"completion_count"`
	UniqueHabits    int    `json:"unique_habits"`
	BadgeCount      int    `json:"badge_count"`
}

type BadgesResponse struct {
	Leaders    []BadgeLeader `json:"leaders"`
	TotalUsers int           `json:"total_users"`
	Type       string        `json:"leaderboard_type"`
}

type BadgeLeader struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	BadgeCount int    `json:"badge_count"`
	BestStreak int    `json:"best_streak"`
}

type UserStatsResponse struct {
	BestStreak         int  `json:"best_streak"`
	ActiveStreaks      int  `json:"active_streaks"`
	TotalCompletions   int  `json:"total_completions"`
	MonthlyCompletions int  `json:"monthly_completions"`
	BadgeCount         int  `json:"badge_count"`
	GlobalRank         *int `json:"global_rank,omitempty"`
	Percentile         int  `json:"percentile"`
	HabitCount         int  `json:"habit_count"`
}

// Global returns the streak leaderboard. The board itself is cached; the
// requesting user's rank and highlight are layered on per request.
func (s *Service) Global(
	ctx context.Context,
	currentUserID string,
) (*GlobalResponse, error) {
	var resp GlobalResponse

	if !s.fromCache(ctx, "leaderboard:global", &resp) {
		entries, err := s.repo.GlobalLeaders(ctx, s.pageSize)
		if err != nil {
			return nil, err
		}

		total, err := s.repo.GlobalTotal(ctx)
		if err != nil {
			return nil, err
		}

		resp = GlobalResponse{
			Leaders:    make([]GlobalLeader, 0, len(entries)),
			TotalUsers: total,
			Type:       "global",
		}
		for i, e := range entries {
			resp.Leaders = append(resp.Leaders, GlobalLeader{
				Rank:          i + 1,
				UserID:        e.UserID,
				Name:          displayName(e.Name, e.Email),
				BestStreak:    e.BestStreak,
				HabitCount:    e.HabitCount,
				ActiveStreaks: e.ActiveStreaks,
				BadgeCount:    e.BadgeCount,
			})
		}

		s.toCache(ctx, "leaderboard:global", &resp)
	}

	if currentUserID != "" {
		for i := range resp.Leaders {
			if resp.Leaders[i].UserID == currentUserID {
				resp.Leaders[i].IsCurrentUser = true
				rank := resp.Leaders[i].Rank
				resp.UserRank = &rank
			}
		}

		if resp.UserRank == nil {
			rank, err := s.UserRank(ctx, currentUserID)
			if err != nil {
				return nil, err
			}
			resp.UserRank = rank
		}
	}

	return &resp, nil
}

func (s *Service) Completions(
	ctx context.Context,
	days int,
) (*CompletionsResponse, error) {
	if days <= 0 {
		days = 30
	}

	cacheKey := fmt.Sprintf("leaderboard:completions:%d", days)

	var resp CompletionsResponse
	if s.fromCache(ctx, cacheKey, &resp) {
		return &resp, nil
	}

	since := time.Now().AddDate(0, 0, -days)
	entries, err := s.repo.CompletionLeaders(ctx, s.pageSize, since)
	if err != nil {
		return nil, err
	}

	resp = CompletionsResponse{
		Leaders:    make([]CompletionLeader, 0, len(entries)),
		TotalUsers: len(entries),
		Type:       "completions",
		TimeRange:  fmt.Sprintf("%d days", days),
	}
	for i, e := range entries {
		resp.Leaders = append(resp.Leaders, CompletionLeader{
			Rank:            i + 1,
			UserID:          e.UserID,
			Name:            displayName(e.Name, e.Email),
			CompletionCount: e.CompletionCount,
			UniqueHabits:    e.UniqueHabits,
			BadgeCount:      e.BadgeCount,
		})
	}

	s.toCache(ctx, cacheKey, &resp)
	return &resp, nil
}

func (s *Service) Badges(ctx context.Context) (*BadgesResponse, error) {
	var resp BadgesResponse
	if s.fromCache(ctx, "leaderboard:badges", &resp) {
		return &resp, nil
	}

	entries, err := s.repo.BadgeLeaders(ctx, s.pageSize)
	if err != nil {
		return nil, err
	}

	resp = BadgesResponse{
		Leaders:    make([]BadgeLeader, 0, len(entries)),
		TotalUsers: len(entries),
		Type:       "badges",
	}
	for i, e := range entries {
		resp.Leaders = append(resp.Leaders, BadgeLeader{
			Rank:       i + 1,
			UserID:     e.UserID,
			Name:       displayName(e.Name, e.Email),
			BadgeCount: e.BadgeCount,
			BestStreak: e.BestStreak,
		})
	}

	s.toCache(ctx, "leaderboard:badges", &resp)
	return &resp, nil
}

// UserRank is 1 + the number of users holding a strictly better best streak.
// Users with no streak at all are unranked.
func (s *Service) UserRank(
	ctx context.Context,
	userID string,
) (*int, error) {
	best, err := s.repo.UserBestStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	if best == 0 {
		return nil, nil
	}

	better, err := s.repo.UsersWithBetterStreak(ctx, best)
	if err != nil {
		return nil, err
	}

	rank := better + 1
	return &rank, nil
}

func (s *Service) UserStats(
	ctx context.Context,
	userID string,
) (*UserStatsResponse, error) {
	now := time.Now().UTC()
	monthStart := time.Date(
		now.Year(), now.Month(), 1,
		0, 0, 0, 0, time.UTC,
	)

	row, err := s.repo.UserSummary(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	rank, err := s.UserRank(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.GlobalTotal(ctx)
	if err != nil {
		return nil, err
	}

	resp := &UserStatsResponse{
		BestStreak:         row.BestStreak,
		ActiveStreaks:      row.ActiveStreaks,
		TotalCompletions:   row.TotalCompletions,
		MonthlyCompletions: row.MonthlyCompletions,
		BadgeCount:         row.BadgeCount,
		GlobalRank:         rank,
		HabitCount:         row.HabitCount,
	}

	if rank != nil {
		resp.Percentile = Percentile(*rank, total)
	}

	return resp, nil
}

// Percentile places rank 1 of N at 100.
func Percentile(rank, total int) int {
	if total == 0 {
		return 0
	}
	return (total - rank + 1) * 100 / total
}

// displayName falls back to the local part of the email for accounts
// that never set a name.
func displayName(name, email string) string {
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func (s *Service) fromCache(ctx context.Context, key string, dest any) bool {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		slog.Warn("leaderboard cache decode failed", "key", key, "error", err)
		return false
	}

	return true
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		slog.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
}
