// AngelaMos | 2026
// repository.go

package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	GlobalLeaders(ctx context.Context, limit int) ([]GlobalEntry, error)
	GlobalTotal(ctx context.Context) (int, error)
	CompletionLeaders(
		ctx context.Context,
		limit int,
		since time.Time,
	) ([]CompletionEntry, error)
	BadgeLeaders(ctx context.Context, limit int) ([]BadgeEntry, error)
	UserBestStreak(ctx context.Context, userID string) (int, error)
	UsersWithBetterStreak(ctx context.Context, bestStreak int) (int, error)
	UserSummary(
		ctx context.Context,
		userID string,
		monthStart time.Time,
	) (*SummaryRow, error)
}

type GlobalEntry struct {
	UserID        string `db:"user_id"`
	Email         string `db:"email"`
	Name          string `db:"name"`
	BestStreak    int    `db:"best_streak"`
	HabitCount    int    `db:"habit_count"`
	ActiveStreaks int    `db:"active_streaks"`
	BadgeCount    int    `db:"badge_count"`
}

type CompletionEntry struct {
	UserID          string `db:"user_id"`
	Email           string `db:"email"`
	Name            string `db:"name"`
	CompletionCount int    `db:"completion_count"`
	UniqueHabits    int    `db:"unique_habits"`
	BadgeCount      int    `db:"badge_count"`
}

type BadgeEntry struct {
	UserID     string `db:"user_id"`
	Email      string `db:"email"`
	Name       string `db:"name"`
	BadgeCount int    `db:"badge_count"`
	BestStreak int    `db:"best_streak"`
}

type SummaryRow struct {
	BestStreak         int `db:"best_streak"`
	ActiveStreaks      int `db:"active_streaks"`
	TotalCompletions   int `db:"total_completions"`
	MonthlyCompletions int `db:"monthly_completions"`
	BadgeCount         int `db:"badge_count"`
	HabitCount         int `db:"habit_count"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// bestStreakPerUser ranks each user by the best of current and longest
// streak across non-archived habits, matching the award predicates.
const bestStreakPerUser = `
	SELECT h.user_id,
	       MAX(GREATEST(h.streak_count, h.longest_streak)) AS best_streak,
	       COUNT(h.id) AS habit_count,
	       COUNT(*) FILTER (WHERE h.streak_count > 0) AS active_streaks
	FROM habits h
	WHERE h.archived = FALSE
	GROUP BY h.user_id`

func (r *repository) GlobalLeaders(
	ctx context.Context,
	limit int,
) ([]GlobalEntry, error) {
	query := fmt.Sprintf(`
		SELECT u.id AS user_id, u.email, u.name,
		       s.best_streak, s.habit_count, s.active_streaks,
		       COUNT(ub.id) AS badge_count
		FROM users u
		JOIN (%s) s ON s.user_id = u.id
		LEFT JOIN user_badges ub ON ub.user_id = u.id
		WHERE u.deleted_at IS NULL AND s.best_streak > 0
		GROUP BY u.id, u.email, u.name,
		         s.best_streak, s.habit_count, s.active_streaks
		ORDER BY s.best_streak DESC, s.active_streaks DESC, s.habit_count DESC
		LIMIT $1`, bestStreakPerUser)

	var entries []GlobalEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("global leaders: %w", err)
	}

	return entries, nil
}

func (r *repository) GlobalTotal(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM users u
		JOIN (%s) s ON s.user_id = u.id
		WHERE u.deleted_at IS NULL AND s.best_streak > 0`, bestStreakPerUser)

	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("global total: %w", err)
	}

	return total, nil
}

func (r *repository) CompletionLeaders(
	ctx context.Context,
	limit int,
	since time.Time,
) ([]CompletionEntry, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.name,
		       COUNT(cl.id) AS completion_count,
		       COUNT(DISTINCT cl.habit_id) AS unique_habits,
		       COUNT(DISTINCT ub.id) AS badge_count
		FROM users u
		JOIN habits h ON h.user_id = u.id
		JOIN completion_logs cl ON cl.habit_id = h.id
		LEFT JOIN user_badges ub ON ub.user_id = u.id
		WHERE u.deleted_at IS NULL AND cl.created_at >= $2
		GROUP BY u.id, u.email, u.name
		ORDER BY completion_count DESC
		LIMIT $1`

	var entries []CompletionEntry
	err := r.db.SelectContext(ctx, &entries, query, limit, since)
	if err != nil {
		return nil, fmt.Errorf("completion leaders: %w", err)
	}

	return entries, nil
}

func (r *repository) BadgeLeaders(
	ctx context.Context,
	limit int,
) ([]BadgeEntry, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.name,
		       COUNT(DISTINCT ub.id) AS badge_count,
		       COALESCE(
		           MAX(GREATEST(h.streak_count, h.longest_streak)), 0
		       ) AS best_streak
		FROM users u
		LEFT JOIN user_badges ub ON ub.user_id = u.id
		LEFT JOIN habits h ON h.user_id = u.id
		WHERE u.deleted_at IS NULL
		GROUP BY u.id, u.email, u.name
		HAVING COUNT(DISTINCT ub.id) > 0
		ORDER BY badge_count DESC, best_streak DESC
		LIMIT $1`

	var entries []BadgeEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("badge leaders: %w", err)
	}

	return entries, nil
}

func (r *repository) UserBestStreak(
	ctx context.Context,
	userID string,
) (int, error) {
	query := `
		SELECT COALESCE(MAX(GREATEST(streak_count, longest_streak)), 0)
		FROM habits
		WHERE user_id = $1 AND archived = FALSE`

	var best int
	err := r.db.GetContext(ctx, &best, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("user best streak: %w", err)
	}

	return best, nil
}

func (r *repository) UsersWithBetterStreak(
	ctx context.Context,
	bestStreak int,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM (
			SELECT h.user_id
			FROM habits h
			JOIN users u ON u.id = h.user_id
			WHERE h.archived = FALSE AND u.deleted_at IS NULL
			GROUP BY h.user_id
			HAVING MAX(GREATEST(h.streak_count, h.longest_streak)) > $1
		) better`

	var count int
	if err := r.db.GetContext(ctx, &count, query, bestStreak); err != nil {
		return 0, fmt.Errorf("users with better streak: %w", err)
	}

	return count, nil
}

func (r *repository) UserSummary(
	ctx context.Context,
	userID string,
	monthStart time.Time,
) (*SummaryRow, error) {
	query := `
		SELECT
			COALESCE((SELECT MAX(GREATEST(streak_count, longest_streak))
			          FROM habits
			          WHERE user_id = $1 AND archived = FALSE), 0) AS best_streak,
			(SELECT COUNT(*) FROM habits
			 WHERE user_id = $1 AND archived = FALSE
			   AND streak_count > 0) AS active_streaks,
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1) AS total_completions,
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1
			   AND cl.created_at >= $2) AS monthly_completions,
			(SELECT COUNT(*) FROM user_badges
			 WHERE user_id = $1) AS badge_count,
			(SELECT COUNT(*) FROM habits
			 WHERE user_id = $1 AND archived = FALSE) AS habit_count`

	var row SummaryRow
	if err := r.db.GetContext(ctx, &row, query, userID, monthStart); err != nil {
		return nil, fmt.Errorf("user summary: %w", err)
	}

	return &row, nil
}
