// AngelaMos | 2026
// repository.go

package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	Seed(ctx context.Context) error
	ListActive(ctx context.Context) ([]Badge, error)
	ListUnearned(ctx context.Context, userID string) ([]Badge, error)
	ListEarned(ctx context.Context, userID string) ([]EarnedBadge, error)
	Award(ctx context.Context, userID, badgeID string) (bool, error)
	ListUnseen(ctx context.Context, userID string) ([]EarnedBadge, error)
	MarkSeen(ctx context.Context, userID string) error

	ProgressSnapshot(ctx context.Context, userID string) (*Progress, error)
	CompletedAllHabitsOn(
		ctx context.Context,
		userID string,
		date time.Time,
	) (bool, error)
}

type EarnedBadge struct {
	Badge
	EarnedAt         time.Time `db:"earned_at"`
	NotificationSeen bool      `db:"notification_seen"`
}

// Progress holds every per-user counter the predicates need, gathered once
// per award pass. Perfect-week is checked separately because it walks days.
type Progress struct {
	TotalCompletions  int `db:"total_completions"`
	MaxStreak         int `db:"max_streak"`
	HabitsCreated     int `db:"habits_created"`
	EarlyCompletions  int `db:"early_completions"`
	LateCompletions   int `db:"late_completions"`
	ChallengesJoined  int `db:"challenges_joined"`
	ChallengesCreated int `db:"challenges_created"`
	ActiveHabits      int `db:"active_habits"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Seed(ctx context.Context) error {
	query := `
		INSERT INTO badges (id, name, slug, description, icon, color, category,
		                    requirement_type, requirement_value, rarity,
		                    display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			color = EXCLUDED.color,
			category = EXCLUDED.category,
			requirement_type = EXCLUDED.requirement_type,
			requirement_value = EXCLUDED.requirement_value,
			rarity = EXCLUDED.rarity,
			display_order = EXCLUDED.display_order,
			is_active = TRUE`

	for _, def := range Catalog {
		_, err := r.db.ExecContext(ctx, query,
			uuid.New().String(),
			def.Name,
			def.Slug,
			def.Description,
			def.Icon,
			def.Color,
			def.Category,
			def.RequirementType,
			def.RequirementValue,
			def.Rarity,
			def.DisplayOrder,
		)
		if err != nil {
			return fmt.Errorf("seed badge %s: %w", def.Slug, err)
		}
	}

	return nil
}

const badgeColumns = `id, name, slug, description, icon, color, category,
	requirement_type, requirement_value, rarity, display_order, is_active,
	created_at`

func (r *repository) ListActive(ctx context.Context) ([]Badge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM badges
		WHERE is_active = TRUE
		ORDER BY display_order`, badgeColumns)

	var badges []Badge
	if err := r.db.SelectContext(ctx, &badges, query); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	return badges, nil
}

func (r *repository) ListUnearned(
	ctx context.Context,
	userID string,
) ([]Badge, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM badges b
		WHERE b.is_active = TRUE
		  AND NOT EXISTS (
			SELECT 1 FROM user_badges ub
			WHERE ub.badge_id = b.id AND ub.user_id = $1
		  )
		ORDER BY b.display_order`, badgeColumns)

	var badges []Badge
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, fmt.Errorf("list unearned badges: %w", err)
	}

	return badges, nil
}

func (r *repository) ListEarned(
	ctx context.Context,
	userID string,
) ([]EarnedBadge, error) {
	query := fmt.Sprintf(`
		SELECT %s, ub.earned_at, ub.notification_seen
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY b.display_order`, prefixedBadgeColumns("b"))

	var earned []EarnedBadge
	if err := r.db.SelectContext(ctx, &earned, query, userID); err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}

	return earned, nil
}

// Award inserts the user-badge row. Returns false when the badge was already
// held; the unique constraint makes awarding safe to repeat.
func (r *repository) Award(
	ctx context.Context,
	userID, badgeID string,
) (bool, error) {
	query := `
		INSERT INTO user_badges (id, user_id, badge_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`

	result, err := r.db.ExecContext(
		ctx,
		query,
		uuid.New().String(),
		userID,
		badgeID,
	)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ListUnseen(
	ctx context.Context,
	userID string,
) ([]EarnedBadge, error) {
	query := fmt.Sprintf(`
		SELECT %s, ub.earned_at, ub.notification_seen
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1 AND ub.notification_seen = FALSE
		ORDER BY ub.earned_at DESC`, prefixedBadgeColumns("b"))

	var unseen []EarnedBadge
	if err := r.db.SelectContext(ctx, &unseen, query, userID); err != nil {
		return nil, fmt.Errorf("list unseen badges: %w", err)
	}

	return unseen, nil
}

func (r *repository) MarkSeen(ctx context.Context, userID string) error {
	query := `
		UPDATE user_badges
		SET notification_seen = TRUE
		WHERE user_id = $1 AND notification_seen = FALSE`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("mark badges seen: %w", err)
	}

	return nil
}

func (r *repository) ProgressSnapshot(
	ctx context.Context,
	userID string,
) (*Progress, error) {
	query := `
		SELECT
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1) AS total_completions,
			GREATEST(
				COALESCE((SELECT MAX(streak_count) FROM habits
				          WHERE user_id = $1 AND archived = FALSE), 0),
				COALESCE((SELECT MAX(longest_streak) FROM habits
				          WHERE user_id = $1), 0)
			) AS max_streak,
			(SELECT COUNT(*) FROM habits WHERE user_id = $1) AS habits_created,
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1
			   AND EXTRACT(HOUR FROM cl.created_at) < 6) AS early_completions,
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1
			   AND EXTRACT(HOUR FROM cl.created_at) >= 22) AS late_completions,
			(SELECT COUNT(*) FROM challenge_participants
			 WHERE user_id = $1 AND status = 'active') AS challenges_joined,
			(SELECT COUNT(*) FROM challenges
			 WHERE creator_id = $1 AND deleted_at IS NULL) AS challenges_created,
			(SELECT COUNT(*) FROM habits
			 WHERE user_id = $1 AND archived = FALSE) AS active_habits`

	var progress Progress
	if err := r.db.GetContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("progress snapshot: %w", err)
	}

	return &progress, nil
}

func (r *repository) CompletedAllHabitsOn(
	ctx context.Context,
	userID string,
	date time.Time,
) (bool, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM habits
			 WHERE user_id = $1 AND archived = FALSE) AS active,
			(SELECT COUNT(*)
			 FROM completion_logs cl
			 JOIN habits h ON h.id = cl.habit_id
			 WHERE h.user_id = $1
			   AND h.archived = FALSE
			   AND cl.completed_date = $2) AS done`

	var row struct {
		Active int `db:"active"`
		Done   int `db:"done"`
	}
	if err := r.db.GetContext(ctx, &row, query, userID, date); err != nil {
		return false, fmt.Errorf("completed all habits on: %w", err)
	}

	return row.Active > 0 && row.Done >= row.Active, nil
}

func prefixedBadgeColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.name, %[1]s.slug, %[1]s.description,
		%[1]s.icon, %[1]s.color, %[1]s.category, %[1]s.requirement_type,
		%[1]s.requirement_value, %[1]s.rarity, %[1]s.display_order,
		%[1]s.is_active, %[1]s.created_at`, alias)
}
