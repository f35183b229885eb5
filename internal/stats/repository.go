// AngelaMos | 2026
// repository.go

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	ActiveHabitStreaks(ctx context.Context, userID string) ([]HabitStreak, error)
	CompletionsByWeekday(ctx context.Context, userID string) ([]WeekdayCount, error)
	CompletionsPerDay(
		ctx context.Context,
		userID string,
		from, to time.Time,
	) ([]DayCount, error)
	TotalCompletions(ctx context.Context, userID string) (int, error)
}

type HabitStreak struct {
	Name        string `db:"name"`
	StreakCount int    `db:"streak_count"`
}

type WeekdayCount struct {
	// Weekday follows PostgreSQL EXTRACT(DOW): 0 = Sunday.
	Weekday int `db:"weekday"`
	Count   int `db:"count"`
}

type DayCount struct {
	Day   time.Time `db:"day"`
	Count int       `db:"count"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ActiveHabitStreaks(
	ctx context.Context,
	userID string,
) ([]HabitStreak, error) {
	query := `
		SELECT name, streak_count
		FROM habits
		WHERE user_id = $1 AND archived = FALSE
		ORDER BY created_at ASC`

	var streaks []HabitStreak
	if err := r.db.SelectContext(ctx, &streaks, query, userID); err != nil {
		return nil, fmt.Errorf("habit streaks: %w", err)
	}

	return streaks, nil
}

func (r *repository) CompletionsByWeekday(
	ctx context.Context,
	userID string,
) ([]WeekdayCount, error) {
	query := `
		SELECT EXTRACT(DOW FROM cl.completed_date)::int AS weekday,
		       COUNT(*) AS count
		FROM completion_logs cl
		JOIN habits h ON h.id = cl.habit_id
		WHERE h.user_id = $1
		GROUP BY weekday
		ORDER BY weekday`

	var counts []WeekdayCount
	if err := r.db.SelectContext(ctx, &counts, query, userID); err != nil {
		return nil, fmt.Errorf("completions by weekday: %w", err)
	}

	return counts, nil
}

func (r *repository) CompletionsPerDay(
	ctx context.Context,
	userID string,
	from, to time.Time,
) ([]DayCount, error) {
	query := `
		SELECT cl.completed_date AS day, COUNT(*) AS count
		FROM completion_logs cl
		JOIN habits h ON h.id = cl.habit_id
		WHERE h.user_id = $1
		  AND cl.completed_date >= $2
		  AND cl.completed_date <= $3
		GROUP BY cl.completed_date
		ORDER BY cl.completed_date`

	var counts []DayCount
	err := r.db.SelectContext(ctx, &counts, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("completions per day: %w", err)
	}

	return counts, nil
}

func (r *repository) TotalCompletions(
	ctx context.Context,
	userID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM completion_logs cl
		JOIN habits h ON h.id = cl.habit_id
		WHERE h.user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("total completions: %w", err)
	}

	return total, nil
}
