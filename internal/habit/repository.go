// AngelaMos | 2026
// repository.go

package habit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, id string) (*Habit, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Habit, error)
	ListByUser(
		ctx context.Context,
		userID string,
		includeArchived bool,
	) ([]Habit, error)
	Update(ctx context.Context, habit *Habit) error
	UpdateStreak(ctx context.Context, habit *Habit) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)

	CreateCompletionLog(ctx context.Context, log *CompletionLog) error
	DeleteCompletionLog(
		ctx context.Context,
		habitID string,
		date time.Time,
	) error
	LatestCompletionDate(
		ctx context.Context,
		habitID string,
	) (*time.Time, error)
	CountCompletions(ctx context.Context, habitID string) (int, error)
	CountCompletedOn(
		ctx context.Context,
		userID string,
		date time.Time,
	) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, habit *Habit) error {
	query := `
		INSERT INTO habits (id, user_id, name, description, motivation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, habit, query,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Description,
		habit.Motivation,
	)
	if err != nil {
		return fmt.Errorf("create habit: %w", err)
	}

	return nil
}

const habitColumns = `id, user_id, name, description, motivation,
	streak_count, longest_streak, last_completed, archived,
	created_at, updated_at`

func (r *repository) GetByID(ctx context.Context, id string) (*Habit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM habits
		WHERE id = $1`, habitColumns)

	var habit Habit
	err := r.db.GetContext(ctx, &habit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get habit: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}

	return &habit, nil
}

// GetByIDForUpdate takes a row lock so concurrent completions of the same
// habit serialize instead of both reading the same streak state. Only
// meaningful inside a transaction.
func (r *repository) GetByIDForUpdate(
	ctx context.Context,
	id string,
) (*Habit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM habits
		WHERE id = $1
		FOR UPDATE`, habitColumns)

	var habit Habit
	err := r.db.GetContext(ctx, &habit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get habit for update: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit for update: %w", err)
	}

	return &habit, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	includeArchived bool,
) ([]Habit, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM habits
		WHERE user_id = $1`, habitColumns)

	if !includeArchived {
		query += " AND archived = FALSE"
	}

	query += " ORDER BY created_at ASC"

	var habits []Habit
	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

func (r *repository) Update(ctx context.Context, habit *Habit) error {
	query := `
		UPDATE habits
		SET name = $2, description = $3, motivation = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &habit.UpdatedAt, query,
		habit.ID,
		habit.Name,
		habit.Description,
		habit.Motivation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update habit: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}

	return nil
}

func (r *repository) UpdateStreak(ctx context.Context, habit *Habit) error {
	query := `
		UPDATE habits
		SET streak_count = $2, longest_streak = $3, last_completed = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &habit.UpdatedAt, query,
		habit.ID,
		habit.StreakCount,
		habit.LongestStreak,
		habit.LastCompleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update streak: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}

	return nil
}

func (r *repository) SetArchived(
	ctx context.Context,
	id string,
	archived bool,
) error {
	query := `
		UPDATE habits
		SET archived = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, archived)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set archived: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM habits WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete habit: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountActiveByUser(
	ctx context.Context,
	userID string,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM habits
		WHERE user_id = $1 AND archived = FALSE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}

	return count, nil
}

func (r *repository) CreateCompletionLog(
	ctx context.Context,
	log *CompletionLog,
) error {
	query := `
		INSERT INTO completion_logs (id, habit_id, completed_date)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &log.CreatedAt, query,
		log.ID,
		log.HabitID,
		log.CompletedDate,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create completion log: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create completion log: %w", err)
	}

	return nil
}

func (r *repository) DeleteCompletionLog(
	ctx context.Context,
	habitID string,
	date time.Time,
) error {
	query := `
		DELETE FROM completion_logs
		WHERE habit_id = $1 AND completed_date = $2`

	result, err := r.db.ExecContext(ctx, query, habitID, date)
	if err != nil {
		return fmt.Errorf("delete completion log: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete completion log: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete completion log: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) LatestCompletionDate(
	ctx context.Context,
	habitID string,
) (*time.Time, error) {
	query := `
		SELECT completed_date FROM completion_logs
		WHERE habit_id = $1
		ORDER BY completed_date DESC
		LIMIT 1`

	var date time.Time
	err := r.db.GetContext(ctx, &date, query, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completion date: %w", err)
	}

	return &date, nil
}

func (r *repository) CountCompletions(
	ctx context.Context,
	habitID string,
) (int, error) {
	query := `SELECT COUNT(*) FROM completion_logs WHERE habit_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, habitID); err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}

	return count, nil
}

func (r *repository) CountCompletedOn(
	ctx context.Context,
	userID string,
	date time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM completion_logs cl
		JOIN habits h ON h.id = cl.habit_id
		WHERE h.user_id = $1 AND cl.completed_date = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, date); err != nil {
		return 0, fmt.Errorf("count completed on: %w", err)
	}

	return count, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
