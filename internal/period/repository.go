// AngelaMos | 2026
// repository.go

package period

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	GetSettings(ctx context.Context, userID string) (*Settings, error)
	CreateSettings(ctx context.Context, s *Settings) error
	UpdateSettings(ctx context.Context, s *Settings) error

	CreateCycle(ctx context.Context, c *Cycle) error
	GetOwnedCycle(ctx context.Context, userID, cycleID string) (*Cycle, error)
	UpdateCycle(ctx context.Context, c *Cycle) error
	DeleteCycle(ctx context.Context, cycleID string) error
	ListCycles(ctx context.Context, userID string) ([]Cycle, error)
	CompletedCycleLengths(
		ctx context.Context,
		userID string,
		limit int,
	) ([]int, error)
	LatestActualCycle(ctx context.Context, userID string) (*Cycle, error)
	ActiveCycleOn(
		ctx context.Context,
		userID string,
		date time.Time,
	) (*Cycle, error)
	OverlappingCycle(
		ctx context.Context,
		userID string,
		date time.Time,
	) (*Cycle, error)
	PreviousCycleBefore(
		ctx context.Context,
		userID string,
		start time.Time,
	) (*Cycle, error)
	NextCycleAfter(
		ctx context.Context,
		userID string,
		start time.Time,
	) (*Cycle, error)
	SetCycleLength(ctx context.Context, cycleID string, length int) error
	DeletePredictions(ctx context.Context, userID string) error
	ListPredictions(ctx context.Context, userID string) ([]Cycle, error)

	UpsertDailyLog(ctx context.Context, log *DailyLog) error
	RecentDailyLogs(
		ctx context.Context,
		userID string,
		limit int,
	) ([]DailyLog, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const settingsColumns = `
	id, user_id, tracking_enabled, average_cycle_length,
	average_period_duration, reminder_enabled, reminder_days_before,
	show_on_dashboard, created_at, updated_at`

func (r *repository) GetSettings(
	ctx context.Context,
	userID string,
) (*Settings, error) {
	query := `
		SELECT` + settingsColumns + `
		FROM period_settings
		WHERE user_id = $1`

	var s Settings
	err := r.db.GetContext(ctx, &s, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get period settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get period settings: %w", err)
	}

	return &s, nil
}

func (r *repository) CreateSettings(ctx context.Context, s *Settings) error {
	query := `
		INSERT INTO period_settings (
			id, user_id, tracking_enabled, average_cycle_length,
			average_period_duration, reminder_enabled, reminder_days_before,
			show_on_dashboard
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		s.ID, s.UserID, s.TrackingEnabled, s.AverageCycleLength,
		s.AveragePeriodDuration, s.ReminderEnabled, s.ReminderDaysBefore,
		s.ShowOnDashboard,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create period settings: %w", err)
	}

	return nil
}

func (r *repository) UpdateSettings(ctx context.Context, s *Settings) error {
	query := `
		UPDATE period_settings
		SET tracking_enabled = $2, average_cycle_length = $3,
		    average_period_duration = $4, reminder_enabled = $5,
		    reminder_days_before = $6, show_on_dashboard = $7,
		    updated_at = NOW()
		WHERE user_id = $1`

	_, err := r.db.ExecContext(
		ctx, query,
		s.UserID, s.TrackingEnabled, s.AverageCycleLength,
		s.AveragePeriodDuration, s.ReminderEnabled, s.ReminderDaysBefore,
		s.ShowOnDashboard,
	)
	if err != nil {
		return fmt.Errorf("update period settings: %w", err)
	}

	return nil
}

const cycleColumns = `
	id, user_id, start_date, end_date, cycle_length, is_predicted,
	created_at, updated_at`

func (r *repository) CreateCycle(ctx context.Context, c *Cycle) error {
	query := `
		INSERT INTO period_cycles (
			id, user_id, start_date, end_date, cycle_length, is_predicted
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		c.ID, c.UserID, c.StartDate, c.EndDate, c.CycleLength, c.IsPredicted,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}

	return nil
}

func (r *repository) GetOwnedCycle(
	ctx context.Context,
	userID, cycleID string,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE id = $1 AND user_id = $2 AND is_predicted = FALSE`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, cycleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get cycle: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) UpdateCycle(ctx context.Context, c *Cycle) error {
	query := `
		UPDATE period_cycles
		SET start_date = $2, end_date = $3, cycle_length = $4,
		    updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.ExecContext(
		ctx, query,
		c.ID, c.StartDate, c.EndDate, c.CycleLength,
	)
	if err != nil {
		return fmt.Errorf("update cycle: %w", err)
	}

	return nil
}

func (r *repository) DeleteCycle(ctx context.Context, cycleID string) error {
	query := `DELETE FROM period_cycles WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, cycleID); err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}

	return nil
}

func (r *repository) ListCycles(
	ctx context.Context,
	userID string,
) ([]Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1
		ORDER BY start_date DESC`

	var cycles []Cycle
	if err := r.db.SelectContext(ctx, &cycles, query, userID); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}

	return cycles, nil
}

// CompletedCycleLengths returns the most recent recorded cycle lengths,
// newest first, skipping open-ended and predicted rows.
func (r *repository) CompletedCycleLengths(
	ctx context.Context,
	userID string,
	limit int,
) ([]int, error) {
	query := `
		SELECT cycle_length
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE
		  AND end_date IS NOT NULL AND cycle_length IS NOT NULL
		ORDER BY start_date DESC
		LIMIT $2`

	var lengths []int
	err := r.db.SelectContext(ctx, &lengths, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("completed cycle lengths: %w", err)
	}

	return lengths, nil
}

func (r *repository) LatestActualCycle(
	ctx context.Context,
	userID string,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE
		ORDER BY start_date DESC
		LIMIT 1`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) ActiveCycleOn(
	ctx context.Context,
	userID string,
	date time.Time,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE AND start_date <= $2
		ORDER BY start_date DESC
		LIMIT 1`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) OverlappingCycle(
	ctx context.Context,
	userID string,
	date time.Time,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE
		  AND start_date <= $2 AND end_date >= $2
		LIMIT 1`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("overlapping cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) PreviousCycleBefore(
	ctx context.Context,
	userID string,
	start time.Time,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE AND start_date < $2
		ORDER BY start_date DESC
		LIMIT 1`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, userID, start)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) NextCycleAfter(
	ctx context.Context,
	userID string,
	start time.Time,
) (*Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = FALSE AND start_date > $2
		ORDER BY start_date ASC
		LIMIT 1`

	var c Cycle
	err := r.db.GetContext(ctx, &c, query, userID, start)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next cycle: %w", err)
	}

	return &c, nil
}

func (r *repository) SetCycleLength(
	ctx context.Context,
	cycleID string,
	length int,
) error {
	query := `
		UPDATE period_cycles
		SET cycle_length = $2, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, cycleID, length); err != nil {
		return fmt.Errorf("set cycle length: %w", err)
	}

	return nil
}

func (r *repository) DeletePredictions(
	ctx context.Context,
	userID string,
) error {
	query := `
		DELETE FROM period_cycles
		WHERE user_id = $1 AND is_predicted = TRUE`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete predictions: %w", err)
	}

	return nil
}

func (r *repository) ListPredictions(
	ctx context.Context,
	userID string,
) ([]Cycle, error) {
	query := `
		SELECT` + cycleColumns + `
		FROM period_cycles
		WHERE user_id = $1 AND is_predicted = TRUE
		ORDER BY start_date ASC`

	var cycles []Cycle
	if err := r.db.SelectContext(ctx, &cycles, query, userID); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	return cycles, nil
}

func (r *repository) UpsertDailyLog(ctx context.Context, log *DailyLog) error {
	query := `
		INSERT INTO period_daily_logs (
			id, user_id, log_date, flow, symptoms, mood, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, log_date) DO UPDATE
		SET flow = EXCLUDED.flow, symptoms = EXCLUDED.symptoms,
		    mood = EXCLUDED.mood, notes = EXCLUDED.notes,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		log.ID, log.UserID, log.LogDate, log.Flow, log.Symptoms,
		log.Mood, log.Notes,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert daily log: %w", err)
	}

	return nil
}

func (r *repository) RecentDailyLogs(
	ctx context.Context,
	userID string,
	limit int,
) ([]DailyLog, error) {
	query := `
		SELECT id, user_id, log_date, flow, symptoms, mood, notes,
		       created_at, updated_at
		FROM period_daily_logs
		WHERE user_id = $1
		ORDER BY log_date DESC
		LIMIT $2`

	var logs []DailyLog
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("recent daily logs: %w", err)
	}

	return logs, nil
}
