// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string, purgeAfter time.Time) error
	HardDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	ApplySubscription(ctx context.Context, sub SubscriptionState) error
	IncrementPaymentFailures(ctx context.Context, id string) (int, error)
	ListExpiredSubscriptions(ctx context.Context, asOf time.Time) ([]User, error)
	ListPurgeable(ctx context.Context, asOf time.Time) ([]User, error)
	ListWithRemindersEnabled(ctx context.Context) ([]User, error)
}

// SubscriptionState is the denormalized subscription snapshot written onto the
// users row whenever billing reconciles a provider event.
type SubscriptionState struct {
	UserID               string
	Tier                 string
	Status               string
	StartDate            *time.Time
	EndDate              *time.Time
	LastPaymentDate      *time.Time
	HabitLimit           int
	ResetFailures        bool
	StripeCustomerID     *string
	StripeSubscriptionID *string
	PayPalPayerID        *string
	TiloPayCustomerID    *string
}

const userColumns = `id, email, password_hash, name, role, timezone,
	token_version, subscription_tier, subscription_status,
	subscription_start_date, subscription_end_date, last_payment_date,
	payment_failure_count, habit_limit, stripe_customer_id,
	stripe_subscription_id, paypal_payer_id, tilopay_customer_id,
	email_reminders_enabled, weekly_digest_enabled,
	created_at, updated_at, deleted_at, purge_after`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role, timezone,
		                   subscription_tier, subscription_status, habit_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Timezone,
		user.SubscriptionTier,
		user.SubscriptionStatus,
		user.HabitLimit,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByStripeCustomerID(
	ctx context.Context,
	customerID string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE stripe_customer_id = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by stripe customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by stripe customer: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, timezone = $4,
		    email_reminders_enabled = $5, weekly_digest_enabled = $6,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Role,
		user.Timezone,
		user.EmailRemindersEnabled,
		user.WeeklyDigestEnabled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdateEmail(ctx context.Context, id, email string) error {
	query := `
		UPDATE users
		SET email = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, email)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update email: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update email: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDelete(
	ctx context.Context,
	id string,
	purgeAfter time.Time,
) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), purge_after = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, purgeAfter)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

// HardDelete removes the row permanently. Dependent rows (habits, logs,
// badges, subscriptions) go with it via ON DELETE CASCADE.
func (r *repository) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("purge user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("purge user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("purge user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Tier != "" {
		conditions = append(
			conditions,
			fmt.Sprintf("subscription_tier = $%d", argIdx),
		)
		args = append(args, params.Tier)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) ApplySubscription(
	ctx context.Context,
	sub SubscriptionState,
) error {
	query := `
		UPDATE users
		SET subscription_tier = $2,
		    subscription_status = $3,
		    subscription_start_date = $4,
		    subscription_end_date = $5,
		    last_payment_date = COALESCE($6, last_payment_date),
		    habit_limit = $7,
		    payment_failure_count = CASE WHEN $8 THEN 0 ELSE payment_failure_count END,
		    stripe_customer_id = COALESCE($9, stripe_customer_id),
		    stripe_subscription_id = COALESCE($10, stripe_subscription_id),
		    paypal_payer_id = COALESCE($11, paypal_payer_id),
		    tilopay_customer_id = COALESCE($12, tilopay_customer_id),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		sub.UserID,
		sub.Tier,
		sub.Status,
		sub.StartDate,
		sub.EndDate,
		sub.LastPaymentDate,
		sub.HabitLimit,
		sub.ResetFailures,
		sub.StripeCustomerID,
		sub.StripeSubscriptionID,
		sub.PayPalPayerID,
		sub.TiloPayCustomerID,
	)
	if err != nil {
		return fmt.Errorf("apply subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply subscription: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("apply subscription: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) IncrementPaymentFailures(
	ctx context.Context,
	id string,
) (int, error) {
	query := `
		UPDATE users
		SET payment_failure_count = payment_failure_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING payment_failure_count`

	var count int
	err := r.db.GetContext(ctx, &count, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("increment payment failures: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("increment payment failures: %w", err)
	}

	return count, nil
}

func (r *repository) ListExpiredSubscriptions(
	ctx context.Context,
	asOf time.Time,
) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE deleted_at IS NULL
		  AND subscription_status = 'active'
		  AND subscription_tier IN ('monthly', 'annual')
		  AND subscription_end_date IS NOT NULL
		  AND subscription_end_date < $1`, userColumns)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, asOf); err != nil {
		return nil, fmt.Errorf("list expired subscriptions: %w", err)
	}

	return users, nil
}

func (r *repository) ListPurgeable(
	ctx context.Context,
	asOf time.Time,
) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE deleted_at IS NOT NULL
		  AND purge_after IS NOT NULL
		  AND purge_after < $1`, userColumns)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, asOf); err != nil {
		return nil, fmt.Errorf("list purgeable users: %w", err)
	}

	return users, nil
}

func (r *repository) ListWithRemindersEnabled(
	ctx context.Context,
) ([]User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE deleted_at IS NULL AND email_reminders_enabled = TRUE`,
		userColumns)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list reminder users: %w", err)
	}

	return users, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
