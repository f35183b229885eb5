// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/habitflow/internal/core"
)

type Repository interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	LatestActiveSubscription(
		ctx context.Context,
		userID string,
	) (*Subscription, error)
	SubscriptionByProviderID(
		ctx context.Context,
		provider, providerSubscriptionID string,
	) (*Subscription, error)
	CloseSubscription(
		ctx context.Context,
		subscriptionID, status, notes string,
	) error
	ExtendSubscription(
		ctx context.Context,
		subscriptionID string,
		sub *Subscription,
	) error
	ListSubscriptions(
		ctx context.Context,
		userID string,
	) ([]Subscription, error)

	CreatePayment(ctx context.Context, p *Payment) error
	PaymentByProviderTransaction(
		ctx context.Context,
		provider, transactionID string,
	) (*Payment, error)
	ListPayments(ctx context.Context, userID string) ([]Payment, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const subscriptionColumns = `
	id, user_id, tier, status, payment_provider, provider_subscription_id,
	start_date, end_date, next_billing_date, amount_cents, currency, notes,
	created_at`

func (r *repository) CreateSubscription(
	ctx context.Context,
	sub *Subscription,
) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, tier, status, payment_provider,
			provider_subscription_id, start_date, end_date,
			next_billing_date, amount_cents, currency, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		sub.ID, sub.UserID, sub.Tier, sub.Status, sub.PaymentProvider,
		sub.ProviderSubscriptionID, sub.StartDate, sub.EndDate,
		sub.NextBillingDate, sub.AmountCents, sub.Currency, sub.Notes,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

func (r *repository) LatestActiveSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	query := `
		SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest active subscription: %w", err)
	}

	return &sub, nil
}

func (r *repository) SubscriptionByProviderID(
	ctx context.Context,
	provider, providerSubscriptionID string,
) (*Subscription, error) {
	query := `
		SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE payment_provider = $1 AND provider_subscription_id = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, provider, providerSubscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscription by provider id: %w", err)
	}

	return &sub, nil
}

func (r *repository) CloseSubscription(
	ctx context.Context,
	subscriptionID, status, notes string,
) error {
	query := `
		UPDATE subscriptions
		SET status = $2, notes = $3
		WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, subscriptionID, status, notes)
	if err != nil {
		return fmt.Errorf("close subscription: %w", err)
	}

	return nil
}

func (r *repository) ExtendSubscription(
	ctx context.Context,
	subscriptionID string,
	sub *Subscription,
) error {
	query := `
		UPDATE subscriptions
		SET end_date = $2, next_billing_date = $3
		WHERE id = $1`

	_, err := r.db.ExecContext(
		ctx, query,
		subscriptionID, sub.EndDate, sub.NextBillingDate,
	)
	if err != nil {
		return fmt.Errorf("extend subscription: %w", err)
	}

	return nil
}

func (r *repository) ListSubscriptions(
	ctx context.Context,
	userID string,
) ([]Subscription, error) {
	query := `
		SELECT` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var subs []Subscription
	if err := r.db.SelectContext(ctx, &subs, query, userID); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	return subs, nil
}

func (r *repository) CreatePayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, subscription_id, provider, provider_transaction_id,
			provider_invoice_id, amount_cents, currency, status,
			payment_type, metadata, transaction_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		p.ID, p.UserID, p.SubscriptionID, p.Provider,
		p.ProviderTransactionID, p.ProviderInvoiceID, p.AmountCents,
		p.Currency, p.Status, p.PaymentType, p.Metadata, p.TransactionDate,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

func (r *repository) PaymentByProviderTransaction(
	ctx context.Context,
	provider, transactionID string,
) (*Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, provider,
		       provider_transaction_id, provider_invoice_id, amount_cents,
		       currency, status, payment_type, metadata, transaction_date,
		       created_at
		FROM payments
		WHERE provider = $1 AND provider_transaction_id = $2
		LIMIT 1`

	var p Payment
	err := r.db.GetContext(ctx, &p, query, provider, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("payment by transaction: %w", err)
	}

	return &p, nil
}

func (r *repository) ListPayments(
	ctx context.Context,
	userID string,
) ([]Payment, error) {
	query := `
		SELECT id, user_id, subscription_id, provider,
		       provider_transaction_id, provider_invoice_id, amount_cents,
		       currency, status, payment_type, metadata, transaction_date,
		       created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY transaction_date DESC`

	var payments []Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return payments, nil
}
