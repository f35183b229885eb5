// AngelaMos | 2026
// repository_test.go

package billing

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPaymentByProviderTransactionNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM payments").
		WithArgs(ProviderStripe, "cs_missing").
		WillReturnError(sql.ErrNoRows)

	payment, err := repo.PaymentByProviderTransaction(
		context.Background(), ProviderStripe, "cs_missing",
	)
	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentByProviderTransactionFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "subscription_id", "provider",
		"provider_transaction_id", "provider_invoice_id", "amount_cents",
		"currency", "status", "payment_type", "metadata", "transaction_date",
		"created_at",
	}).AddRow(
		"pay-1", "user-1", nil, ProviderStripe,
		"cs_123", nil, int64(999),
		"USD", PaymentCompleted, PaymentTypeSubscription, nil, now,
		now,
	)

	mock.ExpectQuery("FROM payments").
		WithArgs(ProviderStripe, "cs_123").
		WillReturnRows(rows)

	payment, err := repo.PaymentByProviderTransaction(
		context.Background(), ProviderStripe, "cs_123",
	)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, "user-1", payment.UserID)
	assert.Equal(t, int64(999), payment.AmountCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestActiveSubscriptionNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM subscriptions").
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	sub, err := repo.LatestActiveSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSubscription(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE subscriptions").
		WithArgs("sub-1", SubStatusDowngraded, "Downgraded to free tier: expired").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CloseSubscription(
		context.Background(),
		"sub-1", SubStatusDowngraded, "Downgraded to free tier: expired",
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
