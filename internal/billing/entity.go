// AngelaMos | 2026
// entity.go

package billing

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	ProviderStripe   = "stripe"
	ProviderPayPal   = "paypal"
	ProviderCoinbase = "coinbase"
	ProviderTiloPay  = "tilopay"

	SubStatusActive     = "active"
	SubStatusCancelled  = "cancelled"
	SubStatusExpired    = "expired"
	SubStatusDowngraded = "downgraded"

	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"

	PaymentTypeSubscription = "subscription"
	PaymentTypeLifetime     = "lifetime"
)

type Subscription struct {
	ID                     string     `db:"id"`
	UserID                 string     `db:"user_id"`
	Tier                   string     `db:"tier"`
	Status                 string     `db:"status"`
	PaymentProvider        string     `db:"payment_provider"`
	ProviderSubscriptionID *string    `db:"provider_subscription_id"`
	StartDate              time.Time  `db:"start_date"`
	EndDate                *time.Time `db:"end_date"`
	NextBillingDate        *time.Time `db:"next_billing_date"`
	AmountCents            int64      `db:"amount_cents"`
	Currency               string     `db:"currency"`
	Notes                  string     `db:"notes"`
	CreatedAt              time.Time  `db:"created_at"`
}

type Payment struct {
	ID                    string         `db:"id"`
	UserID                string         `db:"user_id"`
	SubscriptionID        *string        `db:"subscription_id"`
	Provider              string         `db:"provider"`
	ProviderTransactionID string         `db:"provider_transaction_id"`
	ProviderInvoiceID     *string        `db:"provider_invoice_id"`
	AmountCents           int64          `db:"amount_cents"`
	Currency              string         `db:"currency"`
	Status                string         `db:"status"`
	PaymentType           string         `db:"payment_type"`
	Metadata              types.JSONText `db:"metadata"`
	TransactionDate       time.Time      `db:"transaction_date"`
	CreatedAt             time.Time      `db:"created_at"`
}
