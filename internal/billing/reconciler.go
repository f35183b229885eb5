// AngelaMos | 2026
// reconciler.go

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/habitflow/internal/config"
	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

// HabitCounter reports active habit counts for downgrade reporting.
type HabitCounter interface {
	CountActiveByUser(ctx context.Context, userID string) (int, error)
}

// Notifier covers the billing mails; implementations never fail the flow.
type Notifier interface {
	SendPaymentSuccess(to, name, tier string, amount float64, currency string) bool
	SendPaymentFailed(to, name string, amount float64, currency string) bool
	SendSubscriptionCancelled(to, name string, endDate *time.Time) bool
	SendSubscriptionExpired(to, name string, habitsOverLimit int) bool
}

// Reconciler translates provider payment events into account state. Every
// entry point is idempotent: replayed webhooks must not double-apply.
type Reconciler struct {
	db     *sqlx.DB
	repo   Repository
	users  user.Repository
	habits HabitCounter
	mailer Notifier
	cfg    config.BillingConfig
}

func NewReconciler(
	db *sqlx.DB,
	repo Repository,
	users user.Repository,
	habits HabitCounter,
	mailer Notifier,
	cfg config.BillingConfig,
) *Reconciler {
	return &Reconciler{
		db:     db,
		repo:   repo,
		users:  users,
		habits: habits,
		mailer: mailer,
		cfg:    cfg,
	}
}

type ActivateParams struct {
	UserID                 string
	Tier                   string
	Provider               string
	ProviderSubscriptionID string
	ProviderTransactionID  string
	ProviderInvoiceID      string
	AmountCents            int64
	Currency               string
	Metadata               []byte
}

// DowngradeResult reports what a downgrade left behind.
type DowngradeResult struct {
	PreviousTier   string
	ActiveHabits   int
	HabitsOverFree int
}

// Activate grants the tier and records the subscription and payment rows.
// A replayed event (same provider transaction, or same provider
// subscription already held at this tier) is a no-op.
func (r *Reconciler) Activate(ctx context.Context, p ActivateParams) error {
	if !user.PaidTier(p.Tier) {
		return fmt.Errorf("activate: unknown tier %q: %w", p.Tier, core.ErrInvalidInput)
	}

	if p.ProviderTransactionID != "" {
		existing, err := r.repo.PaymentByProviderTransaction(
			ctx, p.Provider, p.ProviderTransactionID,
		)
		if err != nil {
			return err
		}
		if existing != nil {
			slog.Info("activation replayed, skipping",
				"provider", p.Provider,
				"transaction_id", p.ProviderTransactionID,
			)
			return nil
		}
	}

	account, err := r.users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}

	if account.SubscriptionTier == p.Tier &&
		p.ProviderSubscriptionID != "" &&
		account.StripeSubscriptionID != nil &&
		*account.StripeSubscriptionID == p.ProviderSubscriptionID {
		slog.Info("subscription already active, skipping",
			"user_id", p.UserID,
			"tier", p.Tier,
		)
		return nil
	}

	now := time.Now().UTC()
	endDate := tierEndDate(p.Tier, now)

	err = core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		userRepo := user.NewRepository(tx)
		billRepo := NewRepository(tx)

		state := user.SubscriptionState{
			UserID:          p.UserID,
			Tier:            p.Tier,
			Status:          user.SubStatusActive,
			StartDate:       &now,
			EndDate:         endDate,
			LastPaymentDate: &now,
			HabitLimit:      user.UnlimitedHabits,
			ResetFailures:   true,
		}
		if p.Provider == ProviderStripe && p.ProviderSubscriptionID != "" {
			state.StripeSubscriptionID = &p.ProviderSubscriptionID
		}
		if p.Provider == ProviderTiloPay && p.ProviderSubscriptionID != "" {
			state.TiloPayCustomerID = &p.ProviderSubscriptionID
		}

		if err := userRepo.ApplySubscription(ctx, state); err != nil {
			return err
		}

		sub := &Subscription{
			ID:              uuid.New().String(),
			UserID:          p.UserID,
			Tier:            p.Tier,
			Status:          SubStatusActive,
			PaymentProvider: p.Provider,
			StartDate:       now,
			EndDate:         endDate,
			AmountCents:     p.AmountCents,
			Currency:        p.Currency,
			Notes: fmt.Sprintf(
				"Upgraded from %s to %s", account.SubscriptionTier, p.Tier,
			),
		}
		if p.ProviderSubscriptionID != "" {
			sub.ProviderSubscriptionID = &p.ProviderSubscriptionID
		}
		if p.Tier != user.TierLifetime {
			sub.NextBillingDate = endDate
		}
		if err := billRepo.CreateSubscription(ctx, sub); err != nil {
			return err
		}

		paymentType := PaymentTypeSubscription
		if p.Tier == user.TierLifetime {
			paymentType = PaymentTypeLifetime
		}

		payment := &Payment{
			ID:                    uuid.New().String(),
			UserID:                p.UserID,
			SubscriptionID:        &sub.ID,
			Provider:              p.Provider,
			ProviderTransactionID: p.ProviderTransactionID,
			AmountCents:           p.AmountCents,
			Currency:              p.Currency,
			Status:                PaymentCompleted,
			PaymentType:           paymentType,
			Metadata:              p.Metadata,
			TransactionDate:       now,
		}
		if p.ProviderInvoiceID != "" {
			payment.ProviderInvoiceID = &p.ProviderInvoiceID
		}

		return billRepo.CreatePayment(ctx, payment)
	})
	if err != nil {
		return err
	}

	slog.Info("subscription activated",
		"user_id", p.UserID,
		"tier", p.Tier,
		"provider", p.Provider,
	)

	r.mailer.SendPaymentSuccess(
		account.Email, account.Name, p.Tier,
		float64(p.AmountCents)/100, p.Currency,
	)

	return nil
}

// Extend pushes a recurring subscription's end date to the provider's
// current period end, typically on renewal events.
func (r *Reconciler) Extend(
	ctx context.Context,
	provider, providerSubscriptionID string,
	periodEnd time.Time,
) error {
	sub, err := r.repo.SubscriptionByProviderID(
		ctx, provider, providerSubscriptionID,
	)
	if err != nil {
		return err
	}
	if sub == nil {
		slog.Warn("renewal for unknown subscription",
			"provider", provider,
			"provider_subscription_id", providerSubscriptionID,
		)
		return nil
	}

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		userRepo := user.NewRepository(tx)
		billRepo := NewRepository(tx)

		now := time.Now().UTC()
		state := user.SubscriptionState{
			UserID:          sub.UserID,
			Tier:            sub.Tier,
			Status:          user.SubStatusActive,
			EndDate:         &periodEnd,
			LastPaymentDate: &now,
			HabitLimit:      user.UnlimitedHabits,
			ResetFailures:   true,
		}
		if err := userRepo.ApplySubscription(ctx, state); err != nil {
			return err
		}

		sub.EndDate = &periodEnd
		sub.NextBillingDate = &periodEnd
		return billRepo.ExtendSubscription(ctx, sub.ID, sub)
	})
}

// Downgrade drops the account to the free tier and reports how many
// active habits now exceed the free limit. Already-free accounts no-op.
func (r *Reconciler) Downgrade(
	ctx context.Context,
	userID, reason string,
) (*DowngradeResult, error) {
	account, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.SubscriptionTier == user.TierFree {
		return &DowngradeResult{PreviousTier: user.TierFree}, nil
	}

	activeHabits, err := r.habits.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &DowngradeResult{
		PreviousTier: account.SubscriptionTier,
		ActiveHabits: activeHabits,
	}
	if over := activeHabits - r.cfg.FreeHabitLimit; over > 0 {
		result.HabitsOverFree = over
	}

	status := user.SubStatusExpired
	if reason == "cancelled" {
		status = user.SubStatusCancelled
	}

	err = core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		userRepo := user.NewRepository(tx)
		billRepo := NewRepository(tx)

		state := user.SubscriptionState{
			UserID:     userID,
			Tier:       user.TierFree,
			Status:     status,
			HabitLimit: r.cfg.FreeHabitLimit,
		}
		if err := userRepo.ApplySubscription(ctx, state); err != nil {
			return err
		}

		active, err := billRepo.LatestActiveSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			notes := fmt.Sprintf("Downgraded to free tier: %s", reason)
			closeStatus := SubStatusDowngraded
			if reason == "cancelled" {
				closeStatus = SubStatusCancelled
			}
			err = billRepo.CloseSubscription(ctx, active.ID, closeStatus, notes)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("subscription downgraded",
		"user_id", userID,
		"previous_tier", result.PreviousTier,
		"reason", reason,
		"habits_over_free", result.HabitsOverFree,
	)

	switch reason {
	case "cancelled":
		r.mailer.SendSubscriptionCancelled(
			account.Email, account.Name, account.SubscriptionEndDate,
		)
	default:
		r.mailer.SendSubscriptionExpired(
			account.Email, account.Name, result.HabitsOverFree,
		)
	}

	return result, nil
}

// RecordFailure writes a failed payment row and bumps the consecutive
// failure counter; crossing the configured threshold forces a downgrade.
func (r *Reconciler) RecordFailure(
	ctx context.Context,
	userID, provider, transactionID, invoiceID string,
	amountCents int64,
	currency string,
) error {
	account, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if transactionID != "" {
		existing, err := r.repo.PaymentByProviderTransaction(
			ctx, provider, transactionID,
		)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
	}

	payment := &Payment{
		ID:                    uuid.New().String(),
		UserID:                userID,
		Provider:              provider,
		ProviderTransactionID: transactionID,
		AmountCents:           amountCents,
		Currency:              currency,
		Status:                PaymentFailed,
		PaymentType:           PaymentTypeSubscription,
		TransactionDate:       time.Now().UTC(),
	}
	if invoiceID != "" {
		payment.ProviderInvoiceID = &invoiceID
	}
	if err := r.repo.CreatePayment(ctx, payment); err != nil {
		return err
	}

	failures, err := r.users.IncrementPaymentFailures(ctx, userID)
	if err != nil {
		return err
	}

	slog.Warn("payment failed",
		"user_id", userID,
		"provider", provider,
		"consecutive_failures", failures,
	)

	r.mailer.SendPaymentFailed(
		account.Email, account.Name,
		float64(amountCents)/100, currency,
	)

	if failures >= r.cfg.MaxPaymentFailures {
		if _, err := r.Downgrade(ctx, userID, "payment_failed"); err != nil {
			return err
		}
	}

	return nil
}

// ExpireOverdue downgrades every paid account whose end date has passed.
// Run daily from the job scheduler.
func (r *Reconciler) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-r.cfg.ExpiryGraceDuration)

	expired, err := r.users.ListExpiredSubscriptions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		_, err := r.Downgrade(ctx, expired[i].ID, "subscription_expired")
		if err != nil {
			slog.Error("expiry downgrade failed",
				"user_id", expired[i].ID,
				"error", err,
			)
			continue
		}
		count++
	}

	return count, nil
}

// tierEndDate is nil for lifetime, otherwise start plus the billing period.
func tierEndDate(tier string, start time.Time) *time.Time {
	var end time.Time

	switch tier {
	case user.TierMonthly:
		end = start.AddDate(0, 0, 30)
	case user.TierAnnual:
		end = start.AddDate(0, 0, 365)
	default:
		return nil
	}

	return &end
}
