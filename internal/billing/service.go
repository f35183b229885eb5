// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/habitflow/internal/config"
	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

// Service handles checkout initiation and billing history. Provider events
// land in the Reconciler; this is the user-facing half.
type Service struct {
	repo        Repository
	users       user.Repository
	reconciler  *Reconciler
	stripe      *StripeClient
	paypal      *PayPalClient
	coinbase    *CoinbaseClient
	tilopay     *TiloPayClient
	billing     config.BillingConfig
	frontendURL string
}

func NewService(
	repo Repository,
	users user.Repository,
	reconciler *Reconciler,
	stripe *StripeClient,
	paypal *PayPalClient,
	coinbase *CoinbaseClient,
	tilopay *TiloPayClient,
	billing config.BillingConfig,
	frontendURL string,
) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		reconciler:  reconciler,
		stripe:      stripe,
		paypal:      paypal,
		coinbase:    coinbase,
		tilopay:     tilopay,
		billing:     billing,
		frontendURL: frontendURL,
	}
}

type CheckoutResponse struct {
	Provider    string `json:"provider"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Checkout starts a payment flow with the chosen provider. Users already
// holding the requested tier are turned away before any provider call.
func (s *Service) Checkout(
	ctx context.Context,
	userID, tier, provider string,
) (*CheckoutResponse, error) {
	if !user.PaidTier(tier) {
		return nil, fmt.Errorf("checkout: tier %q: %w", tier, core.ErrInvalidInput)
	}

	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.SubscriptionTier == tier && account.IsPremiumActive() {
		return nil, fmt.Errorf(
			"checkout: already subscribed to %s: %w", tier, core.ErrConflict,
		)
	}

	amount := s.tierPriceCents(tier)
	if amount <= 0 {
		return nil, fmt.Errorf(
			"checkout: no price configured for %s: %w", tier, core.ErrInvalidInput,
		)
	}

	successURL := s.frontendURL + "/billing/success"
	cancelURL := s.frontendURL + "/billing/cancel"

	switch provider {
	case ProviderStripe:
		session, err := s.stripe.CreateCheckoutSession(ctx, StripeCheckoutParams{
			UserID:      userID,
			UserEmail:   account.Email,
			Tier:        tier,
			AmountCents: amount,
			Currency:    "usd",
			SuccessURL:  successURL,
			CancelURL:   cancelURL,
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResponse{
			Provider:    provider,
			SessionID:   session.ID,
			CheckoutURL: session.URL,
		}, nil

	case ProviderPayPal:
		order, err := s.paypal.CreateOrder(ctx, PayPalOrderParams{
			UserID:      userID,
			Tier:        tier,
			AmountCents: amount,
			Currency:    "USD",
			ReturnURL:   successURL,
			CancelURL:   cancelURL,
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResponse{
			Provider:    provider,
			SessionID:   order.ID,
			CheckoutURL: order.ApprovalURL,
		}, nil

	case ProviderCoinbase:
		charge, err := s.coinbase.CreateCharge(ctx, CoinbaseChargeParams{
			UserID:      userID,
			Tier:        tier,
			AmountCents: amount,
			Currency:    "USD",
			RedirectURL: successURL,
			CancelURL:   cancelURL,
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResponse{
			Provider:    provider,
			SessionID:   charge.ID,
			CheckoutURL: charge.HostedURL,
		}, nil

	case ProviderTiloPay:
		payment, err := s.tilopay.CreatePayment(ctx, TiloPayPaymentParams{
			UserID:      userID,
			UserEmail:   account.Email,
			Tier:        tier,
			AmountCents: amount,
			Currency:    "USD",
			ReturnURL:   successURL,
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResponse{
			Provider:    provider,
			SessionID:   payment.ID,
			CheckoutURL: payment.URL,
		}, nil
	}

	return nil, fmt.Errorf(
		"checkout: provider %q: %w", provider, core.ErrInvalidInput,
	)
}

// Cancel ends the subscription with the provider where possible and
// downgrades the account immediately.
func (s *Service) Cancel(
	ctx context.Context,
	userID string,
) (*DowngradeResult, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.SubscriptionTier == user.TierFree {
		return nil, fmt.Errorf("cancel: no active subscription: %w", core.ErrNotFound)
	}
	if account.SubscriptionTier == user.TierLifetime {
		return nil, fmt.Errorf(
			"cancel: lifetime access cannot be cancelled: %w", core.ErrInvalidInput,
		)
	}

	if account.StripeSubscriptionID != nil {
		if err := s.stripe.CancelSubscription(
			ctx, *account.StripeSubscriptionID,
		); err != nil {
			return nil, err
		}
	}

	return s.reconciler.Downgrade(ctx, userID, "cancelled")
}

type SubscriptionResponse struct {
	ID              string     `json:"id"`
	Tier            string     `json:"tier"`
	Status          string     `json:"status"`
	Provider        string     `json:"payment_provider"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
}

type PaymentResponse struct {
	ID              string    `json:"id"`
	Provider        string    `json:"provider"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	PaymentType     string    `json:"payment_type"`
	TransactionDate time.Time `json:"transaction_date"`
}

type HistoryResponse struct {
	CurrentTier   string                 `json:"current_tier"`
	Status        string                 `json:"status"`
	PremiumActive bool                   `json:"premium_active"`
	EndDate       *time.Time             `json:"end_date,omitempty"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Payments      []PaymentResponse      `json:"payments"`
}

func (s *Service) History(
	ctx context.Context,
	userID string,
) (*HistoryResponse, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &HistoryResponse{
		CurrentTier:   account.SubscriptionTier,
		Status:        account.SubscriptionStatus,
		PremiumActive: account.IsPremiumActive(),
		EndDate:       account.SubscriptionEndDate,
		Subscriptions: make([]SubscriptionResponse, 0, len(subs)),
		Payments:      make([]PaymentResponse, 0, len(payments)),
	}

	for i := range subs {
		sub := &subs[i]
		resp.Subscriptions = append(resp.Subscriptions, SubscriptionResponse{
			ID:              sub.ID,
			Tier:            sub.Tier,
			Status:          sub.Status,
			Provider:        sub.PaymentProvider,
			StartDate:       sub.StartDate,
			EndDate:         sub.EndDate,
			NextBillingDate: sub.NextBillingDate,
			Amount:          float64(sub.AmountCents) / 100,
			Currency:        sub.Currency,
		})
	}

	for i := range payments {
		p := &payments[i]
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:              p.ID,
			Provider:        p.Provider,
			Amount:          float64(p.AmountCents) / 100,
			Currency:        p.Currency,
			Status:          p.Status,
			PaymentType:     p.PaymentType,
			TransactionDate: p.TransactionDate,
		})
	}

	return resp, nil
}

func (s *Service) tierPriceCents(tier string) int64 {
	switch tier {
	case user.TierMonthly:
		return s.billing.MonthlyPriceCents
	case user.TierAnnual:
		return s.billing.AnnualPriceCents
	case user.TierLifetime:
		return s.billing.LifetimePriceCents
	}
	return 0
}
