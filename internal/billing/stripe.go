// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/habitflow/internal/config"
)

const stripeAPIBase = "https://api.stripe.com/v1"

// StripeClient is a thin form-encoded client for the two calls we make:
// creating checkout sessions and cancelling subscriptions.
type StripeClient struct {
	cfg  config.StripeConfig
	http *http.Client
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	return &StripeClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type StripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type StripeCheckoutParams struct {
	UserID      string
	UserEmail   string
	Tier        string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CreateCheckoutSession builds a session with inline price data. Lifetime
// is a one-time payment; monthly and annual are recurring subscriptions.
func (c *StripeClient) CreateCheckoutSession(
	ctx context.Context,
	p StripeCheckoutParams,
) (*StripeCheckoutSession, error) {
	form := url.Values{}
	form.Set("customer_email", p.UserEmail)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("client_reference_id", p.UserID)
	form.Set("metadata[user_id]", p.UserID)
	form.Set("metadata[tier]", p.Tier)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(p.Currency))
	form.Set("line_items[0][price_data][unit_amount]",
		strconv.FormatInt(p.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]",
		"HabitFlow "+tierLabel(p.Tier))

	if p.Tier == "lifetime" {
		form.Set("mode", "payment")
	} else {
		form.Set("mode", "subscription")
		interval := "month"
		if p.Tier == "annual" {
			interval = "year"
		}
		form.Set("line_items[0][price_data][recurring][interval]", interval)
	}

	var session StripeCheckoutSession
	err := c.post(ctx, "/checkout/sessions", form, &session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// CancelSubscription cancels at period end so paid time is not clawed back.
func (c *StripeClient) CancelSubscription(
	ctx context.Context,
	subscriptionID string,
) error {
	form := url.Values{}
	form.Set("cancel_at_period_end", "true")

	path := "/subscriptions/" + url.PathEscape(subscriptionID)
	return c.post(ctx, path, form, &struct{}{})
}

func tierLabel(tier string) string {
	switch tier {
	case "monthly":
		return "Monthly"
	case "annual":
		return "Annual"
	case "lifetime":
		return "Lifetime"
	}
	return tier
}

func (c *StripeClient) post(
	ctx context.Context,
	path string,
	form url.Values,
	out any,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		stripeAPIBase+path,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf(
			"stripe %s: status %d: %s",
			path, resp.StatusCode, apiErr.Error.Message,
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("stripe response: %w", err)
	}

	return nil
}
