// AngelaMos | 2026
// paypal.go

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/habitflow/internal/config"
)

// PayPalClient covers order creation and webhook verification against the
// REST API. Tokens are fetched per call; PayPal caches them server-side.
type PayPalClient struct {
	cfg  config.PayPalConfig
	http *http.Client
}

func NewPayPalClient(cfg config.PayPalConfig) *PayPalClient {
	return &PayPalClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type PayPalOrder struct {
	ID          string `json:"id"`
	ApprovalURL string `json:"-"`
}

type PayPalOrderParams struct {
	UserID      string
	Tier        string
	AmountCents int64
	Currency    string
	ReturnURL   string
	CancelURL   string
}

func (c *PayPalClient) CreateOrder(
	ctx context.Context,
	p PayPalOrderParams,
) (*PayPalOrder, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"custom_id":   p.UserID + ":" + p.Tier,
			"description": "HabitFlow " + tierLabel(p.Tier),
			"amount": map[string]string{
				"currency_code": strings.ToUpper(p.Currency),
				"value":         fmt.Sprintf("%.2f", float64(p.AmountCents)/100),
			},
		}},
		"application_context": map[string]string{
			"return_url": p.ReturnURL,
			"cancel_url": p.CancelURL,
		},
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	err = c.post(ctx, "/v2/checkout/orders", token, body, &result)
	if err != nil {
		return nil, err
	}

	order := &PayPalOrder{ID: result.ID}
	for _, link := range result.Links {
		if link.Rel == "approve" {
			order.ApprovalURL = link.Href
		}
	}
	if order.ApprovalURL == "" {
		return nil, fmt.Errorf("paypal order %s: no approval link", result.ID)
	}

	return order, nil
}

// VerifyWebhook asks PayPal to validate the transmission headers against
// our configured webhook ID. Anything but SUCCESS fails verification.
func (c *PayPalClient) VerifyWebhook(
	ctx context.Context,
	headers http.Header,
	payload []byte,
) (bool, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return false, err
	}

	body := map[string]any{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.cfg.WebhookID,
		"webhook_event":     json.RawMessage(payload),
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	err = c.post(
		ctx, "/v1/notifications/verify-webhook-signature",
		token, body, &result,
	)
	if err != nil {
		return false, err
	}

	return result.VerificationStatus == "SUCCESS", nil
}

func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"),
	)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("paypal token: status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}

	return result.AccessToken, nil
}

func (c *PayPalClient) post(
	ctx context.Context,
	path, token string,
	body, out any,
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.cfg.BaseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("paypal %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("paypal response: %w", err)
	}

	return nil
}
