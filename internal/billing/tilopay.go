// AngelaMos | 2026
// tilopay.go

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carterperez-dev/habitflow/internal/config"
)

// TiloPayClient integrates the Costa Rican gateway: login for a bearer
// token, then create a hosted payment. Amounts are charged in CRC.
type TiloPayClient struct {
	cfg  config.TiloPayConfig
	http *http.Client
}

func NewTiloPayClient(cfg config.TiloPayConfig) *TiloPayClient {
	return &TiloPayClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type TiloPayPayment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type TiloPayPaymentParams struct {
	UserID      string
	UserEmail   string
	Tier        string
	AmountCents int64
	Currency    string
	ReturnURL   string
}

func (c *TiloPayClient) CreatePayment(
	ctx context.Context,
	p TiloPayPaymentParams,
) (*TiloPayPayment, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"amount":      fmt.Sprintf("%.2f", float64(p.AmountCents)/100),
		"currency":    p.Currency,
		"orderNumber": fmt.Sprintf("%s:%s:%d", p.UserID, p.Tier, time.Now().Unix()),
		"email":       p.UserEmail,
		"redirect":    p.ReturnURL,
		"description": "HabitFlow " + tierLabel(p.Tier),
	}

	var result TiloPayPayment
	if err := c.post(ctx, "/processPayment", token, body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *TiloPayClient) login(ctx context.Context) (string, error) {
	body := map[string]string{
		"apiuser":  c.cfg.APIUser,
		"password": c.cfg.APIPassword,
		"key":      c.cfg.APIKey,
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/login", "", body, &result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("tilopay login: empty token")
	}

	return result.AccessToken, nil
}

func (c *TiloPayClient) post(
	ctx context.Context,
	path, token string,
	body, out any,
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("tilopay request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.cfg.BaseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("tilopay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tilopay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("tilopay %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tilopay response: %w", err)
	}

	return nil
}
