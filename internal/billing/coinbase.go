// AngelaMos | 2026
// coinbase.go

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

const coinbaseAPIBase = "https://api.commerce.coinbase.com"

// CoinbaseClient creates Commerce charges for crypto payments. Recurring
// tiers still go through here as fixed-price charges renewed manually.
type CoinbaseClient struct {
	cfg  config.CoinbaseConfig
	http *http.Client
}

func NewCoinbaseClient(cfg config.CoinbaseConfig) *CoinbaseClient {
	return &CoinbaseClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type CoinbaseCharge struct {
	ID        string `json:"id"`
	HostedURL string `json:"hosted_url"`
}

type CoinbaseChargeParams struct {
	UserID      string
	Tier        string
	AmountCents int64
	Currency    string
	RedirectURL string
	CancelURL   string
}

func (c *CoinbaseClient) CreateCharge(
	ctx context.Context,
	p CoinbaseChargeParams,
) (*CoinbaseCharge, error) {
	body := map[string]any{
		"name":         "HabitFlow " + tierLabel(p.Tier),
		"description":  "HabitFlow premium subscription",
		"pricing_type": "fixed_price",
		"local_price": map[string]string{
			"amount":   fmt.Sprintf("%.2f", float64(p.AmountCents)/100),
			"currency": strings.ToUpper(p.Currency),
		},
		"metadata": map[string]string{
			"user_id": p.UserID,
			"tier":    p.Tier,
		},
		"redirect_url": p.RedirectURL,
		"cancel_url":   p.CancelURL,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("coinbase request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		coinbaseAPIBase+"/charges",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("coinbase request: %w", err)
	}
	req.Header.Set("X-CC-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-CC-Version", "2018-03-22")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coinbase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("coinbase charges: status %d", resp.StatusCode)
	}

	var result struct {
		Data CoinbaseCharge `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("coinbase response: %w", err)
	}

	return &result.Data, nil
}
