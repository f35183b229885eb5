// AngelaMos | 2026
// webhook.go

package billing

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/habitflow/internal/config"
	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/user"
)

const maxWebhookBody = 1 << 20

// WebhookHandler terminates provider callbacks. Each route verifies the
// provider's signature on the raw body before any JSON parsing, then maps
// event types onto reconciler calls. Unknown event types are acknowledged
// so providers stop retrying them.
type WebhookHandler struct {
	reconciler *Reconciler
	users      user.Repository
	paypal     *PayPalClient
	cfg        config.PaymentsConfig
}

func NewWebhookHandler(
	reconciler *Reconciler,
	users user.Repository,
	paypal *PayPalClient,
	cfg config.PaymentsConfig,
) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		users:      users,
		paypal:     paypal,
		cfg:        cfg,
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/stripe", h.Stripe)
		r.Post("/paypal", h.PayPal)
		r.Post("/coinbase", h.Coinbase)
		r.Post("/tilopay", h.TiloPay)
	})
}

type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := readBody(r)
	if err != nil {
		core.BadRequest(w, "unreadable payload")
		return
	}

	err = VerifyStripeSignature(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.cfg.Stripe.WebhookSecret,
		time.Now(),
	)
	if err != nil {
		slog.Warn("stripe webhook rejected", "error", err)
		core.BadRequest(w, "invalid signature")
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		core.BadRequest(w, "malformed event")
		return
	}

	if err := h.handleStripeEvent(r, &event); err != nil {
		slog.Error("stripe webhook failed", "type", event.Type, "error", err)
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{"status": "received"})
}

func (h *WebhookHandler) handleStripeEvent(
	r *http.Request,
	event *stripeEvent,
) error {
	ctx := r.Context()

	switch event.Type {
	case "checkout.session.completed":
		var session struct {
			ID                string            `json:"id"`
			Customer          string            `json:"customer"`
			Subscription      string            `json:"subscription"`
			ClientReferenceID string            `json:"client_reference_id"`
			Metadata          map[string]string `json:"metadata"`
			AmountTotal       int64             `json:"amount_total"`
			Currency          string            `json:"currency"`
			PaymentStatus     string            `json:"payment_status"`
		}
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("parse checkout session: %w", err)
		}
		if session.PaymentStatus != "paid" {
			return nil
		}

		userID := session.ClientReferenceID
		if userID == "" {
			userID = session.Metadata["user_id"]
		}
		tier := session.Metadata["tier"]
		if userID == "" || tier == "" {
			slog.Warn("checkout session missing metadata", "session", session.ID)
			return nil
		}

		providerSubID := session.Subscription
		if providerSubID == "" {
			providerSubID = session.Customer
		}

		return h.reconciler.Activate(ctx, ActivateParams{
			UserID:                 userID,
			Tier:                   tier,
			Provider:               ProviderStripe,
			ProviderSubscriptionID: providerSubID,
			ProviderTransactionID:  session.ID,
			AmountCents:            session.AmountTotal,
			Currency:               strings.ToUpper(session.Currency),
		})

	case "customer.subscription.updated":
		var sub struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			CurrentPeriodEnd int64  `json:"current_period_end"`
		}
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		if sub.Status != "active" || sub.CurrentPeriodEnd == 0 {
			return nil
		}
		return h.reconciler.Extend(
			ctx, ProviderStripe, sub.ID,
			time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		)

	case "customer.subscription.deleted":
		var sub struct {
			Customer string `json:"customer"`
		}
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("parse subscription: %w", err)
		}
		account, err := h.users.GetByStripeCustomerID(ctx, sub.Customer)
		if err != nil {
			if core.IsNotFound(err) {
				return nil
			}
			return err
		}
		_, err = h.reconciler.Downgrade(ctx, account.ID, "cancelled")
		return err

	case "invoice.payment_failed":
		var invoice struct {
			ID        string `json:"id"`
			Customer  string `json:"customer"`
			AmountDue int64  `json:"amount_due"`
			Currency  string `json:"currency"`
		}
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return fmt.Errorf("parse invoice: %w", err)
		}
		account, err := h.users.GetByStripeCustomerID(ctx, invoice.Customer)
		if err != nil {
			if core.IsNotFound(err) {
				return nil
			}
			return err
		}
		return h.reconciler.RecordFailure(
			ctx, account.ID, ProviderStripe,
			invoice.ID, invoice.ID,
			invoice.AmountDue, strings.ToUpper(invoice.Currency),
		)
	}

	slog.Debug("stripe event ignored", "type", event.Type)
	return nil
}

func (h *WebhookHandler) PayPal(w http.ResponseWriter, r *http.Request) {
	payload, err := readBody(r)
	if err != nil {
		core.BadRequest(w, "unreadable payload")
		return
	}

	valid, err := h.paypal.VerifyWebhook(r.Context(), r.Header, payload)
	if err != nil {
		slog.Error("paypal webhook verification failed", "error", err)
		core.InternalServerError(w, err)
		return
	}
	if !valid {
		slog.Warn("paypal webhook rejected")
		core.BadRequest(w, "invalid signature")
		return
	}

	var event struct {
		EventType string `json:"event_type"`
		Resource  struct {
			ID       string `json:"id"`
			CustomID string `json:"custom_id"`
			Amount   struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"amount"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		core.BadRequest(w, "malformed event")
		return
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED", "CHECKOUT.ORDER.APPROVED":
		userID, tier, ok := splitReference(event.Resource.CustomID)
		if !ok {
			slog.Warn("paypal event missing reference", "id", event.Resource.ID)
			break
		}
		err := h.reconciler.Activate(r.Context(), ActivateParams{
			UserID:                userID,
			Tier:                  tier,
			Provider:              ProviderPayPal,
			ProviderTransactionID: event.Resource.ID,
			AmountCents:           parseAmountCents(event.Resource.Amount.Value),
			Currency:              event.Resource.Amount.CurrencyCode,
		})
		if err != nil {
			slog.Error("paypal activation failed", "error", err)
			core.InternalServerError(w, err)
			return
		}

	case "BILLING.SUBSCRIPTION.CANCELLED", "BILLING.SUBSCRIPTION.SUSPENDED":
		userID, _, ok := splitReference(event.Resource.CustomID)
		if ok {
			_, err := h.reconciler.Downgrade(r.Context(), userID, "cancelled")
			if err != nil {
				slog.Error("paypal downgrade failed", "error", err)
				core.InternalServerError(w, err)
				return
			}
		}

	default:
		slog.Debug("paypal event ignored", "type", event.EventType)
	}

	core.OK(w, map[string]string{"status": "received"})
}

func (h *WebhookHandler) Coinbase(w http.ResponseWriter, r *http.Request) {
	payload, err := readBody(r)
	if err != nil {
		core.BadRequest(w, "unreadable payload")
		return
	}

	err = VerifyHexHMAC(
		payload,
		r.Header.Get("X-CC-Webhook-Signature"),
		h.cfg.Coinbase.WebhookSecret,
	)
	if err != nil {
		slog.Warn("coinbase webhook rejected", "error", err)
		core.BadRequest(w, "invalid signature")
		return
	}

	var event struct {
		Event struct {
			Type string `json:"type"`
			Data struct {
				ID       string            `json:"id"`
				Metadata map[string]string `json:"metadata"`
				Pricing  struct {
					Local struct {
						Amount   string `json:"amount"`
						Currency string `json:"currency"`
					} `json:"local"`
				} `json:"pricing"`
			} `json:"data"`
		} `json:"event"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		core.BadRequest(w, "malformed event")
		return
	}

	switch event.Event.Type {
	case "charge:confirmed", "charge:resolved":
		userID := event.Event.Data.Metadata["user_id"]
		tier := event.Event.Data.Metadata["tier"]
		if userID == "" || tier == "" {
			slog.Warn("coinbase charge missing metadata", "id", event.Event.Data.ID)
			break
		}
		err := h.reconciler.Activate(r.Context(), ActivateParams{
			UserID:                userID,
			Tier:                  tier,
			Provider:              ProviderCoinbase,
			ProviderTransactionID: event.Event.Data.ID,
			AmountCents:           parseAmountCents(event.Event.Data.Pricing.Local.Amount),
			Currency:              event.Event.Data.Pricing.Local.Currency,
		})
		if err != nil {
			slog.Error("coinbase activation failed", "error", err)
			core.InternalServerError(w, err)
			return
		}

	case "charge:failed":
		userID := event.Event.Data.Metadata["user_id"]
		if userID != "" {
			err := h.reconciler.RecordFailure(
				r.Context(), userID, ProviderCoinbase,
				event.Event.Data.ID, "",
				parseAmountCents(event.Event.Data.Pricing.Local.Amount),
				event.Event.Data.Pricing.Local.Currency,
			)
			if err != nil {
				slog.Error("coinbase failure record failed", "error", err)
				core.InternalServerError(w, err)
				return
			}
		}

	default:
		slog.Debug("coinbase event ignored", "type", event.Event.Type)
	}

	core.OK(w, map[string]string{"status": "received"})
}

func (h *WebhookHandler) TiloPay(w http.ResponseWriter, r *http.Request) {
	payload, err := readBody(r)
	if err != nil {
		core.BadRequest(w, "unreadable payload")
		return
	}

	err = VerifyHexHMAC(
		payload,
		r.Header.Get("X-Tilopay-Signature"),
		h.cfg.TiloPay.WebhookSecret,
	)
	if err != nil {
		slog.Warn("tilopay webhook rejected", "error", err)
		core.BadRequest(w, "invalid signature")
		return
	}

	var event struct {
		Status      string `json:"status"`
		OrderNumber string `json:"orderNumber"`
		Transaction string `json:"transaction"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		core.BadRequest(w, "malformed event")
		return
	}

	userID, tier, ok := splitReference(event.OrderNumber)
	if !ok {
		slog.Warn("tilopay event missing order reference")
		core.OK(w, map[string]string{"status": "received"})
		return
	}

	switch strings.ToLower(event.Status) {
	case "completed", "approved", "success":
		err := h.reconciler.Activate(r.Context(), ActivateParams{
			UserID:                userID,
			Tier:                  tier,
			Provider:              ProviderTiloPay,
			ProviderTransactionID: event.Transaction,
			AmountCents:           parseAmountCents(event.Amount),
			Currency:              event.Currency,
		})
		if err != nil {
			slog.Error("tilopay activation failed", "error", err)
			core.InternalServerError(w, err)
			return
		}

	case "failed", "rejected", "error":
		err := h.reconciler.RecordFailure(
			r.Context(), userID, ProviderTiloPay,
			event.Transaction, "",
			parseAmountCents(event.Amount), event.Currency,
		)
		if err != nil {
			slog.Error("tilopay failure record failed", "error", err)
			core.InternalServerError(w, err)
			return
		}

	default:
		slog.Debug("tilopay event ignored", "status", event.Status)
	}

	core.OK(w, map[string]string{"status": "received"})
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
}

// splitReference unpacks the "<user_id>:<tier>[:<nonce>]" reference we
// attach to provider orders.
func splitReference(ref string) (userID, tier string, ok bool) {
	parts := strings.Split(ref, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// parseAmountCents converts a decimal money string like "9.99" to cents.
func parseAmountCents(s string) int64 {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(amount * 100))
}
