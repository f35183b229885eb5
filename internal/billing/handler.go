// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/billing", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/checkout", h.Checkout)
		r.Post("/cancel", h.Cancel)
		r.Get("/history", h.History)
	})
}

type CheckoutRequest struct {
	Tier     string `json:"tier" validate:"required,oneof=monthly annual lifetime"`
	Provider string `json:"provider" validate:"required,oneof=stripe paypal coinbase tilopay"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Checkout(r.Context(), userID, req.Tier, req.Provider)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "subscription already active for this tier")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid checkout request")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.service.Cancel(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "subscription")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "lifetime access cannot be cancelled")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, map[string]any{
		"previous_tier":    result.PreviousTier,
		"habits_over_free": result.HabitsOverFree,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.History(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
