// AngelaMos | 2026
// handler.go

package challenge

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
	r.Route("/challenges", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.MyChallenges)
		r.Post("/", h.Create)
		r.Post("/invites/{token}/accept", h.AcceptInvite)

		r.Route("/{challengeID}", func(r chi.Router) {
			r.Get("/", h.Detail)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/invite", h.Invite)
			r.Get("/shareable-link", h.ShareableLink)
			r.Post("/habits", h.LinkHabit)
			r.Delete("/habits/{habitID}", h.UnlinkHabit)
			r.Post("/leave", h.Leave)
			r.Get("/leaderboard", h.Leaderboard)
		})
	})
}

func (h *Handler) MyChallenges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.MyChallenges(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	resp, err := h.service.Detail(r.Context(), userID, challengeID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.JSONError(w, core.NewAppError(
				core.ErrForbidden,
				"challenge creation requires a premium subscription",
				http.StatusForbidden,
				"PREMIUM_REQUIRED",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToChallengeResponse(created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	var req UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	updated, err := h.service.Update(r.Context(), userID, challengeID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToChallengeResponse(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	if err := h.service.Delete(r.Context(), userID, challengeID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Invite(r.Context(), userID, challengeID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ShareableLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	resp, err := h.service.ShareableLink(r.Context(), userID, challengeID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	token := chi.URLParam(r, "token")

	resp, err := h.service.AcceptInvite(r.Context(), userID, token)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			core.JSONError(w, core.NewAppError(
				core.ErrTokenExpired,
				"this invite link has expired",
				http.StatusGone,
				"INVITE_EXPIRED",
			))
			return
		}
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) LinkHabit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	var req LinkHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	linked, err := h.service.LinkHabit(r.Context(), userID, challengeID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "habit_id or new_habit_name is required")
			return
		}
		h.writeError(w, err)
		return
	}

	core.Created(w, map[string]string{
		"habit_id":   linked.ID,
		"habit_name": linked.Name,
	})
}

func (h *Handler) UnlinkHabit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")
	habitID := chi.URLParam(r, "habitID")

	err := h.service.UnlinkHabit(r.Context(), userID, challengeID, habitID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	if err := h.service.Leave(r.Context(), userID, challengeID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	challengeID := chi.URLParam(r, "challengeID")

	resp, err := h.service.Leaderboard(r.Context(), userID, challengeID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "challenge")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
