// AngelaMos | 2026
// handler.go

package period

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
	r.Route("/periods", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Dashboard)
		r.Get("/current-phase", h.CurrentPhase)
		r.Get("/settings", h.Settings)
		r.Put("/settings", h.UpdateSettings)
		r.Post("/cycles", h.AddCycle)
		r.Put("/cycles/{cycleID}", h.UpdateCycle)
		r.Delete("/cycles/{cycleID}", h.DeleteCycle)
		r.Put("/logs", h.LogDay)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.JSONError(w, core.NewAppError(
				core.ErrForbidden,
				"enable period tracking in settings first",
				http.StatusForbidden,
				"TRACKING_DISABLED",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CurrentPhase(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	phase, err := h.service.CurrentPhase(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if phase == nil {
		core.NotFound(w, "cycle data")
		return
	}

	core.OK(w, phase)
}

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	settings, err := h.service.Settings(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(settings))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(settings))
}

func (h *Handler) AddCycle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AddCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	cycle, err := h.service.AddCycle(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToCycleResponse(cycle))
}

func (h *Handler) UpdateCycle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	var req UpdateCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	cycle, err := h.service.UpdateCycle(r.Context(), userID, cycleID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToCycleResponse(cycle))
}

func (h *Handler) DeleteCycle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	if err := h.service.DeleteCycle(r.Context(), userID, cycleID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) LogDay(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req DailyLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	log, err := h.service.LogDay(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToDailyLogResponse(log))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "cycle")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid cycle dates")
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "this date overlaps with an existing period cycle")
	default:
		core.InternalServerError(w, err)
	}
}
