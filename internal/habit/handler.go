// AngelaMos | 2026
// handler.go

package habit

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/middleware"
)

type Handler struct {
	service   *Service
	users     UserDirectory
	validator *validator.Validate
}

func NewHandler(service *Service, users UserDirectory) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/habits", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.Dashboard)
		r.Post("/", h.Create)
		r.Get("/{habitID}", h.Get)
		r.Put("/{habitID}", h.Update)
		r.Post("/{habitID}/archive", h.Archive)
		r.Post("/{habitID}/unarchive", h.Unarchive)
		r.Delete("/{habitID}", h.Delete)
		r.Post("/{habitID}/complete", h.Complete)
		r.Post("/{habitID}/undo", h.Undo)
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.Dashboard(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateHabitRequest
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
				"habit limit reached, upgrade to add more habits",
				http.StatusForbidden,
				"HABIT_LIMIT_REACHED",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToHabitResponse(created, h.localToday(r, userID)))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	found, err := h.service.Get(r.Context(), userID, habitID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHabitResponse(found, h.localToday(r, userID)))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	updated, err := h.service.Update(r.Context(), userID, habitID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHabitResponse(updated, h.localToday(r, userID)))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *Handler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *Handler) setArchived(
	w http.ResponseWriter,
	r *http.Request,
	archived bool,
) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	updated, err := h.service.SetArchived(
		r.Context(),
		userID,
		habitID,
		archived,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToHabitResponse(updated, h.localToday(r, userID)))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	if err := h.service.Delete(r.Context(), userID, habitID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	resp, err := h.service.Complete(r.Context(), userID, habitID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	habitID := chi.URLParam(r, "habitID")

	resp, err := h.service.Undo(r.Context(), userID, habitID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "habit")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) localToday(r *http.Request, userID string) time.Time {
	owner, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		now := time.Now().UTC()
		return time.Date(
			now.Year(), now.Month(), now.Day(),
			0, 0, 0, 0, time.UTC,
		)
	}
	return owner.LocalDate(time.Now())
}
