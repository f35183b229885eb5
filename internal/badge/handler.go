// AngelaMos | 2026
// handler.go

package badge

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/habitflow/internal/core"
	"github.com/carterperez-dev/habitflow/internal/middleware"
)

type Handler struct {
	service *Service
	db      *sqlx.DB
}

func NewHandler(service *Service, db *sqlx.DB) *Handler {
	return &Handler{service: service, db: db}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/badges", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.MyBadges)
		r.Get("/unseen", h.Unseen)
		r.Post("/mark-seen", h.MarkSeen)
		r.Post("/check", h.Check)
	})
}

func (h *Handler) MyBadges(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.MyBadges(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Unseen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	unseen, err := h.service.UnseenBadges(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, unseen)
}

func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.MarkSeen(r.Context(), userID); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	awarded, err := h.service.CheckAndAward(
		r.Context(),
		h.db,
		userID,
		time.Now(),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if awarded == nil {
		awarded = []string{}
	}

	core.OK(w, CheckResponse{NewBadges: awarded})
}
