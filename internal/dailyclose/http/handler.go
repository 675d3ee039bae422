package dailyclosehttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/dailyclose"
	"github.com/warungpos/warungpos/internal/shared"
)

type closeService interface {
	Status(ctx context.Context) (dailyclose.CloseStatus, error)
	Validate(ctx context.Context) (dailyclose.ValidationVerdict, error)
	Execute(ctx context.Context, actor shared.Actor) (dailyclose.CloseResult, error)
	Reopen(ctx context.Context, actor shared.Actor) error
}

// AdminGuard restricts a route subtree to administrator actors.
type AdminGuard func(http.Handler) http.Handler

// Handler wires HTTP endpoints for the daily-close workflow.
type Handler struct {
	logger  *slog.Logger
	service closeService
	admin   AdminGuard
}

// NewHandler constructs a daily-close HTTP handler.
func NewHandler(logger *slog.Logger, service closeService, admin AdminGuard) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		admin:   admin,
	}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/daily-close", func(r chi.Router) {
		r.Get("/status", h.getStatus)
		r.Post("/validate", h.validate)
		r.Post("/execute", h.execute)
		r.Group(func(r chi.Router) {
			if h.admin != nil {
				r.Use(h.admin)
			}
			r.Post("/reopen", h.reopen)
		})
	})
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, "get close status", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.service.Validate(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, "validate pre-close", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, verdict)
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	result, err := h.service.Execute(r.Context(), actor)
	if err != nil {
		shared.RespondServiceError(w, h.logger, "execute close", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	if err := h.service.Reopen(r.Context(), actor); err != nil {
		shared.RespondServiceError(w, h.logger, "reopen day", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}
