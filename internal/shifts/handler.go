package shifts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/shared"
)

// Handler wires HTTP endpoints for shift management.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers shift routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/shifts", func(r chi.Router) {
		r.Get("/open", h.listOpen)
		r.Post("/open", h.open)
		r.Post("/close", h.close)
	})
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	shift, err := h.service.Open(r.Context(), actor)
	if err != nil {
		shared.RespondServiceError(w, h.logger, "open shift", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, shift)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	shift, err := h.service.Close(r.Context(), actor)
	if err != nil {
		shared.RespondServiceError(w, h.logger, "close shift", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, shift)
}

func (h *Handler) listOpen(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.service.ListOpen(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, "list open shifts", err)
		return
	}
	if shifts == nil {
		shifts = []Shift{}
	}
	shared.RespondJSON(w, http.StatusOK, shifts)
}
