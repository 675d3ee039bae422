package inventory

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/shared"
)

// AdminGuard restricts a route subtree to administrator actors.
type AdminGuard func(http.Handler) http.Handler

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	admin     AdminGuard
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, admin AdminGuard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		admin:     admin,
	}
}

// MountRoutes registers inventory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/low-stock", h.listLowStock)
		r.Group(func(r chi.Router) {
			if h.admin != nil {
				r.Use(h.admin)
			}
			r.Post("/adjust", h.adjust)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, "list products", err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	shared.RespondJSON(w, http.StatusOK, products)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListLowStock(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, "list low stock", err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	shared.RespondJSON(w, http.StatusOK, products)
}

type adjustRequest struct {
	ProductID int64  `json:"productId" validate:"required,min=1"`
	Delta     int64  `json:"delta" validate:"required"`
	Reason    string `json:"reason" validate:"required,min=3"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "permintaan tidak valid")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "data penyesuaian tidak lengkap")
		return
	}
	product, err := h.service.Adjust(r.Context(), AdjustInput{
		ProductID: req.ProductID,
		Delta:     req.Delta,
		Reason:    req.Reason,
		ActorID:   actor.ID,
	})
	if err != nil {
		shared.RespondServiceError(w, h.logger, "adjust stock", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, product)
}
