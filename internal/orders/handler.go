package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/shared"
)

// Handler wires HTTP endpoints for order management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers order routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{orderID}", h.get)
		r.Patch("/{orderID}/status", h.updateStatus)
		r.Post("/{orderID}/settle", h.settle)
	})
}

type createOrderRequest struct {
	TableNumber int                `json:"tableNumber" validate:"required,min=1"`
	Items       []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "permintaan tidak valid")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "data pesanan tidak lengkap")
		return
	}
	in := CreateOrderInput{TableNumber: req.TableNumber, ActorID: actor.ID}
	for _, item := range req.Items {
		in.Items = append(in.Items, OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.service.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			shared.RespondError(w, http.StatusBadRequest, "produk tidak ditemukan atau tidak aktif")
			return
		}
		shared.RespondServiceError(w, h.logger, "create order", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	result, err := h.service.ListToday(r.Context(), status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			shared.RespondError(w, http.StatusBadRequest, "status pesanan tidak dikenal")
			return
		}
		shared.RespondServiceError(w, h.logger, "list orders", err)
		return
	}
	if result == nil {
		result = []Order{}
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "id pesanan tidak valid")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondServiceError(w, h.logger, "get order", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "id pesanan tidak valid")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "permintaan tidak valid")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "status pesanan wajib diisi")
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			shared.RespondError(w, http.StatusBadRequest, "status pesanan tidak dikenal")
			return
		}
		shared.RespondServiceError(w, h.logger, "update order status", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, order)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "id pesanan tidak valid")
		return
	}
	order, err := h.service.Settle(r.Context(), id)
	if err != nil {
		shared.RespondServiceError(w, h.logger, "settle order", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, order)
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}
