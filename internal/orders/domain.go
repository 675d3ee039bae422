package orders

import (
	"errors"
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// Status enumerates the order lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusServed    Status = "SERVED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus tracks settlement of the order total.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusSettled PaymentStatus = "SETTLED"
)

// Order models one table order. Amounts are integer rupiah.
type Order struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	BusinessDayID int64         `json:"businessDayId"`
	TableNumber   int           `json:"tableNumber"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Total         int64         `json:"total"`
	CreatedBy     int64         `json:"createdBy"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Items         []OrderItem   `json:"items,omitempty"`
}

// OrderItem snapshots the product name and price at order time.
type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"orderId"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// CreateOrderInput bundles parameters for placing a new order.
type CreateOrderInput struct {
	TableNumber int
	Items       []OrderItemInput
	ActorID     int64
}

// OrderItemInput is a requested product line.
type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

// Validate ensures the create order input is coherent.
func (in CreateOrderInput) Validate() error {
	if in.TableNumber <= 0 {
		return errors.New("orders: table number required")
	}
	if len(in.Items) == 0 {
		return errors.New("orders: at least one item required")
	}
	for _, item := range in.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return errors.New("orders: item product and quantity required")
		}
	}
	return nil
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further kitchen work applies.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusServed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {StatusCompleted},
}

// CanTransition reports whether the lifecycle allows moving to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ErrInvalidStatus indicates an unsupported status transition.
var ErrInvalidStatus = errors.New("orders: invalid status transition")

// ErrUnknownProduct indicates an order line referencing a missing product.
var ErrUnknownProduct = errors.New("orders: unknown or inactive product")

// ErrDuplicateCode indicates an order code collision on insert.
var ErrDuplicateCode = errors.New("orders: duplicate order code")

// ErrDayClosed rejects writes against an order whose business day has
// been closed since the order was loaded.
var ErrDayClosed = shared.NewStateError("hari usaha sudah ditutup, pesanan tidak dapat diubah")
