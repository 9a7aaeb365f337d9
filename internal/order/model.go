package order

import (
	"time"

	"github.com/noah-isme/backend-loja/internal/catalog"
)

// Status is the order lifecycle state.
type Status string

// Lifecycle: pending → paid → shipped → delivered. Cancelled is terminal and
// reachable from any non-terminal state.
const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ItemSnapshot freezes a product at purchase time so order totals stay
// recomputable after the catalog changes.
type ItemSnapshot struct {
	Product         catalog.Product   `json:"product"`
	Qty             int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	UnitPrice       int64             `json:"unitPrice"`
	Subtotal        int64             `json:"subtotal"`
}

// Plan is the installment choice recorded on the order.
type Plan struct {
	Count int   `json:"count"`
	Value int64 `json:"value"`
}

// Order is the persisted order document.
type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Date           time.Time      `json:"date"`
	Items          []ItemSnapshot `json:"items"`
	Subtotal       int64          `json:"subtotal"`
	Discount       int64          `json:"discount"`
	ShippingCost   int64          `json:"shippingCost"`
	Total          int64          `json:"total"`
	Installments   Plan           `json:"installments"`
	PaymentMethod  string         `json:"paymentMethod"`
	Status         Status         `json:"status"`
	TrackingCode   string         `json:"trackingCode,omitempty"`
	CouponCode     string         `json:"couponCode,omitempty"`
	DestinationCEP string         `json:"destinationCep,omitempty"`
	StorePickup    bool           `json:"storePickup,omitempty"`
	ShippingRule   string         `json:"shippingRule,omitempty"`
	BuyerEmail     string         `json:"buyerEmail,omitempty"`
}
