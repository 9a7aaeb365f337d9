package coupon

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCoupon is returned when the code is unknown or disabled.
	ErrInvalidCoupon = errors.New("coupon not found or disabled")
	// ErrCouponExhausted indicates the usage cap has been reached.
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	// ErrNotFirstPurchase is returned for first-purchase-only coupons when the buyer has prior orders.
	ErrNotFirstPurchase = errors.New("coupon valid for first purchase only")
	// ErrNotApplicable is returned when no cart line falls within the coupon's product scope.
	ErrNotApplicable = errors.New("coupon not applicable to cart")
)

// Discount kinds.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Coupon is the authored coupon document. Codes are stored uppercase and
// matched case-insensitively.
type Coupon struct {
	Code              string   `json:"code" validate:"required"`
	Type              string   `json:"type" validate:"required,oneof=percentage fixed"`
	Value             int64    `json:"value" validate:"gte=0"`
	MaxUses           int64    `json:"maxUses" validate:"gte=0"`
	CurrentUses       int64    `json:"currentUses"`
	FirstPurchaseOnly bool     `json:"firstPurchaseOnly"`
	ProductIDs        []string `json:"productIds,omitempty"`
	Enabled           bool     `json:"enabled"`
}

// Item is one cart line as seen by the coupon engine.
type Item struct {
	ProductID string
	Subtotal  int64
}

// NormalizeCode uppercases and trims a coupon code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks eligibility in order: enabled, usage cap, first purchase,
// product scope. Each failure is distinct and surfaced verbatim to the buyer.
func Validate(c Coupon, items []Item, priorOrders int64) error {
	if !c.Enabled {
		return ErrInvalidCoupon
	}
	if c.MaxUses > 0 && c.CurrentUses >= c.MaxUses {
		return ErrCouponExhausted
	}
	if c.FirstPurchaseOnly && priorOrders > 0 {
		return ErrNotFirstPurchase
	}
	if len(c.ProductIDs) > 0 && !anyScopedLine(items, c) {
		return ErrNotApplicable
	}
	return nil
}

// EligibleSubtotal is the portion of the cart the discount applies to: the
// whole cart when the coupon is unscoped, otherwise the sum of matching lines.
func EligibleSubtotal(items []Item, c Coupon) int64 {
	var total int64
	scoped := len(c.ProductIDs) > 0
	for _, item := range items {
		if item.Subtotal <= 0 {
			continue
		}
		if !scoped || inScope(c, item.ProductID) {
			total += item.Subtotal
		}
	}
	return total
}

// Discount computes the discount amount over the eligible subtotal, capped so
// it never exceeds it.
func Discount(eligible int64, c Coupon) int64 {
	if eligible <= 0 {
		return 0
	}
	var discount int64
	switch c.Type {
	case TypePercentage:
		discount = eligible * c.Value / 100
	case TypeFixed:
		discount = c.Value
	default:
		return 0
	}
	if discount > eligible {
		discount = eligible
	}
	if discount < 0 {
		return 0
	}
	return discount
}

func anyScopedLine(items []Item, c Coupon) bool {
	for _, item := range items {
		if inScope(c, item.ProductID) {
			return true
		}
	}
	return false
}

func inScope(c Coupon, productID string) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}
