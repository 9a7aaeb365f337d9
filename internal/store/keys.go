package store

import "strings"

// Key layout for the site-wide configuration store.
const (
	KeyShippingConfig    = "cfg:shipping"
	KeyInstallmentConfig = "cfg:installments"

	prefixProduct    = "product:"
	prefixCoupon     = "coupon:"
	prefixCouponUses = "coupon:uses:"
	prefixStock      = "stock:"
	prefixOrder      = "order:"
	prefixUserOrders = "orders:count:"
	prefixEvent      = "event:"
)

// ProductKey returns the document key for a product id.
func ProductKey(id string) string { return prefixProduct + id }

// CouponKey returns the document key for an uppercase coupon code.
func CouponKey(code string) string { return prefixCoupon + strings.ToUpper(code) }

// CouponUsesKey returns the redemption counter key for a coupon code.
func CouponUsesKey(code string) string { return prefixCouponUses + strings.ToUpper(code) }

// StockKey returns the managed stock counter key for a product id.
func StockKey(productID string) string { return prefixStock + productID }

// OrderKey returns the document key for an order id.
func OrderKey(id string) string { return prefixOrder + id }

// UserOrderCountKey returns the per-buyer placed-order counter key.
func UserOrderCountKey(userID string) string { return prefixUserOrders + userID }

// EventKey returns the document key for a domain event id.
func EventKey(id string) string { return prefixEvent + id }

// ProductPattern matches all product documents.
func ProductPattern() string { return prefixProduct + "*" }

// OrderPattern matches all order documents.
func OrderPattern() string { return prefixOrder + "*" }

// CouponPattern matches all coupon documents (the uses counters share the
// prefix, callers must skip them).
func CouponPattern() string { return prefixCoupon + "*" }

// IsCouponUsesKey reports whether the key is a redemption counter rather than
// a coupon document.
func IsCouponUsesKey(key string) bool { return strings.HasPrefix(key, prefixCouponUses) }

// ProductIDFromKey strips the product prefix.
func ProductIDFromKey(key string) string { return strings.TrimPrefix(key, prefixProduct) }

// OrderIDFromKey strips the order prefix.
func OrderIDFromKey(key string) string { return strings.TrimPrefix(key, prefixOrder) }
