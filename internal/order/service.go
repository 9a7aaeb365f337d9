package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/events"
	"github.com/noah-isme/backend-loja/internal/installment"
	"github.com/noah-isme/backend-loja/internal/pricing"
	"github.com/noah-isme/backend-loja/internal/shipping"
	"github.com/noah-isme/backend-loja/internal/store"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order: not found")

// Service handles order persistence, the status lifecycle and recomputation.
type Service struct {
	Store        *store.Store
	Facade       pricing.Facade
	Shipping     *shipping.Service
	Installments *installment.Service
	Coupons      *coupon.Service
	Bus          *events.Bus
}

// Get loads a single order by id.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	found, err := s.Store.GetJSON(ctx, store.OrderKey(id), &o)
	if err != nil {
		return Order{}, err
	}
	if !found {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	keys, err := s.Store.Keys(ctx, store.OrderPattern())
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(keys))
	for _, key := range keys {
		var o Order
		found, err := s.Store.GetJSON(ctx, key, &o)
		if err != nil {
			return nil, err
		}
		if found {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
	return orders, nil
}

// Save persists the order document.
func (s *Service) Save(ctx context.Context, o Order) error {
	if o.ID == "" {
		return errors.New("order: id is required")
	}
	return s.Store.SetJSON(ctx, store.OrderKey(o.ID), o)
}

// UpdateStatus transitions an order to the next lifecycle state, recording a
// tracking code on shipment. Invalid transitions are rejected with a conflict.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, trackingCode string) (Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !next.Valid() {
		return Order{}, common.BadRequest("VALIDATION", fmt.Sprintf("unknown order status %q", next))
	}
	if !o.Status.CanTransition(next) {
		return Order{}, common.Conflict("INVALID_TRANSITION", fmt.Sprintf("cannot move order from %s to %s", o.Status, next))
	}
	o.Status = next
	if next == StatusShipped {
		trackingCode = strings.TrimSpace(trackingCode)
		if trackingCode == "" {
			return Order{}, common.BadRequest("VALIDATION", "tracking code is required when shipping")
		}
		o.TrackingCode = trackingCode
	}
	if err := s.Save(ctx, o); err != nil {
		return Order{}, err
	}
	s.emitStatusEvent(ctx, o)
	return o, nil
}

func (s *Service) emitStatusEvent(ctx context.Context, o Order) {
	if s.Bus == nil {
		return
	}
	var topic string
	switch o.Status {
	case StatusPaid:
		topic = events.TopicOrderPaid
	case StatusShipped:
		topic = events.TopicOrderShipped
	case StatusDelivered:
		topic = events.TopicOrderDelivered
	case StatusCancelled:
		topic = events.TopicOrderCancelled
	default:
		return
	}
	payload := map[string]any{
		"orderId":      o.ID,
		"email":        o.BuyerEmail,
		"trackingCode": o.TrackingCode,
	}
	if _, err := s.Bus.Emit(ctx, topic, o.ID, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("order_id", o.ID).Str("topic", topic).Msg("emit order event")
	}
}

// RecomputeResult compares the totals stored on an order with a fresh quote
// over the same product snapshots and the current store configuration.
type RecomputeResult struct {
	OrderID    string        `json:"orderId"`
	Stored     RecordedTotal `json:"stored"`
	Recomputed pricing.Quote `json:"recomputed"`
	Drift      bool          `json:"drift"`
}

// RecordedTotal is the totals block persisted at purchase time.
type RecordedTotal struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// Recompute prices the order again from its stored snapshots. Coupon
// eligibility gates are bypassed so an exhausted or disabled coupon still
// reproduces the discount it granted at purchase time.
func (s *Service) Recompute(ctx context.Context, id string) (RecomputeResult, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return RecomputeResult{}, err
	}
	shippingCfg, err := s.Shipping.Config(ctx)
	if err != nil {
		return RecomputeResult{}, err
	}
	installmentCfg, err := s.Installments.Config(ctx)
	if err != nil {
		return RecomputeResult{}, err
	}

	lines := make([]pricing.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, pricing.Line{
			Product:         item.Product,
			Qty:             item.Qty,
			SelectedOptions: item.SelectedOptions,
		})
	}

	var replayCoupon *coupon.Coupon
	if o.CouponCode != "" && s.Coupons != nil {
		c, err := s.Coupons.Lookup(ctx, o.CouponCode)
		if err == nil {
			c.Enabled = true
			c.MaxUses = 0
			c.CurrentUses = 0
			c.FirstPurchaseOnly = false
			replayCoupon = &c
		} else if !errors.Is(err, coupon.ErrNotFound) {
			return RecomputeResult{}, err
		}
	}

	quote, err := s.Facade.Quote(pricing.QuoteInput{
		Lines:             lines,
		Destination:       shipping.Destination{CEP: o.DestinationCEP},
		StorePickup:       o.StorePickup,
		Coupon:            replayCoupon,
		ShippingConfig:    shippingCfg,
		InstallmentConfig: installmentCfg,
	})
	if err != nil {
		return RecomputeResult{}, err
	}

	stored := RecordedTotal{
		Subtotal: o.Subtotal,
		Discount: o.Discount,
		Shipping: o.ShippingCost,
		Total:    o.Total,
	}
	drift := stored.Subtotal != quote.Subtotal ||
		stored.Discount != quote.Discount ||
		stored.Shipping != quote.Shipping ||
		stored.Total != quote.Total
	return RecomputeResult{
		OrderID:    o.ID,
		Stored:     stored,
		Recomputed: quote,
		Drift:      drift,
	}, nil
}
