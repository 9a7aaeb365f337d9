package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-loja/internal/catalog"
	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/events"
	"github.com/noah-isme/backend-loja/internal/installment"
	"github.com/noah-isme/backend-loja/internal/lock"
	"github.com/noah-isme/backend-loja/internal/obs"
	"github.com/noah-isme/backend-loja/internal/order"
	"github.com/noah-isme/backend-loja/internal/pricing"
	"github.com/noah-isme/backend-loja/internal/shipping"
	"github.com/noah-isme/backend-loja/internal/store"
)

const checkoutLockTTL = 10 * time.Second

// CartItem is one requested line in a quote or checkout call.
type CartItem struct {
	ProductID       string            `json:"productId"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

// QuoteRequest prices a cart without placing an order.
type QuoteRequest struct {
	Items           []CartItem `json:"items"`
	CEP             string     `json:"cep,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	StorePickup     bool       `json:"storePickup,omitempty"`
	ShippingService string     `json:"shippingService,omitempty"`
	CouponCode      string     `json:"couponCode,omitempty"`
	UserID          string     `json:"userId,omitempty"`
}

// PlaceOrderRequest finalises a cart into an order.
type PlaceOrderRequest struct {
	QuoteRequest
	Email         string `json:"email"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Installments  int    `json:"installments,omitempty"`
}

// Service orchestrates quoting and order placement. Placement holds a
// per-buyer lock around the coupon and stock mutations so two concurrent
// checkouts cannot double-spend either.
type Service struct {
	Store        *store.Store
	Catalog      *catalog.Service
	Coupons      *coupon.Service
	Shipping     *shipping.Service
	Installments *installment.Service
	Orders       *order.Service
	Facade       pricing.Facade
	Locker       lock.Locker
	Bus          *events.Bus
}

// Quote prices the cart against the live catalog and configuration.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (pricing.Quote, error) {
	quoted, _, err := s.buildQuote(ctx, req)
	if err != nil {
		countQuote("error")
		return pricing.Quote{}, err
	}
	countQuote("ok")
	return quoted, nil
}

// ShippingQuote resolves shipping alone, for the cart page cost preview.
func (s *Service) ShippingQuote(ctx context.Context, req QuoteRequest) (shipping.Quote, error) {
	req.CouponCode = ""
	lines, err := s.loadLines(ctx, req.Items)
	if err != nil {
		return shipping.Quote{}, err
	}
	cfg, err := s.Shipping.Config(ctx)
	if err != nil {
		return shipping.Quote{}, err
	}
	items, subtotal, err := s.shippingItems(lines)
	if err != nil {
		return shipping.Quote{}, err
	}
	quote := shipping.Resolve(cfg, shipping.Input{
		Items:       items,
		Subtotal:    subtotal,
		Destination: shipping.Destination{CEP: req.CEP, City: req.City, State: req.State},
		StorePickup: req.StorePickup,
	})
	if obs.ShippingRuleMatched != nil {
		obs.ShippingRuleMatched.WithLabelValues(quote.Rule).Inc()
	}
	return quote, nil
}

// PlaceOrder validates, prices and persists an order. Coupon redemption and
// stock decrements happen atomically: any failure rolls back what was already
// taken before the error is returned.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (order.Order, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return order.Order{}, common.BadRequest("VALIDATION", "buyer email is required")
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.ToLower(email)
	}
	req.UserID = userID

	quoted, prep, err := s.buildQuote(ctx, req.QuoteRequest)
	if err != nil {
		return order.Order{}, err
	}
	plan, err := pickInstallment(quoted.Installments, req.Installments)
	if err != nil {
		return order.Order{}, err
	}

	var placed order.Order
	lockKey := "checkout:lock:" + userID
	err = s.Locker.WithLock(ctx, lockKey, checkoutLockTTL, func(ctx context.Context) error {
		placed, err = s.commit(ctx, req, quoted, prep, plan)
		return err
	})
	if err != nil {
		return order.Order{}, err
	}
	return placed, nil
}

// quotePrep carries intermediate state from quoting into the commit phase.
type quotePrep struct {
	lines  []pricing.Line
	coupon *coupon.Coupon
}

func (s *Service) buildQuote(ctx context.Context, req QuoteRequest) (pricing.Quote, quotePrep, error) {
	lines, err := s.loadLines(ctx, req.Items)
	if err != nil {
		return pricing.Quote{}, quotePrep{}, err
	}
	shippingCfg, err := s.Shipping.Config(ctx)
	if err != nil {
		return pricing.Quote{}, quotePrep{}, err
	}
	installmentCfg, err := s.Installments.Config(ctx)
	if err != nil {
		return pricing.Quote{}, quotePrep{}, err
	}

	var (
		applied     *coupon.Coupon
		priorOrders int64
	)
	if code := coupon.NormalizeCode(req.CouponCode); code != "" {
		c, err := s.Coupons.Lookup(ctx, code)
		if err != nil {
			if errors.Is(err, coupon.ErrNotFound) {
				return pricing.Quote{}, quotePrep{}, couponAppError(coupon.ErrInvalidCoupon)
			}
			return pricing.Quote{}, quotePrep{}, err
		}
		applied = &c
		if c.FirstPurchaseOnly && req.UserID != "" {
			priorOrders, err = s.Store.GetCounter(ctx, store.UserOrderCountKey(req.UserID))
			if err != nil {
				return pricing.Quote{}, quotePrep{}, err
			}
		}
	}

	quoted, err := s.Facade.Quote(pricing.QuoteInput{
		Lines:             lines,
		Destination:       shipping.Destination{CEP: req.CEP, City: req.City, State: req.State},
		StorePickup:       req.StorePickup,
		ShippingService:   req.ShippingService,
		Coupon:            applied,
		PriorOrders:       priorOrders,
		ShippingConfig:    shippingCfg,
		InstallmentConfig: installmentCfg,
	})
	if err != nil {
		if appErr := couponAppError(err); appErr != nil {
			return pricing.Quote{}, quotePrep{}, appErr
		}
		if errors.Is(err, pricing.ErrUnknownOption) {
			return pricing.Quote{}, quotePrep{}, common.BadRequest("VALIDATION", "selected variant option does not exist")
		}
		return pricing.Quote{}, quotePrep{}, err
	}
	if obs.ShippingRuleMatched != nil {
		obs.ShippingRuleMatched.WithLabelValues(quoted.ShippingRule).Inc()
	}
	return quoted, quotePrep{lines: lines, coupon: applied}, nil
}

// commit runs inside the checkout lock.
func (s *Service) commit(ctx context.Context, req PlaceOrderRequest, quoted pricing.Quote, prep quotePrep, plan installment.Option) (order.Order, error) {
	couponRedeemed := false
	if prep.coupon != nil {
		if err := s.Coupons.Redeem(ctx, *prep.coupon); err != nil {
			if errors.Is(err, coupon.ErrCouponExhausted) {
				return order.Order{}, couponAppError(err)
			}
			return order.Order{}, err
		}
		couponRedeemed = true
	}

	decremented := make([]struct {
		id  string
		qty int64
	}, 0, len(prep.lines))
	rollback := func() {
		for _, d := range decremented {
			if err := s.Store.IncrBy(ctx, store.StockKey(d.id), d.qty); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("product_id", d.id).Msg("restore stock after failed checkout")
			}
		}
		if couponRedeemed {
			if err := s.Coupons.Release(ctx, *prep.coupon); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("coupon", prep.coupon.Code).Msg("release coupon after failed checkout")
			}
		}
	}

	for _, line := range prep.lines {
		if !line.Product.Managed() {
			continue
		}
		remaining, err := s.Store.DecrAvailable(ctx, store.StockKey(line.Product.ID), int64(line.Qty))
		if err != nil {
			rollback()
			return order.Order{}, err
		}
		switch remaining {
		case store.DecrUnmanaged:
			// counter missing for a managed product; treat as sold out
			rollback()
			return order.Order{}, outOfStock(line.Product.ID)
		case store.DecrInsufficient:
			rollback()
			return order.Order{}, outOfStock(line.Product.ID)
		}
		decremented = append(decremented, struct {
			id  string
			qty int64
		}{line.Product.ID, int64(line.Qty)})
	}

	o, err := s.assembleOrder(req, quoted, prep, plan)
	if err != nil {
		rollback()
		return order.Order{}, err
	}
	if err := s.Orders.Save(ctx, o); err != nil {
		rollback()
		return order.Order{}, err
	}
	if _, err := s.Store.Incr(ctx, store.UserOrderCountKey(req.UserID)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", req.UserID).Msg("increment order count")
	}
	if obs.OrdersPlacedTotal != nil {
		obs.OrdersPlacedTotal.Inc()
	}
	if s.Bus != nil {
		payload := map[string]any{
			"orderId": o.ID,
			"email":   o.BuyerEmail,
			"total":   o.Total,
		}
		if _, err := s.Bus.Emit(ctx, events.TopicOrderCreated, o.ID, payload); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("order_id", o.ID).Msg("emit order created")
		}
	}
	return o, nil
}

func (s *Service) assembleOrder(req PlaceOrderRequest, quoted pricing.Quote, prep quotePrep, plan installment.Option) (order.Order, error) {
	resolver := s.Facade.Resolver
	items := make([]order.ItemSnapshot, 0, len(prep.lines))
	for _, line := range prep.lines {
		unitPrice, err := resolver.UnitPrice(line.Product, line.SelectedOptions)
		if err != nil {
			return order.Order{}, err
		}
		items = append(items, order.ItemSnapshot{
			Product:         line.Product,
			Qty:             line.Qty,
			SelectedOptions: line.SelectedOptions,
			UnitPrice:       unitPrice,
			Subtotal:        unitPrice * int64(line.Qty),
		})
	}
	o := order.Order{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		Date:           time.Now().UTC(),
		Items:          items,
		Subtotal:       quoted.Subtotal,
		Discount:       quoted.Discount,
		ShippingCost:   quoted.Shipping,
		Total:          quoted.Total,
		Installments:   order.Plan{Count: plan.Count, Value: plan.Value},
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		Status:         order.StatusPending,
		CouponCode:     quoted.CouponCode,
		DestinationCEP: shipping.NormalizeCEP(req.CEP),
		StorePickup:    req.StorePickup,
		ShippingRule:   quoted.ShippingRule,
		BuyerEmail:     strings.TrimSpace(req.Email),
	}
	return o, nil
}

func (s *Service) loadLines(ctx context.Context, items []CartItem) ([]pricing.Line, error) {
	if len(items) == 0 {
		return nil, common.BadRequest("VALIDATION", "cart is empty")
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, common.BadRequest("VALIDATION", "item quantity must be positive")
		}
		p, err := s.Catalog.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, common.NotFound(fmt.Sprintf("product %s not found", item.ProductID))
			}
			return nil, err
		}
		lines = append(lines, pricing.Line{
			Product:         p,
			Qty:             item.Quantity,
			SelectedOptions: item.SelectedOptions,
		})
	}
	return lines, nil
}

func (s *Service) shippingItems(lines []pricing.Line) ([]shipping.Item, int64, error) {
	resolver := s.Facade.Resolver
	items := make([]shipping.Item, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		unitPrice, err := resolver.UnitPrice(line.Product, line.SelectedOptions)
		if err != nil {
			return nil, 0, err
		}
		unitWeight, err := resolver.UnitWeight(line.Product, line.SelectedOptions)
		if err != nil {
			return nil, 0, err
		}
		lineSubtotal := unitPrice * int64(line.Qty)
		subtotal += lineSubtotal
		var rule *shipping.ProductRule
		if line.Product.ShippingRule != nil {
			rule = &shipping.ProductRule{
				Enabled:     line.Product.ShippingRule.Enabled,
				Type:        line.Product.ShippingRule.Type,
				MinQuantity: line.Product.ShippingRule.MinQuantity,
				MinTotal:    line.Product.ShippingRule.MinTotal,
				FixedCost:   line.Product.ShippingRule.FixedCost,
			}
		}
		items = append(items, shipping.Item{
			ProductID:   line.Product.ID,
			Qty:         line.Qty,
			Subtotal:    lineSubtotal,
			WeightGrams: unitWeight,
			Rule:        rule,
		})
	}
	return items, subtotal, nil
}

func pickInstallment(options []installment.Option, requested int) (installment.Option, error) {
	if len(options) == 0 {
		return installment.Option{}, errors.New("checkout: no installment options resolved")
	}
	if requested <= 0 {
		return options[0], nil
	}
	for _, opt := range options {
		if opt.Count == requested {
			return opt, nil
		}
	}
	return installment.Option{}, common.BadRequest("VALIDATION", fmt.Sprintf("installment count %d is not offered", requested))
}

func outOfStock(productID string) *common.AppError {
	appErr := common.Conflict("OUT_OF_STOCK", "insufficient stock for product")
	appErr.Details = map[string]any{"productId": productID}
	return appErr
}

// couponAppError maps coupon engine errors onto the API error envelope. Each
// rejection reason keeps its own code so the storefront can message precisely.
func couponAppError(err error) *common.AppError {
	switch {
	case errors.Is(err, coupon.ErrInvalidCoupon):
		return common.NewAppError("INVALID_COUPON", "coupon not found or disabled", http.StatusUnprocessableEntity, err)
	case errors.Is(err, coupon.ErrCouponExhausted):
		return common.NewAppError("COUPON_EXHAUSTED", "coupon usage limit reached", http.StatusUnprocessableEntity, err)
	case errors.Is(err, coupon.ErrNotFirstPurchase):
		return common.NewAppError("FIRST_PURCHASE_ONLY", "coupon valid for first purchase only", http.StatusUnprocessableEntity, err)
	case errors.Is(err, coupon.ErrNotApplicable):
		return common.NewAppError("COUPON_NOT_APPLICABLE", "coupon not applicable to cart items", http.StatusUnprocessableEntity, err)
	default:
		return nil
	}
}

func countQuote(result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
}
