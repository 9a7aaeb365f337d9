package pricing

import (
	"github.com/noah-isme/backend-loja/internal/catalog"
	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/installment"
	"github.com/noah-isme/backend-loja/internal/shipping"
)

// Line is one cart entry carrying a full product snapshot.
type Line struct {
	Product         catalog.Product
	Qty             int
	SelectedOptions map[string]string
}

// QuoteInput aggregates everything needed to price an order. Configuration is
// passed in explicitly; the facade holds no ambient state.
type QuoteInput struct {
	Lines             []Line
	Destination       shipping.Destination
	StorePickup       bool
	ShippingService   string
	Coupon            *coupon.Coupon
	PriorOrders       int64
	ShippingConfig    shipping.Config
	InstallmentConfig installment.Config
}

// Quote is the complete pricing outcome consumed by checkout and by admin
// order recomputation.
type Quote struct {
	Summary
	ShippingRule    string               `json:"shippingRule"`
	ShippingOptions []shipping.Option    `json:"shippingOptions,omitempty"`
	Installments    []installment.Option `json:"installments"`
	CouponCode      string               `json:"couponCode,omitempty"`
}

// Facade composes the variant, coupon, shipping and installment resolvers.
// It is the single entry point both checkout and admin order recreation call
// so a persisted total is always recomputable from stored snapshots.
type Facade struct {
	Resolver Resolver
}

// Quote prices the order end to end.
func (f Facade) Quote(in QuoteInput) (Quote, error) {
	items := make([]Item, 0, len(in.Lines))
	couponItems := make([]coupon.Item, 0, len(in.Lines))
	shipItems := make([]shipping.Item, 0, len(in.Lines))

	for _, line := range in.Lines {
		unitPrice, err := f.Resolver.UnitPrice(line.Product, line.SelectedOptions)
		if err != nil {
			return Quote{}, err
		}
		unitWeight, err := f.Resolver.UnitWeight(line.Product, line.SelectedOptions)
		if err != nil {
			return Quote{}, err
		}
		lineSubtotal := unitPrice * Money(line.Qty)
		items = append(items, Item{Qty: line.Qty, UnitPrice: unitPrice})
		couponItems = append(couponItems, coupon.Item{ProductID: line.Product.ID, Subtotal: lineSubtotal})
		shipItems = append(shipItems, shipping.Item{
			ProductID:   line.Product.ID,
			Qty:         line.Qty,
			Subtotal:    lineSubtotal,
			WeightGrams: unitWeight,
			Rule:        productShippingRule(line.Product),
		})
	}

	var subtotal Money
	for _, it := range items {
		if it.Qty > 0 {
			subtotal += Money(it.Qty) * it.UnitPrice
		}
	}

	var (
		discount   Money
		couponCode string
	)
	if in.Coupon != nil {
		if err := coupon.Validate(*in.Coupon, couponItems, in.PriorOrders); err != nil {
			return Quote{}, err
		}
		eligible := coupon.EligibleSubtotal(couponItems, *in.Coupon)
		discount = coupon.Discount(eligible, *in.Coupon)
		couponCode = in.Coupon.Code
	}

	shipQuote := shipping.Resolve(in.ShippingConfig, shipping.Input{
		Items:       shipItems,
		Subtotal:    subtotal,
		Destination: in.Destination,
		StorePickup: in.StorePickup,
	})
	shippingCost := shipQuote.Cost
	if in.ShippingService != "" {
		if cost, ok := shipQuote.OptionCost(in.ShippingService); ok {
			shippingCost = cost
		}
	}

	summary := Compute(items, discount, shippingCost)
	terms := installment.Resolve(in.InstallmentConfig, installmentOverride(in.Lines), summary.Total)

	return Quote{
		Summary:         summary,
		ShippingRule:    shipQuote.Rule,
		ShippingOptions: shipQuote.Options,
		Installments:    installment.Schedule(terms, summary.Total),
		CouponCode:      couponCode,
	}, nil
}

func productShippingRule(p catalog.Product) *shipping.ProductRule {
	if p.ShippingRule == nil {
		return nil
	}
	return &shipping.ProductRule{
		Enabled:     p.ShippingRule.Enabled,
		Type:        p.ShippingRule.Type,
		MinQuantity: p.ShippingRule.MinQuantity,
		MinTotal:    p.ShippingRule.MinTotal,
		FixedCost:   p.ShippingRule.FixedCost,
	}
}

// installmentOverride picks the product-level override to apply for the whole
// order. When several lines carry enabled overrides the most restrictive
// (smallest maximum) wins.
func installmentOverride(lines []Line) *installment.Override {
	var chosen *installment.Override
	for _, line := range lines {
		rule := line.Product.InstallmentRule
		if rule == nil || !rule.Enabled {
			continue
		}
		candidate := &installment.Override{
			Enabled:             true,
			MaxInstallments:     rule.MaxInstallments,
			InterestFree:        rule.InterestFree,
			InterestRatePercent: rule.InterestRatePercent,
		}
		if chosen == nil || candidate.MaxInstallments < chosen.MaxInstallments {
			chosen = candidate
		}
	}
	return chosen
}
