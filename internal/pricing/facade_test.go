package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/catalog"
	"github.com/noah-isme/backend-loja/internal/coupon"
	"github.com/noah-isme/backend-loja/internal/installment"
	"github.com/noah-isme/backend-loja/internal/pricing"
	"github.com/noah-isme/backend-loja/internal/shipping"
)

func TestQuoteEndToEnd(t *testing.T) {
	product := catalog.Product{
		ID:    "caneca",
		Name:  "Caneca",
		Price: 10000,
		Variants: []catalog.Variant{
			{
				ID:   "tamanho",
				Name: "Tamanho",
				Options: []catalog.VariantOption{
					{ID: "grande", Value: "Grande", PriceModifier: 1000},
				},
			},
		},
	}

	f := pricing.Facade{}
	quote, err := f.Quote(pricing.QuoteInput{
		Lines: []pricing.Line{
			{Product: product, Qty: 2, SelectedOptions: map[string]string{"tamanho": "grande"}},
		},
		Coupon: &coupon.Coupon{
			Code:    "SAVE10",
			Type:    coupon.TypePercentage,
			Value:   10,
			Enabled: true,
		},
		ShippingConfig:    shipping.Config{BaseCost: 1500},
		InstallmentConfig: installment.Config{MaxInstallments: 3, InterestFree: 3},
	})
	require.NoError(t, err)

	require.EqualValues(t, 22000, quote.Subtotal)
	require.EqualValues(t, 2200, quote.Discount)
	require.EqualValues(t, 1500, quote.Shipping)
	require.EqualValues(t, 21300, quote.Total)
	require.Equal(t, "SAVE10", quote.CouponCode)
	require.Equal(t, shipping.RuleBase, quote.ShippingRule)
	require.Len(t, quote.Installments, 3)
	require.EqualValues(t, 21300, quote.Installments[0].Total)
}

func TestQuoteCouponFailurePropagates(t *testing.T) {
	f := pricing.Facade{}
	_, err := f.Quote(pricing.QuoteInput{
		Lines: []pricing.Line{
			{Product: catalog.Product{ID: "p1", Price: 5000}, Qty: 1},
		},
		Coupon: &coupon.Coupon{
			Code:              "PRIMEIRA",
			Type:              coupon.TypeFixed,
			Value:             500,
			Enabled:           true,
			FirstPurchaseOnly: true,
		},
		PriorOrders:    2,
		ShippingConfig: shipping.Config{BaseCost: 1000},
	})
	require.ErrorIs(t, err, coupon.ErrNotFirstPurchase)
}

func TestQuoteShippingServiceOverridesCheapest(t *testing.T) {
	f := pricing.Facade{}
	in := pricing.QuoteInput{
		Lines: []pricing.Line{
			{Product: catalog.Product{ID: "p1", Price: 5000, WeightGrams: 1000}, Qty: 1},
		},
		ShippingConfig: shipping.Config{
			BaseCost: 3000,
			Correios: &shipping.CorreiosConfig{
				Enabled:        true,
				PACBaseCost:    1000,
				PACPerKgCost:   500,
				SEDEXBaseCost:  1800,
				SEDEXPerKgCost: 900,
			},
		},
		InstallmentConfig: installment.Config{MaxInstallments: 1},
	}

	quote, err := f.Quote(in)
	require.NoError(t, err)
	require.EqualValues(t, 1500, quote.Shipping, "cheapest option by default")

	in.ShippingService = "sedex"
	quote, err = f.Quote(in)
	require.NoError(t, err)
	require.EqualValues(t, 2700, quote.Shipping)
}

func TestQuoteMostRestrictiveInstallmentOverrideWins(t *testing.T) {
	f := pricing.Facade{}
	quote, err := f.Quote(pricing.QuoteInput{
		Lines: []pricing.Line{
			{
				Product: catalog.Product{
					ID: "a", Price: 10000,
					InstallmentRule: &catalog.InstallmentOverride{Enabled: true, MaxInstallments: 10, InterestFree: 10},
				},
				Qty: 1,
			},
			{
				Product: catalog.Product{
					ID: "b", Price: 10000,
					InstallmentRule: &catalog.InstallmentOverride{Enabled: true, MaxInstallments: 2, InterestFree: 2},
				},
				Qty: 1,
			},
			{
				Product: catalog.Product{
					ID: "c", Price: 10000,
					InstallmentRule: &catalog.InstallmentOverride{Enabled: false, MaxInstallments: 1},
				},
				Qty: 1,
			},
		},
		ShippingConfig:    shipping.Config{BaseCost: 0},
		InstallmentConfig: installment.Config{MaxInstallments: 12, InterestFree: 3, InterestRatePercent: 2.0},
	})
	require.NoError(t, err)
	require.Len(t, quote.Installments, 2)
}

func TestQuoteProductFreeShippingRuleFlowsThrough(t *testing.T) {
	f := pricing.Facade{}
	quote, err := f.Quote(pricing.QuoteInput{
		Lines: []pricing.Line{
			{
				Product: catalog.Product{
					ID: "frete-gratis", Price: 8000,
					ShippingRule: &catalog.ShippingRule{Enabled: true, Type: "free"},
				},
				Qty: 1,
			},
		},
		ShippingConfig:    shipping.Config{BaseCost: 2500},
		InstallmentConfig: installment.Config{MaxInstallments: 1},
	})
	require.NoError(t, err)
	require.Equal(t, shipping.RuleProduct, quote.ShippingRule)
	require.EqualValues(t, 0, quote.Shipping)
}
