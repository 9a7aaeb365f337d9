package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/catalog"
)

func variantProduct() catalog.Product {
	return catalog.Product{
		ID:          "camiseta",
		Name:        "Camiseta",
		Price:       10000,
		WeightGrams: 200,
		Variants: []catalog.Variant{
			{
				ID:   "tamanho",
				Name: "Tamanho",
				Options: []catalog.VariantOption{
					{ID: "p", Value: "P"},
					{ID: "gg", Value: "GG", PriceModifier: 1000, WeightGrams: 50},
				},
			},
			{
				ID:   "cor",
				Name: "Cor",
				Options: []catalog.VariantOption{
					{ID: "preto", Value: "Preto"},
					{ID: "especial", Value: "Edição especial", PriceModifier: 500},
				},
			},
		},
	}
}

func TestUnitPriceWithoutSelectionIsBasePrice(t *testing.T) {
	price, err := Resolver{}.UnitPrice(variantProduct(), nil)
	require.NoError(t, err)
	require.EqualValues(t, 10000, price)
}

func TestUnitPriceAddsSelectedModifiers(t *testing.T) {
	price, err := Resolver{}.UnitPrice(variantProduct(), map[string]string{
		"tamanho": "gg",
		"cor":     "especial",
	})
	require.NoError(t, err)
	require.EqualValues(t, 11500, price)
}

func TestUnitPriceLenientIgnoresUnknownOption(t *testing.T) {
	price, err := Resolver{}.UnitPrice(variantProduct(), map[string]string{"tamanho": "xxl"})
	require.NoError(t, err)
	require.EqualValues(t, 10000, price)
}

func TestUnitPriceStrictRejectsUnknownOption(t *testing.T) {
	_, err := Resolver{Strict: true}.UnitPrice(variantProduct(), map[string]string{"tamanho": "xxl"})
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestUnitPriceNeverNegative(t *testing.T) {
	p := catalog.Product{
		ID:    "brinde",
		Price: 100,
		Variants: []catalog.Variant{
			{ID: "v", Options: []catalog.VariantOption{{ID: "o", Value: "x", PriceModifier: -500}}},
		},
	}
	price, err := Resolver{}.UnitPrice(p, map[string]string{"v": "o"})
	require.NoError(t, err)
	require.EqualValues(t, 0, price)
}

func TestUnitWeightAddsSelectedOptionWeight(t *testing.T) {
	weight, err := Resolver{}.UnitWeight(variantProduct(), map[string]string{"tamanho": "gg"})
	require.NoError(t, err)
	require.EqualValues(t, 250, weight)
}

func TestComputeCapsDiscountAtSubtotal(t *testing.T) {
	items := []Item{{Qty: 2, UnitPrice: 3000}}

	sum := Compute(items, 10000, 1500)
	require.EqualValues(t, 6000, sum.Subtotal)
	require.EqualValues(t, 6000, sum.Discount)
	require.EqualValues(t, 1500, sum.Total, "total never goes below the shipping cost")

	sum = Compute(items, -100, -50)
	require.EqualValues(t, 0, sum.Discount)
	require.EqualValues(t, 0, sum.Shipping)
	require.EqualValues(t, 6000, sum.Total)
}

func TestComputeSkipsNonPositiveQuantities(t *testing.T) {
	sum := Compute([]Item{{Qty: 0, UnitPrice: 5000}, {Qty: -1, UnitPrice: 5000}}, 0, 0)
	require.EqualValues(t, 0, sum.Subtotal)
}
