package pricing

import (
	"errors"

	"github.com/noah-isme/backend-loja/internal/catalog"
)

// Money represents a monetary value stored in centavos.
type Money = int64

// ErrUnknownOption is returned in strict mode when a selection references an
// option id the product does not carry.
var ErrUnknownOption = errors.New("pricing: selected option not found on product")

// Resolver computes effective unit prices from a product snapshot and the
// buyer's variant selections. The zero value is lenient: variants without a
// selection, or selections referencing a missing option id, contribute
// nothing. Checkout and the receipt renderer share this one implementation.
type Resolver struct {
	Strict bool
}

// UnitPrice returns the effective unit price: base price plus the modifier of
// the selected option of each variant. Never negative.
func (r Resolver) UnitPrice(p catalog.Product, selected map[string]string) (Money, error) {
	price := p.Price
	for _, variant := range p.Variants {
		optionID, ok := selected[variant.ID]
		if !ok || optionID == "" {
			continue
		}
		option := variant.Option(optionID)
		if option == nil {
			if r.Strict {
				return 0, ErrUnknownOption
			}
			continue
		}
		price += option.PriceModifier
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}

// UnitWeight returns the effective unit weight in grams: product weight plus
// the weight of each selected option, with the same leniency as UnitPrice.
func (r Resolver) UnitWeight(p catalog.Product, selected map[string]string) (int64, error) {
	weight := p.WeightGrams
	for _, variant := range p.Variants {
		optionID, ok := selected[variant.ID]
		if !ok || optionID == "" {
			continue
		}
		option := variant.Option(optionID)
		if option == nil {
			if r.Strict {
				return 0, ErrUnknownOption
			}
			continue
		}
		weight += option.WeightGrams
	}
	if weight < 0 {
		weight = 0
	}
	return weight, nil
}
