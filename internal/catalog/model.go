package catalog

// Monetary values across the catalog are integer centavos.

// Visibility modes restrict where a product is offered.
const (
	VisibilityAll      = "all"
	VisibilityCities   = "cities"
	VisibilityCEPRange = "cep-range"
)

// Product is the authored product document. A snapshot of it is embedded in
// orders at purchase time so totals stay recomputable after edits.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price" validate:"gte=0"`
	ListPrice   int64      `json:"listPrice,omitempty" validate:"gte=0"`
	Stock       *int64     `json:"stock,omitempty"`
	WeightGrams int64      `json:"weightGrams,omitempty" validate:"gte=0"`
	Visibility  Visibility `json:"visibility"`
	Variants    []Variant  `json:"variants,omitempty"`

	ShippingRule    *ShippingRule        `json:"shippingRule,omitempty"`
	InstallmentRule *InstallmentOverride `json:"installmentOptions,omitempty"`
}

// Variant is a selectable product axis such as "Cor" or "Tamanho".
type Variant struct {
	ID      string          `json:"id"`
	Name    string          `json:"name" validate:"required"`
	Options []VariantOption `json:"options" validate:"min=1,dive"`
}

// VariantOption is one selectable value of a variant, optionally adjusting
// price and weight.
type VariantOption struct {
	ID            string `json:"id"`
	Value         string `json:"value" validate:"required"`
	PriceModifier int64  `json:"priceModifier,omitempty"`
	WeightGrams   int64  `json:"weightGrams,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// Visibility restricts product listing to a city set or a CEP range. The
// zero value means visible everywhere.
type Visibility struct {
	Mode     string   `json:"mode,omitempty" validate:"omitempty,oneof=all cities cep-range"`
	Cities   []string `json:"cities,omitempty"`
	StartCEP string   `json:"startCep,omitempty"`
	EndCEP   string   `json:"endCep,omitempty"`
}

// ShippingRule overrides global shipping for this product once the cart
// satisfies the quantity and total minimums.
type ShippingRule struct {
	Enabled     bool   `json:"enabled"`
	Type        string `json:"type" validate:"omitempty,oneof=free fixed"`
	MinQuantity int    `json:"minQuantity,omitempty"`
	MinTotal    int64  `json:"minTotal,omitempty"`
	FixedCost   int64  `json:"fixedCost,omitempty"`
}

// InstallmentOverride replaces the store installment defaults for this
// product.
type InstallmentOverride struct {
	Enabled             bool    `json:"enabled"`
	MaxInstallments     int     `json:"maxInstallments" validate:"gte=1"`
	InterestFree        int     `json:"interestFreeInstallments" validate:"gte=0"`
	InterestRatePercent float64 `json:"interestRate" validate:"gte=0"`
}

// Option returns the option with the given id within the variant, or nil.
func (v Variant) Option(optionID string) *VariantOption {
	for i := range v.Options {
		if v.Options[i].ID == optionID {
			return &v.Options[i]
		}
	}
	return nil
}

// Managed reports whether stock is tracked for this product.
func (p Product) Managed() bool { return p.Stock != nil }
