package installment

import "math"

// Config is the store-wide installment configuration document.
type Config struct {
	MaxInstallments     int          `json:"maxInstallments"`
	InterestFree        int          `json:"interestFreeInstallments"`
	InterestRatePercent float64      `json:"interestRate"`
	Special             *SpecialRule `json:"specialInstallmentRule,omitempty"`
}

// SpecialRule raises the installment allowance once the order total reaches
// MinTotal. The store interest rate still applies past the interest-free tier.
type SpecialRule struct {
	Enabled         bool  `json:"enabled"`
	MinTotal        int64 `json:"minTotal"`
	MaxInstallments int   `json:"maxInstallments"`
	InterestFree    int   `json:"interestFreeInstallments"`
}

// Override carries a product-level installment override into resolution.
type Override struct {
	Enabled             bool
	MaxInstallments     int
	InterestFree        int
	InterestRatePercent float64
}

// Terms are the resolved installment parameters for one order.
type Terms struct {
	MaxInstallments     int
	InterestFree        int
	InterestRatePercent float64
}

// Option is one row of the installment table shown to the buyer.
type Option struct {
	Count    int   `json:"count"`
	Value    int64 `json:"value"`
	Total    int64 `json:"total"`
	Interest bool  `json:"interest"`
}

// Resolve picks the applicable terms: product override first, then the
// special threshold rule, then the store defaults.
func Resolve(cfg Config, override *Override, total int64) Terms {
	if override != nil && override.Enabled {
		return Terms{
			MaxInstallments:     clampMin(override.MaxInstallments, 1),
			InterestFree:        clampMin(override.InterestFree, 0),
			InterestRatePercent: override.InterestRatePercent,
		}
	}
	if cfg.Special != nil && cfg.Special.Enabled && total >= cfg.Special.MinTotal {
		return Terms{
			MaxInstallments:     clampMin(cfg.Special.MaxInstallments, 1),
			InterestFree:        clampMin(cfg.Special.InterestFree, 0),
			InterestRatePercent: cfg.InterestRatePercent,
		}
	}
	return Terms{
		MaxInstallments:     clampMin(cfg.MaxInstallments, 1),
		InterestFree:        clampMin(cfg.InterestFree, 0),
		InterestRatePercent: cfg.InterestRatePercent,
	}
}

// Schedule computes the per-installment value for every count up to the
// maximum. Counts within the interest-free tier divide the total exactly
// (modulo centavo rounding); past the tier the standard price-table
// amortization applies, so the amount paid in total never decreases as the
// count grows.
func Schedule(terms Terms, total int64) []Option {
	if total < 0 {
		total = 0
	}
	max := clampMin(terms.MaxInstallments, 1)
	options := make([]Option, 0, max)
	for n := 1; n <= max; n++ {
		if n <= terms.InterestFree || terms.InterestRatePercent <= 0 {
			value := roundDiv(total, int64(n))
			options = append(options, Option{Count: n, Value: value, Total: total, Interest: false})
			continue
		}
		rate := terms.InterestRatePercent / 100.0
		pow := math.Pow(1+rate, float64(n))
		factor := rate * pow / (pow - 1)
		value := int64(math.Round(float64(total) * factor))
		options = append(options, Option{
			Count:    n,
			Value:    value,
			Total:    value * int64(n),
			Interest: true,
		})
	}
	return options
}

func roundDiv(total, n int64) int64 {
	if n <= 0 {
		return total
	}
	return (total + n/2) / n
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
