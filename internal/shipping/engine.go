package shipping

import (
	"math"
	"strings"
)

// Per-product rule types.
const (
	RuleTypeFree  = "free"
	RuleTypeFixed = "fixed"
)

// Names of the winning rule in a quote, in precedence order.
const (
	RulePickup      = "pickup"
	RuleProduct     = "product"
	RuleFreeRegion  = "free-region"
	RuleFixedRegion = "fixed-region"
	RuleThreshold   = "threshold"
	RuleCorreios    = "correios"
	RuleBase        = "base"
)

// Carrier service codes offered by the simulated correios calculation.
const (
	ServicePAC   = "pac"
	ServiceSEDEX = "sedex"
)

// Config is the store-wide shipping configuration document.
type Config struct {
	BaseCost              int64           `json:"baseCost"`
	FreeShippingThreshold *int64          `json:"freeShippingThreshold,omitempty"`
	StorePickupEnabled    bool            `json:"storePickupEnabled"`
	FreeRegions           []Region        `json:"freeShippingRegions,omitempty"`
	FixedRegionsEnabled   bool            `json:"fixedShippingRegionsEnabled"`
	FixedRegions          []FixedRegion   `json:"fixedShippingRegions,omitempty"`
	Correios              *CorreiosConfig `json:"correiosConfig,omitempty"`
}

// Region matches a destination by CEP range or by state/city membership.
// A region with CEP bounds matches on the numeric range; otherwise the
// state/city lists are consulted case-insensitively.
type Region struct {
	StartCEP string   `json:"startCep,omitempty"`
	EndCEP   string   `json:"endCep,omitempty"`
	States   []string `json:"states,omitempty"`
	Cities   []string `json:"cities,omitempty"`
}

// FixedRegion maps a CEP range to a fixed shipping cost.
type FixedRegion struct {
	StartCEP string `json:"startCep"`
	EndCEP   string `json:"endCep"`
	Cost     int64  `json:"cost"`
}

// CorreiosConfig drives the simulated PAC/SEDEX weight calculation.
type CorreiosConfig struct {
	Enabled            bool   `json:"enabled"`
	OriginCEP          string `json:"originCep,omitempty"`
	DefaultWeightGrams int64  `json:"defaultWeightGrams,omitempty"`
	PACBaseCost        int64  `json:"pacBaseCost"`
	PACPerKgCost       int64  `json:"pacKgCost"`
	SEDEXBaseCost      int64  `json:"sedexBaseCost"`
	SEDEXPerKgCost     int64  `json:"sedexKgCost"`
}

// ProductRule is the per-product override carried into the resolver.
type ProductRule struct {
	Enabled     bool
	Type        string
	MinQuantity int
	MinTotal    int64
	FixedCost   int64
}

// Item is one cart line as seen by the shipping resolver.
type Item struct {
	ProductID   string
	Qty         int
	Subtotal    int64
	WeightGrams int64
	Rule        *ProductRule
}

// Destination identifies where the order ships to.
type Destination struct {
	CEP   string
	City  string
	State string
}

// Input aggregates everything the resolver needs for one quote.
type Input struct {
	Items       []Item
	Subtotal    int64
	Destination Destination
	StorePickup bool
}

// Option is a named carrier service the buyer can pick from.
type Option struct {
	Service string `json:"service"`
	Cost    int64  `json:"cost"`
}

// Quote is the resolved shipping outcome. Options is non-empty only when the
// correios simulation produced alternatives.
type Quote struct {
	Cost    int64    `json:"cost"`
	Rule    string   `json:"rule"`
	Options []Option `json:"options,omitempty"`
}

// OptionCost returns the cost of a named carrier service within the quote.
func (q Quote) OptionCost(service string) (int64, bool) {
	for _, opt := range q.Options {
		if strings.EqualFold(opt.Service, service) {
			return opt.Cost, true
		}
	}
	return 0, false
}

// Resolve evaluates the layered rule set top to bottom; the first matching
// rule wins. Base cost is the guaranteed fallback, so resolution never fails.
func Resolve(cfg Config, in Input) Quote {
	if in.StorePickup && cfg.StorePickupEnabled {
		return Quote{Cost: 0, Rule: RulePickup}
	}

	if cost, ok := productRuleCost(in); ok {
		return Quote{Cost: cost, Rule: RuleProduct}
	}

	for _, region := range cfg.FreeRegions {
		if regionMatches(region, in.Destination) {
			return Quote{Cost: 0, Rule: RuleFreeRegion}
		}
	}

	if cfg.FixedRegionsEnabled {
		for _, region := range cfg.FixedRegions {
			match, err := CEPInRange(in.Destination.CEP, region.StartCEP, region.EndCEP)
			if err == nil && match {
				return Quote{Cost: region.Cost, Rule: RuleFixedRegion}
			}
		}
	}

	if cfg.FreeShippingThreshold != nil && in.Subtotal >= *cfg.FreeShippingThreshold {
		return Quote{Cost: 0, Rule: RuleThreshold}
	}

	if cfg.Correios != nil && cfg.Correios.Enabled {
		return correiosQuote(*cfg.Correios, in.Items)
	}

	return Quote{Cost: cfg.BaseCost, Rule: RuleBase}
}

// productRuleCost evaluates enabled per-product rules against the whole cart.
// When several lines carry a satisfied rule, a free rule from any line wins;
// otherwise the cheapest fixed cost applies.
func productRuleCost(in Input) (int64, bool) {
	var (
		matched  bool
		cheapest int64
	)
	for _, item := range in.Items {
		rule := item.Rule
		if rule == nil || !rule.Enabled {
			continue
		}
		if item.Qty < rule.MinQuantity || in.Subtotal < rule.MinTotal {
			continue
		}
		switch rule.Type {
		case RuleTypeFree:
			return 0, true
		case RuleTypeFixed:
			if !matched || rule.FixedCost < cheapest {
				cheapest = rule.FixedCost
			}
			matched = true
		}
	}
	if matched {
		return cheapest, true
	}
	return 0, false
}

func regionMatches(region Region, dest Destination) bool {
	if region.StartCEP != "" && region.EndCEP != "" {
		in, err := CEPInRange(dest.CEP, region.StartCEP, region.EndCEP)
		if err == nil && in {
			return true
		}
	}
	for _, state := range region.States {
		if dest.State != "" && strings.EqualFold(strings.TrimSpace(state), strings.TrimSpace(dest.State)) {
			return true
		}
	}
	for _, city := range region.Cities {
		if dest.City != "" && strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(dest.City)) {
			return true
		}
	}
	return false
}

func correiosQuote(cfg CorreiosConfig, items []Item) Quote {
	var grams int64
	for _, item := range items {
		w := item.WeightGrams
		if w <= 0 {
			w = cfg.DefaultWeightGrams
		}
		grams += w * int64(item.Qty)
	}
	kg := float64(grams) / 1000.0
	pac := cfg.PACBaseCost + int64(math.Round(kg*float64(cfg.PACPerKgCost)))
	sedex := cfg.SEDEXBaseCost + int64(math.Round(kg*float64(cfg.SEDEXPerKgCost)))
	if pac < 0 {
		pac = 0
	}
	if sedex < 0 {
		sedex = 0
	}
	cost := pac
	if sedex < cost {
		cost = sedex
	}
	return Quote{
		Cost: cost,
		Rule: RuleCorreios,
		Options: []Option{
			{Service: ServicePAC, Cost: pac},
			{Service: ServiceSEDEX, Cost: sedex},
		},
	}
}
