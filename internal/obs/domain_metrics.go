package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts pricing quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// ShippingRuleMatched counts which shipping rule won the precedence chain.
	ShippingRuleMatched *prometheus.CounterVec
	// CouponRedemptionsTotal counts coupon validation/redemption outcomes.
	CouponRedemptionsTotal *prometheus.CounterVec
	// OrdersPlacedTotal counts successfully placed orders.
	OrdersPlacedTotal prometheus.Counter
	// CEPLookupTotal counts outbound postal-code lookups by result.
	CEPLookupTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quote_total",
			Help:      "Count of pricing quote computations by outcome.",
		}, []string{"result"})
		ShippingRuleMatched = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipping_rule_matched_total",
			Help:      "Count of shipping quotes by winning rule.",
		}, []string{"rule"})
		CouponRedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_redemptions_total",
			Help:      "Count of coupon validation and redemption outcomes.",
		}, []string{"result"})
		OrdersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Number of orders placed through checkout.",
		})
		CEPLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cep_lookup_total",
			Help:      "Count of outbound CEP address lookups by result.",
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, ShippingRuleMatched, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ShippingRuleMatched = v
			}
		})
		mustRegisterCollector(reg, CouponRedemptionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CouponRedemptionsTotal = v
			}
		})
		mustRegisterCollector(reg, OrdersPlacedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				OrdersPlacedTotal = v
			}
		})
		mustRegisterCollector(reg, CEPLookupTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CEPLookupTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
