package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TransactionsTotal counts finalized sales by payment method and outcome.
	TransactionsTotal *prometheus.CounterVec
	// TransactionAmount observes finalized sale totals in minor units.
	TransactionAmount *prometheus.HistogramVec
	// CheckoutRejectionsTotal counts finalization failures by reason code.
	CheckoutRejectionsTotal *prometheus.CounterVec
	// PromotionsAppliedTotal counts promotion applications by kind.
	PromotionsAppliedTotal *prometheus.CounterVec
	// QuotesTotal counts priced-but-not-committed carts.
	QuotesTotal prometheus.Counter
	// VoidsTotal counts voided transactions.
	VoidsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers register-domain
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Count of finalized transactions by payment method and result.",
		}, []string{"method", "result"})
		TransactionAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_amount_minor_units",
			Help:      "Finalized transaction totals in minor currency units.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		}, []string{"method"})
		CheckoutRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejections_total",
			Help:      "Count of checkout finalization failures by reason.",
		}, []string{"reason"})
		PromotionsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_applied_total",
			Help:      "Count of promotion applications by kind.",
		}, []string{"kind"})
		QuotesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Total number of cart pricing requests.",
		})
		VoidsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voids_total",
			Help:      "Total number of voided transactions.",
		})

		mustRegisterCollector(reg, TransactionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				TransactionsTotal = v
			}
		})
		mustRegisterCollector(reg, TransactionAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				TransactionAmount = v
			}
		})
		mustRegisterCollector(reg, CheckoutRejectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutRejectionsTotal = v
			}
		})
		mustRegisterCollector(reg, PromotionsAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromotionsAppliedTotal = v
			}
		})
		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, VoidsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				VoidsTotal = v
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
