package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "cart_persist_failures_total",
		Help:      "Cart writes to durable storage that failed and were dropped",
	})

	restoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "cart_restore_failures_total",
		Help:      "Cart restores that fell back to an empty cart",
	}, []string{"reason"})

	rejectedAdds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "cart_rejected_adds_total",
		Help:      "AddItem calls ignored because the item or quantity was unusable",
	})
)
