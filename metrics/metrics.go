package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artvoid_orders_created_total",
		Help: "Total number of orders created, by kind (shop, commission).",
	},
		[]string{"kind"},
	)

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artvoid_order_transitions_total",
		Help: "Total number of order lifecycle transitions applied.",
	},
		[]string{"transition"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artvoid_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "artvoid_event_subscribers",
		Help: "Current number of live order event subscribers.",
	})
)
