package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodflow_donations_created_total",
		Help: "Total number of donations successfully created.",
	})

	DonationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodflow_donation_transitions_total",
		Help: "Total number of applied donation status changes.",
	},
		[]string{"to"},
	)

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodflow_order_transitions_total",
		Help: "Total number of applied order status changes.",
	},
		[]string{"to"},
	)

	NotificationsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodflow_notifications_dispatched_total",
		Help: "Total number of proximity notifications delivered to the sink.",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodflow_notifications_failed_total",
		Help: "Total number of proximity notifications the sink rejected.",
	})

	DonationsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodflow_donations_expired_total",
		Help: "Total number of donations moved to expired by the sweeper.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodflow_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
