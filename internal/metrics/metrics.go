package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 注文ライフサイクルのカウンタ。/metricsで公開する。
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_orders_created_total",
		Help: "Number of orders created at checkout.",
	})

	PaymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_payments_completed_total",
		Help: "Number of payments resolved as completed.",
	})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_payments_failed_total",
		Help: "Number of payments resolved as failed.",
	})

	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_emails_sent_total",
		Help: "Number of notification emails sent.",
	})

	EmailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookstore_emails_failed_total",
		Help: "Number of notification emails that failed to send.",
	})
)
