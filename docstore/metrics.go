package docstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_transaction_retries_total",
			Help: "Transactions retried after a conflicting concurrent write",
		},
		[]string{"driver"},
	)

	transactionAborts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_transaction_aborts_total",
			Help: "Transactions that exhausted their retry budget",
		},
		[]string{"driver"},
	)

	openSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docstore_open_subscriptions",
			Help: "Live collection subscriptions",
		},
	)
)
