package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	scoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credscore_requests_total",
			Help: "Count of scoring requests by the tier that produced the result.",
		},
		[]string{"tier"},
	)

	scoreLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "credscore_request_latency_seconds",
		Help:    "Latency of the tiered scoring path.",
		Buckets: prometheus.DefBuckets,
	})

	retrainTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "credscore_retrain_total",
		Help: "How many times a new model was trained and published.",
	})
)

func init() {
	prometheus.MustRegister(scoreRequestsTotal, scoreLatency, retrainTotal)
}
