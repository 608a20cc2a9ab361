package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for payment verification.
type Metrics struct {
	Verified   prometheus.Counter
	Reverified prometheus.Counter
}

// New creates and registers all payment metrics.
func New() *Metrics {
	return &Metrics{
		Verified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_payments_verified_total",
			Help: "Total number of registrations marked payment-verified",
		}),
		Reverified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_payments_reverified_total",
			Help: "Total number of verify calls against already-verified registrations",
		}),
	}
}
