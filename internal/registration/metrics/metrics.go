package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the registration subsystem.
type Metrics struct {
	Created      prometheus.Counter
	RolledBack   prometheus.Counter
	TokensIssued prometheus.Counter
}

// New creates and registers all registration metrics.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_registrations_created_total",
			Help: "Total number of registrations persisted",
		}),
		RolledBack: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_registrations_rolled_back_total",
			Help: "Total number of registrations removed by compensating rollback",
		}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_registration_tokens_issued_total",
			Help: "Total number of registration identity tokens issued",
		}),
	}
}
