package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the check-in desk.
type Metrics struct {
	ScansResolved prometheus.Counter
	ScansRejected prometheus.Counter
	CheckIns      prometheus.Counter
	Duplicates    prometheus.Counter
}

// New creates and registers all check-in metrics.
func New() *Metrics {
	return &Metrics{
		ScansResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_checkin_scans_resolved_total",
			Help: "Total number of scans resolved to a registration",
		}),
		ScansRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_checkin_scans_rejected_total",
			Help: "Total number of scans rejected as invalid or stale",
		}),
		CheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_checkins_recorded_total",
			Help: "Total number of participants newly checked in",
		}),
		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_checkins_duplicate_total",
			Help: "Total number of check-in attempts for already-present participants",
		}),
	}
}
