package replica

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Structs

// Metrics counts how delivered operations affected this replica and how
// many mutations originated here.
type Metrics struct {
	Applied        metrics.Counter
	AlreadyApplied metrics.Counter
	Rejected       metrics.Counter
	LocalMutations metrics.Counter
}

// Functions

// NewMetrics returns outcome counters for one replica. With an empty
// prometheusAddr all counters discard their values; otherwise they
// register with the default Prometheus registry and the owning process is
// expected to expose them at the supplied address.
func NewMetrics(prometheusAddr string) *Metrics {

	if prometheusAddr == "" {

		return &Metrics{
			Applied:        discard.NewCounter(),
			AlreadyApplied: discard.NewCounter(),
			Rejected:       discard.NewCounter(),
			LocalMutations: discard.NewCounter(),
		}
	}

	return &Metrics{
		Applied: prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "flotsync",
			Subsystem: "replica",
			Name:      "operations_applied_total",
			Help:      "Number of delivered operations that changed local state",
		}, nil),
		AlreadyApplied: prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "flotsync",
			Subsystem: "replica",
			Name:      "operations_already_applied_total",
			Help:      "Number of delivered operations that were duplicates or stale",
		}, nil),
		Rejected: prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "flotsync",
			Subsystem: "replica",
			Name:      "operations_rejected_total",
			Help:      "Number of delivered operations that failed integrity checks",
		}, nil),
		LocalMutations: prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "flotsync",
			Subsystem: "replica",
			Name:      "local_mutations_total",
			Help:      "Number of operations originated by this replica",
		}, nil),
	}
}
