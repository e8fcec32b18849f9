package scholarpage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics holds the app's own registry so that several Apps (tests, the
// build command) can coexist in one process.
type metrics struct {
	registry  *prometheus.Registry
	snapshots *prometheus.CounterVec
	imports   *prometheus.CounterVec
	drafts    prometheus.Counter
	searches  prometheus.Counter
	revision  prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarpage",
			Name:      "snapshot_operations_total",
			Help:      "Version history operations by kind.",
		}, []string{"op"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scholarpage",
			Name:      "imports_total",
			Help:      "Data imports by result.",
		}, []string{"result"}),
		drafts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scholarpage",
			Name:      "drafts_saved_total",
			Help:      "Debounced draft saves written to the store.",
		}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scholarpage",
			Name:      "searches_total",
			Help:      "Search queries served.",
		}),
		revision: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scholarpage",
			Name:      "site_revision",
			Help:      "Revision of the live site data.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.snapshots, m.imports, m.drafts, m.searches, m.revision,
	)
	return m
}
