package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the analysis service.
type Metrics struct {
	analyses   *prometheus.CounterVec
	duration   prometheus.Histogram
	riskLevels *prometheus.CounterVec
	pruned     prometheus.Counter
}

// NewMetrics registers the analysis collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// analyses counts analyses by result and price data source
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskanalyzer_analyses_total",
			Help: "Total risk analyses by result and data source",
		}, []string{"result", "data_source"}),

		// duration tracks end-to-end analysis latency
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskanalyzer_analysis_duration_seconds",
			Help:    "Risk analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),

		riskLevels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskanalyzer_risk_level_total",
			Help: "Completed analyses by assigned risk level",
		}, []string{"level"}),

		pruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "riskanalyzer_analyses_pruned_total",
			Help: "Analyses removed by the retention job",
		}),
	}
}

func (m *Metrics) observeSuccess(dataSource, level string, seconds float64) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues("success", dataSource).Inc()
	m.riskLevels.WithLabelValues(level).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues("failure", "none").Inc()
}

func (m *Metrics) observePruned(n int64) {
	if m == nil {
		return
	}
	m.pruned.Add(float64(n))
}
