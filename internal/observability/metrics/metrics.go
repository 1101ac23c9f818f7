package metrics

import "github.com/prometheus/client_golang/prometheus"

// SimulationMetrics exposes counters/histograms for schedule simulation runs.
type SimulationMetrics struct {
	runsTotal       *prometheus.CounterVec
	runLatency      prometheus.Histogram
	appointmentsGen prometheus.Histogram
	gapsSurfaced    prometheus.Histogram
}

func NewSimulationMetrics(reg prometheus.Registerer) *SimulationMetrics {
	m := &SimulationMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total weekly simulation runs",
		}, []string{"status"}),
		runLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "simulation",
			Name:      "run_latency_seconds",
			Help:      "Latency of weekly simulation runs",
			Buckets:   prometheus.DefBuckets,
		}),
		appointmentsGen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "simulation",
			Name:      "appointments_per_run",
			Help:      "Appointments generated per weekly run",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 8),
		}),
		gapsSurfaced: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "simulation",
			Name:      "gaps_per_run",
			Help:      "Gap panels surfaced per weekly run",
			Buckets:   prometheus.LinearBuckets(0, 3, 10),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.runLatency, m.appointmentsGen, m.gapsSurfaced)
	return m
}

// ObserveRun records one simulation run. Status is "ok" for computed runs
// and "cache_hit" for runs served from the result cache.
func (m *SimulationMetrics) ObserveRun(status string, seconds float64, appointments, gaps int) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runLatency.Observe(seconds)
	m.appointmentsGen.Observe(float64(appointments))
	m.gapsSurfaced.Observe(float64(gaps))
}
