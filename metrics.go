package trafficfusion

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// engineMetrics instruments the engine's periodic cycles.
type engineMetrics struct {
	fusionCycles      prometheus.Counter
	fusionDuration    prometheus.Histogram
	observations      *prometheus.CounterVec
	staleSegments     prometheus.Gauge
	alertsRaised      *prometheus.CounterVec
	incidentsDetected prometheus.Counter
	predictionCycles  prometheus.Counter
}

// newEngineMetrics builds and registers the engine metrics. A nil registerer
// leaves the metrics unregistered, which tests use for isolated instances.
func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	m := &engineMetrics{
		fusionCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficfusion_fusion_cycles_total",
			Help: "Total number of completed fusion cycles.",
		}),
		fusionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficfusion_fusion_cycle_duration_seconds",
			Help:    "Duration of a full fusion cycle across all segments.",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),
		observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficfusion_observations_total",
			Help: "Observations collected per source and result.",
		}, []string{"source", "result"}),
		staleSegments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficfusion_stale_segments",
			Help: "Segments whose last fusion cycle yielded no observations.",
		}),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficfusion_alerts_raised_total",
			Help: "Alerts raised per alert type.",
		}, []string{"type"}),
		incidentsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficfusion_incidents_detected_total",
			Help: "Total number of incidents inferred from fused state.",
		}),
		predictionCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trafficfusion_prediction_cycles_total",
			Help: "Total number of completed prediction cycles.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.fusionCycles,
			m.fusionDuration,
			m.observations,
			m.staleSegments,
			m.alertsRaised,
			m.incidentsDetected,
			m.predictionCycles,
		)
	}
	return m
}

func (m *engineMetrics) observeFusionCycle(start time.Time, stale int) {
	m.fusionCycles.Inc()
	m.fusionDuration.Observe(time.Since(start).Seconds())
	m.staleSegments.Set(float64(stale))
}
