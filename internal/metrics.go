package internal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Loop's collectors. A nil *metrics records nothing.
type metrics struct {
	frames        prometheus.Counter
	active        prometheus.Gauge
	frameDuration prometheus.Histogram
	stepErrors    prometheus.Counter
	scripts       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	factory := promauto.With(reg)

	return &metrics{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Name: "spring_frames_total",
			Help: "Total number of frames advanced.",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "spring_active_handlers",
			Help: "Number of controllers and values registered with the loop.",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spring_frame_duration_seconds",
			Help:    "Time spent advancing one frame.",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
		}),
		stepErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "spring_step_errors_total",
			Help: "Total number of frame steps that failed.",
		}),
		scripts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spring_scripts_total",
			Help: "Total number of async scripts by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *metrics) frame(d time.Duration, handlers int) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
	m.active.Set(float64(handlers))
}

func (m *metrics) handlers(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *metrics) stepError() {
	if m == nil {
		return
	}
	m.stepErrors.Inc()
}

func (m *metrics) script(outcome string) {
	if m == nil {
		return
	}
	m.scripts.WithLabelValues(outcome).Inc()
}
