package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worklog"

// PrometheusCollector implements Recorder backed by Prometheus.
type PrometheusCollector struct {
	flushes        *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	reloads        *prometheus.CounterVec
	trackers       prometheus.Gauge
	trackerRunning prometheus.Gauge
}

var _ Recorder = (*PrometheusCollector)(nil)

// NewPrometheus registers the tracker metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "flushes_total",
			Help:      "Total writes of the tracker state by result.",
		}, []string{"result"}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "flush_duration_seconds",
			Help:      "Time spent writing the tracker state.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "reloads_total",
			Help:      "Total reloads of the tracker state by result.",
		}, []string{"result"}),
		trackers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trackers",
			Help:      "Current number of trackers.",
		}),
		trackerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracker_running",
			Help:      "1 if a tracker is running, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		p.flushes,
		p.flushDuration,
		p.reloads,
		p.trackers,
		p.trackerRunning,
	)

	return p
}

func result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

func (p *PrometheusCollector) ObserveFlush(d time.Duration, err error) {
	p.flushes.WithLabelValues(result(err)).Inc()
	p.flushDuration.Observe(d.Seconds())
}

func (p *PrometheusCollector) ObserveReload(err error) {
	p.reloads.WithLabelValues(result(err)).Inc()
}

func (p *PrometheusCollector) SetTrackers(total int, running bool) {
	p.trackers.Set(float64(total))

	if running {
		p.trackerRunning.Set(1)
	} else {
		p.trackerRunning.Set(0)
	}
}
