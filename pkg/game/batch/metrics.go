package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report batch progress.
// A nil *Metrics records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	ticks       prometheus.Histogram
	duration    prometheus.Histogram
	reward      prometheus.Histogram
	runsActive  prometheus.Gauge
	runnersLost prometheus.Counter
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Registration errors panic, so a registry can only hold one instance.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		},
		[]string{"outcome"},
	)
	ticks := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "run_ticks",
			Help:      "Ticks simulated per run.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "run_duration_seconds",
			Help:      "Wall time spent per run.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	reward := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "run_reward",
			Help:      "Total reward per run.",
			Buckets:   []float64{-100000, -10000, -1000, -100, -10, 0},
		},
	)
	runsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "runs_active",
			Help:      "Runs currently being simulated.",
		},
	)
	runnersLost := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mazerunner",
			Subsystem: "batch",
			Name:      "runners_lost_total",
			Help:      "Runners that did not survive to the end of their run.",
		},
	)

	reg.MustRegister(runs, ticks, duration, reward, runsActive, runnersLost)
	return &Metrics{
		runs:        runs,
		ticks:       ticks,
		duration:    duration,
		reward:      reward,
		runsActive:  runsActive,
		runnersLost: runnersLost,
	}
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.runsActive.Inc()
}

func (m *Metrics) runFinished() {
	if m == nil {
		return
	}
	m.runsActive.Dec()
}

// observe records a finished run of a team of teamSize runners
func (m *Metrics) observe(s Summary, teamSize int) {
	if m == nil {
		return
	}
	m.runnersLost.Add(float64(teamSize - s.NAlive))
	m.runs.WithLabelValues(s.Outcome()).Inc()
	m.ticks.Observe(float64(s.Time))
	m.duration.Observe(s.Elapsed.Seconds())
	m.reward.Observe(s.TotalReward)
}
