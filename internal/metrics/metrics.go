package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusOk     = "ok"
	StatusFailed = "failed"
)

// Registry holds the rebalance metrics
type Registry struct {
	// dates built, by status
	Dates *prometheus.CounterVec
	// securities omitted from a date, by stage
	Omissions *prometheus.CounterVec
	// per date build latency
	DateDuration *prometheus.HistogramVec
	Runs         prometheus.Counter
}

func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		Dates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holdings_rebalance_dates_total",
				Help: "Rebalance dates processed by status",
			},
			[]string{"status"},
		),
		Omissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "holdings_omitted_securities_total",
				Help: "Securities omitted from a rebalance date by pipeline stage",
			},
			[]string{"stage"},
		),
		DateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "holdings_date_build_duration_seconds",
				Help:    "Time spent building holdings for a single rebalance date",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"status"},
		),
		Runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "holdings_build_runs_total",
				Help: "Full schedule builds started",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			r.Dates,
			r.Omissions,
			r.DateDuration,
			r.Runs,
		)
	}

	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default is registered with the global prometheus registerer the
// first time it is called, which is what GET /metrics serves
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}

func (r *Registry) RecordDate(status string, elapsed time.Duration) {
	r.Dates.WithLabelValues(status).Inc()
	r.DateDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (r *Registry) RecordOmissions(stage string, n int) {
	if n <= 0 {
		return
	}
	r.Omissions.WithLabelValues(stage).Add(float64(n))
}

func (r *Registry) RecordRun() {
	r.Runs.Inc()
}
