// Package metrics exports store activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/store"
)

const namespace = "cavern"

// Action type labels for actions outside the known set.
const (
	LabelOther     = "other"
	LabelMalformed = "malformed"
)

// Metrics holds the collectors fed by the store middleware.
type Metrics struct {
	reg   prometheus.Registerer
	known map[string]bool

	dispatches *prometheus.CounterVec
	duration   prometheus.Histogram
	level      prometheus.Gauge
}

// New creates the collectors and registers them with reg. Only action types
// in known get their own label value, which keeps label cardinality bounded.
func New(reg prometheus.Registerer, known ...string) (*Metrics, error) {
	m := &Metrics{
		reg:   reg,
		known: make(map[string]bool, len(known)),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Actions dispatched to the store, by action type.",
		}, []string{"type"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent reducing per dispatch, excluding listeners.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "co2_level",
			Help:      "Current CO2 level in the state tree.",
		}),
	}
	for _, k := range known {
		m.known[k] = true
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.duration, m.level} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TrackSubscribers exports the store's listener count.
func (m *Metrics) TrackSubscribers(s *store.Store) error {
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Listeners subscribed to the store.",
	}, func() float64 { return float64(s.Subscribers()) }))
}

// Middleware returns store middleware that records every dispatch.
func (m *Metrics) Middleware() store.Middleware {
	return func(next store.DispatchFunc) store.DispatchFunc {
		return func(a store.Action) store.State {
			start := time.Now()
			st := next(a)
			m.duration.Observe(time.Since(start).Seconds())
			m.dispatches.WithLabelValues(m.label(a)).Inc()
			if c, err := co2.Select(st); err == nil {
				m.level.Set(float64(c.Level))
			}
			return st
		}
	}
}

func (m *Metrics) label(a store.Action) string {
	switch {
	case a.Malformed():
		return LabelMalformed
	case m.known[a.Type]:
		return a.Type
	default:
		return LabelOther
	}
}
