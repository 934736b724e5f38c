// Package metrics holds the Prometheus collectors shared by the session
// engine, the SSH transport and the admin endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "agadir"

// Connection outcomes recorded by the transport.
const (
	ConnAccepted        = "accepted"
	ConnThrottled       = "throttled"
	ConnHandshakeFailed = "handshake_failed"
)

// Metrics is a set of collectors registered on a private registry, so tests
// can create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	SessionsActive prometheus.Gauge
	SessionsOpened prometheus.Counter
	Keys           prometheus.Counter
	RenderErrors   prometheus.Counter
	Overflows      prometheus.Counter
	BytesWritten   prometheus.Counter
	RedrawDuration prometheus.Histogram
	Connections    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently registered.",
		}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Sessions opened since start.",
		}),
		Keys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Decoded keys dispatched to sessions.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Session redraws that failed and were skipped.",
		}),
		Overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_overflows_total",
			Help:      "Pending output discarded because a client was not reading.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written to client channels.",
		}),
		RedrawDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "redraw_duration_seconds",
			Help:      "Time spent composing and diffing every session in one pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Incoming TCP connections by outcome.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		m.SessionsActive,
		m.SessionsOpened,
		m.Keys,
		m.RenderErrors,
		m.Overflows,
		m.BytesWritten,
		m.RedrawDuration,
		m.Connections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
