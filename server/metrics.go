package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type serverMetrics struct {
	requests *prometheus.CounterVec
	revoked  prometheus.Counter
}

func newServerMetrics(registry *prometheus.Registry) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "devbackend",
			Name:      "requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "status"}),

		revoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "devbackend",
			Name:      "revoked_tokens_total",
			Help:      "Tokens revoked through the development endpoint",
		}),
	}

	registry.MustRegister(
		m.requests,
		m.revoked,
		collectors.NewGoCollector(),
	)
	return m
}
