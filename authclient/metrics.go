package authclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeTimeout = "timeout"
	outcomeAborted = "aborted"
)

// Metrics counts refresh coordination. A nil *Metrics records nothing.
type Metrics struct {
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
	retries   prometheus.Counter
	responses *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "authclient",
			Name:      "token_refreshes_total",
			Help:      "Forced token refreshes by outcome",
		}, []string{"outcome"}),

		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "authclient",
			Name:      "queued_requests_total",
			Help:      "Requests that waited on a refresh already in flight",
		}),

		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "authclient",
			Name:      "retries_total",
			Help:      "Requests re-issued with a refreshed token",
		}),

		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pradmin",
			Subsystem: "authclient",
			Name:      "responses_total",
			Help:      "Backend responses by status class",
		}, []string{"class"}),
	}

	registry.MustRegister(m.refreshes, m.queued, m.retries, m.responses)
	return m
}

func (m *Metrics) refreshed(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) enqueued() {
	if m == nil {
		return
	}
	m.queued.Inc()
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) response(status int) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(strconv.Itoa(status/100) + "xx").Inc()
}
