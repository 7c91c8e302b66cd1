// Package metrics collects client-side Prometheus metrics for API calls and
// auth events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Auth event labels
const (
	AuthEventSignIn    = "sign_in"
	AuthEventChallenge = "sign_in_challenge"
	AuthEventSignOut   = "sign_out"
	AuthEventRefresh   = "refresh"
	AuthEventFailure   = "failure"
)

// Recorder is what the requester and the auth gate report to
type Recorder interface {
	RecordRequest(route, method string, status int, duration time.Duration)
	RecordAuthEvent(event string)
}

// Collector implements Recorder with Prometheus metrics
type Collector struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	authEvents *prometheus.CounterVec
}

// NewCollector creates a Collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtor_client_requests_total",
			Help: "API requests issued by the client, by route, method and status",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "realtor_client_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtor_auth_events_total",
			Help: "Auth gate events",
		}, []string{"event"}),
	}
	c.registry.MustRegister(c.requests, c.latency, c.authEvents)
	return c
}

// RecordRequest counts one API call. Status 0 means a transport failure.
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	c.requests.WithLabelValues(route, method, statusLabel).Inc()
	c.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordAuthEvent counts one auth gate event
func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string)                           {}

// Module provides the Prometheus collector as the Recorder
var Module = fx.Module("metrics",
	fx.Provide(
		NewCollector,
		func(c *Collector) Recorder { return c },
	),
)
