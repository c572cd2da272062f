// Package metrics holds the Prometheus collectors exposed at GET /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ActiveSubscribers is refreshed periodically from the database.
var ActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "cinestream_active_subscribers",
	Help: "Users holding at least one paid subscription period covering today.",
})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cinestream_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// BillingEvents counts enroll, pay and reanchor events.
var BillingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_billing_events_total",
	Help: "Billing lifecycle events.",
}, []string{"event"})

var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinestream_auth_events_total",
	Help: "Auth events by type and result.",
}, []string{"event", "result"})

func Handler() http.Handler {
	return promhttp.Handler()
}
