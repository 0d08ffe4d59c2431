// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devconnect_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPLatency tracks request latency per route.
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devconnect_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// TokenErrors counts rejected session tokens by reason.
	TokenErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devconnect_token_errors_total",
			Help: "Total number of rejected session tokens by reason",
		},
		[]string{"reason"},
	)

	// Registrations counts successful sign-ups.
	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devconnect_registrations_total",
			Help: "Total number of successful registrations",
		},
	)

	// Logins counts login attempts by outcome.
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devconnect_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Entities reports stored row counts by kind, refreshed by a background job.
	Entities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "devconnect_entities",
			Help: "Number of stored users, profiles and posts",
		},
		[]string{"kind"},
	)
)

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
