package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsletter"

var (
	DispatchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "dispatch_runs_total", Help: "Number of dispatch runs by result."},
		[]string{"result"},
	)
	DispatchRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "dispatch_run_duration_seconds", Help: "Duration of a dispatch run.", Buckets: prometheus.DefBuckets},
	)
	ContentDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "content_dispatched_total", Help: "Number of content items marked sent."},
	)
	DeliveryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "delivery_attempts_total", Help: "Number of delivery attempts by status."},
		[]string{"status"},
	)
	ClaimsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "dispatch_claims_skipped_total", Help: "Number of due items skipped because another run holds the claim."},
	)

	OutboxPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "outbox_published_total", Help: "Number of outbox messages pushed to the broker by result."},
		[]string{"result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Number of HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	RateLimitAllowed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of requests allowed by the rate limiter."},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of requests rejected by the rate limiter."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		DispatchRuns,
		DispatchRunDuration,
		ContentDispatched,
		DeliveryAttempts,
		ClaimsSkipped,
		OutboxPublished,
		HTTPRequests,
		HTTPRequestDuration,
		RateLimitAllowed,
		RateLimitRejected,
	)
}
