// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every gymdesk collector plus the Go runtime and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequests counts finished requests by method, route pattern and status code.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LeadSyncFailures counts membership writes whose lead upsert failed.
	LeadSyncFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_lead_sync_failures_total",
		Help: "Membership creations whose lead sync failed and was skipped.",
	})

	// OTPRequests counts OTP requests by outcome (delivered, dry_run, failed).
	OTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_otp_requests_total",
		Help: "OTP requests by outcome.",
	}, []string{"outcome"})

	// RemindersSent counts expiry reminder emails handed to the provider.
	RemindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gym_expiry_reminders_sent_total",
		Help: "Expiry reminder emails accepted by the email provider.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests, HTTPDuration, LeadSyncFailures, OTPRequests, RemindersSent,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
