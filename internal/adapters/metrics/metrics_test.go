package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_ExposesGymCollectors(t *testing.T) {
	HTTPRequests.WithLabelValues("GET", "GET /api/health", "200").Inc()
	OTPRequests.WithLabelValues("dry_run").Inc()
	LeadSyncFailures.Inc()
	RemindersSent.Inc()
	HTTPDuration.WithLabelValues("GET", "GET /api/health").Observe(0.01)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, name := range []string{
		`gym_http_requests_total{method="GET",route="GET /api/health",status="200"}`,
		`gym_otp_requests_total{outcome="dry_run"}`,
		"gym_lead_sync_failures_total",
		"gym_expiry_reminders_sent_total",
		"gym_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
