package middleware

import (
	"net/http"
	"strconv"
	"time"

	"gymdesk/internal/adapters/metrics"
)

// Metrics returns middleware that feeds the Prometheus request counters.
// PRE: wraps the *http.ServeMux directly so r.Pattern is set after dispatch
// Unmatched requests are labelled "unmatched" to keep route cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		setRoute(r.Context(), route)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
