package middleware

import (
	"net/http"
	"time"

	"leavetracker/internal/platform/metrics"
)

// Metrics records every response status and latency in c.
func Metrics(c *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			c.Record(recorder.status, time.Since(start))
		})
	}
}
