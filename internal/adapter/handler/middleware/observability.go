package middleware

import (
	"context"
	"net/http"
	"time"
)

// HTTPRecorder receives one call per served request.
type HTTPRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	AddActiveRequests(ctx context.Context, delta int64)
}

// Observability records HTTP metrics for requests.
// It must wrap the mux directly so the matched route pattern is visible.
func Observability(metrics HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.AddActiveRequests(r.Context(), 1)
			defer metrics.AddActiveRequests(r.Context(), -1)

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rw, r)

			// Route patterns keep the label set bounded; raw paths carry account ids.
			metrics.RecordHTTPRequest(r.Context(), r.Method, route(r), rw.statusCode, time.Since(start))
		})
	}
}
