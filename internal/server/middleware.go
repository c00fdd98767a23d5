// internal/server/middleware.go
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	apphttp "gemini-gateway/internal/common/http"
	"gemini-gateway/internal/common/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestMiddleware assigns the request ID and records latency and status
// for every matched route.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := apphttp.EnsureRequestID(r)
		w.Header().Set(apphttp.RequestIDHeader, requestID)
		r = r.WithContext(apphttp.WithRequestID(r.Context(), requestID))

		endpoint := "unknown"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			endpoint = route.GetName()
		}

		metrics.RequestsActive.WithLabelValues(endpoint).Inc()
		defer metrics.RequestsActive.WithLabelValues(endpoint).Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		status := strconv.Itoa(rec.status)

		metrics.RequestsTotal.WithLabelValues(endpoint, status).Inc()
		metrics.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
		s.obs.RecordRequest(r.Context(), endpoint, status)
		s.obs.RecordDuration(r.Context(), endpoint, duration, status)

		fields := map[string]interface{}{
			"requestId":  requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"endpoint":   endpoint,
			"status":     rec.status,
			"durationMs": duration.Milliseconds(),
		}
		if endpoint == "health" || endpoint == "ready" || endpoint == "metrics" {
			s.logger.Debug("Request served", fields)
			return
		}
		s.logger.Info("Request served", fields)
	})
}
