// internal/server/health.go
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphttp "gemini-gateway/internal/common/http"
)

func (s *Server) registerHealthRoutes() {
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet).Name("health")
	s.router.HandleFunc("/ready", s.readiness).Methods(http.MethodGet).Name("ready")
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// readiness turns 503 once shutdown has started so load balancers stop
// sending traffic while requests drain.
func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		_ = apphttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "shutting_down",
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"model":  s.config.GenAI.Model,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = apphttp.WriteErrorMessage(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = apphttp.WriteErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
