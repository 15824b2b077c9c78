package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/api/handlers"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps are the collaborators mounted on the router
type RouterDeps struct {
	Shield  *handlers.ShieldHandler
	Metrics http.Handler             // nil disables /metrics
	Limiter Limiter                  // nil disables rate limiting
	Checks  map[string]HealthChecker // probed by /health, e.g. "store", "redis"
	Version string
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(deps.Version, deps.Checks)).Methods("GET")
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, log))
	}

	// Shield endpoints
	api.HandleFunc("/shield/analyze", deps.Shield.Analyze).Methods("POST")
	api.HandleFunc("/shield/{signal_id}", deps.Shield.GetResult).Methods("GET")
	api.HandleFunc("/shield/{signal_id}/insight", deps.Shield.GetInsight).Methods("GET")

	// Outcome and analytics endpoints
	api.HandleFunc("/outcomes", deps.Shield.RecordOutcome).Methods("POST")
	api.HandleFunc("/performance", deps.Shield.GetPerformance).Methods("GET")
	api.HandleFunc("/performance/improvements", deps.Shield.GetImprovements).Methods("GET")
	api.HandleFunc("/users/{user_id}/stats", deps.Shield.GetUserStats).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status; 503 when any check fails
func healthCheckHandler(version string, checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{
			"status":  "ok",
			"service": "signal-shield",
			"version": version,
		}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				body["status"] = "degraded"
				body[name] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				body[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(body)
	}
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
