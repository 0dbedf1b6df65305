package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/duelist/stockduel/internal/api/handlers"
	"github.com/duelist/stockduel/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(bracketHandler *handlers.BracketHandler, personalityHandler *handlers.PersonalityHandler, liveHandler *handlers.LiveHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Bracket endpoints
	api.HandleFunc("/brackets", bracketHandler.Create).Methods("POST")
	api.HandleFunc("/brackets/{id}", bracketHandler.Get).Methods("GET")
	api.HandleFunc("/brackets/{id}/refresh", bracketHandler.Refresh).Methods("POST")
	api.HandleFunc("/brackets/{id}/live", liveHandler.Stream).Methods("GET")
	api.HandleFunc("/users/{userId}/brackets", bracketHandler.ListByUser).Methods("GET")

	// Personality endpoints
	api.HandleFunc("/personalities", personalityHandler.List).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stockduel-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
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
