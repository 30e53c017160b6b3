// Package router builds the chi routers of the user management API and the
// URL shortener together with their shared middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/patric-chuzhbe/usrlinks/internal/gzippedhttp"
	"github.com/patric-chuzhbe/usrlinks/internal/ipchecker"
	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/metrics"
)

const (
	msgEndpointNotFound = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
	msgDatabaseError    = "Database error occurred"
)

// newMux returns a router with request ids, logging, metrics, panic
// recovery, CORS, gzip and the JSON fallbacks installed. /metrics is served
// to clients accepted by checker.
func newMux(m *metrics.Metrics, checker *ipchecker.IPChecker) *chi.Mux {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		m.Middleware,
		recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Encoding", "X-Request-Id"},
			MaxAge:         300,
		}),
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgEndpointNotFound)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	router.With(checker.TrustedOnly).Handle(`/metrics`, m.Handler())

	return router
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Log.Errorw(
					"panic while serving request",
					"panic", rec,
					"uri", r.RequestURI,
					"request_id", middleware.GetReqID(r.Context()),
				)
				writeError(w, http.StatusInternalServerError, msgInternalError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
