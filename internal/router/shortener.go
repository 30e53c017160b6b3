package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/usrlinks/internal/ipchecker"
	"github.com/patric-chuzhbe/usrlinks/internal/logger"
	"github.com/patric-chuzhbe/usrlinks/internal/metrics"
	"github.com/patric-chuzhbe/usrlinks/internal/models"
	"github.com/patric-chuzhbe/usrlinks/internal/service"
)

type shortenerService interface {
	Shorten(rawURL *string, fallbackBase string) (models.ShortenResponse, error)
	Resolve(code string) (string, error)
	Stats(code string) (models.StatsResponse, error)
}

// ShortenerRouter holds the handlers of the URL shortener.
type ShortenerRouter struct {
	shortener shortenerService
	metrics   *metrics.Metrics
}

var shortCodeErrors = errorMessages{notFound: service.MsgShortCodeNotFound}

// NewShortener returns the router of the URL shortener.
func NewShortener(shortener shortenerService, m *metrics.Metrics, checker *ipchecker.IPChecker) *chi.Mux {
	rt := &ShortenerRouter{
		shortener: shortener,
		metrics:   m,
	}

	router := newMux(m, checker)
	router.Get(`/`, rt.GetHealth)
	router.Get(`/api/health`, rt.GetAPIHealth)
	router.Post(`/api/shorten`, rt.PostShorten)
	router.Get(`/api/stats/{code}`, rt.GetStats)
	router.Get(`/{code}`, rt.GetRedirect)

	return router
}

func (rt *ShortenerRouter) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: "URL Shortener API"})
}

func (rt *ShortenerRouter) GetAPIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: "URL Shortener API is running"})
}

// PostShorten answers 400 "URL not found" both for a missing url field and
// for a body that cannot be decoded.
func (rt *ShortenerRouter) PostShorten(w http.ResponseWriter, r *http.Request) {
	var req models.ShortenRequest
	if err := decodeJSONBody(r, &req); err != nil {
		logger.Log.Debugw("cannot decode shorten request", "err", err)
		writeError(w, http.StatusBadRequest, service.MsgURLNotFound)
		return
	}

	resp, err := rt.shortener.Shorten(req.URL, "http://"+r.Host)
	if err != nil {
		writeServiceError(w, r, err, shortCodeErrors)
		return
	}

	rt.metrics.Inc(metrics.EventURLShortened)
	logger.Log.Infow("url shortened", "short_code", resp.ShortCode)
	writeJSON(w, http.StatusOK, resp)
}

func (rt *ShortenerRouter) GetRedirect(w http.ResponseWriter, r *http.Request) {
	target, err := rt.shortener.Resolve(chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err, shortCodeErrors)
		return
	}

	rt.metrics.Inc(metrics.EventRedirect)
	http.Redirect(w, r, target, http.StatusFound)
}

func (rt *ShortenerRouter) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.shortener.Stats(chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err, shortCodeErrors)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
