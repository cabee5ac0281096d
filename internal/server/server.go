// Package server exposes the indicator engine, raster sampler and sample
// store over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bluewater-labs/ecoindex/internal/config"
	"github.com/bluewater-labs/ecoindex/internal/engine"
	"github.com/bluewater-labs/ecoindex/internal/model"
	"github.com/bluewater-labs/ecoindex/internal/store"
)

// Server wires the HTTP routes to the engine, sampler and store.
type Server struct {
	cfg      config.Config
	store    store.Store
	defaults engine.Defaults
	uploads  *rate.Limiter
}

// New creates a Server.
func New(cfg config.Config, st store.Store) *Server {
	perMin := cfg.Server.UploadPerMinute
	if perMin <= 0 {
		perMin = 6
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		defaults: cfg.Engine.Defaults(),
		uploads:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/indicators", s.handleComputeIndicators)
		r.Post("/raster/sample", s.handleRasterSample)
		r.Get("/datapoints", s.handleDatapoints)
		r.Get("/map", s.handleMap)
		r.Get("/samples", s.handleListSamples)
		r.Post("/samples", s.handleAddSample)
	})

	return r
}

// requestLogger logs method, path, status and latency for each request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Environmental Impact API",
		"description": "Post sample records to /v1/indicators to calculate ecosystem indicators",
	})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

// writeError maps an error to a JSON error response: InvalidInput failures
// become 400s, everything else a generic 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if eris.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
