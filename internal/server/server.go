package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/ChicagoDave/neededschools/internal/metrics"
	"github.com/ChicagoDave/neededschools/internal/pipeline"
	"github.com/ChicagoDave/neededschools/pkg/config"
	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/export"
	"github.com/ChicagoDave/neededschools/pkg/scene2d"
)

// Server exposes a project's computation over HTTP.
type Server struct {
	project  *config.Project
	port     int
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	cache    *gocache.Cache
}

// New creates a server for the given project.
func New(project *config.Project, port int, logger *slog.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		project:  project,
		port:     port,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}
	if ttl := project.Server.CacheTTL; ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if origins := s.project.Server.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		}).Handler)
	}

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/results", s.handleResults)
		r.Get("/layer", s.handleLayer)
		r.Get("/scene", s.handleScene)
		r.Get("/validation", s.handleValidation)
		r.Get("/fields", s.handleFields)
		r.Get("/config", s.handleConfig)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("neededschools server starting", "addr", "http://localhost"+srv.Addr, "project", s.project.Dir)

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("neededschools server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Needed Schools</title></head>
<body style="font-family:system-ui;margin:2em">
<h1>Needed Schools</h1>
<ul>
<li><a href="/api/results">/api/results</a> (add ?capacity=N to override)</li>
<li><a href="/api/layer">/api/layer</a></li>
<li><a href="/api/scene">/api/scene</a></li>
<li><a href="/api/validation">/api/validation</a></li>
<li><a href="/api/fields">/api/fields</a></li>
<li><a href="/api/config">/api/config</a></li>
</ul>
</body></html>`)
}

// compute runs the project at the requested capacity and records metrics.
// Successful outcomes are cached per capacity; ?refresh=1 bypasses the cache.
func (s *Server) compute(r *http.Request) (*demand.Outcome, float64, error) {
	query := r.URL.Query()
	capacity := s.project.Capacity
	if q := query.Get("capacity"); q != "" {
		c, err := strconv.ParseFloat(q, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: capacity %q is not a number", demand.ErrInvalidConfiguration, q)
		}
		capacity = c
	}

	key := fmt.Sprintf("outcome:%v", capacity)
	if s.cache != nil && query.Get("refresh") == "" {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.CacheHits.Inc()
			return v.(*demand.Outcome), capacity, nil
		}
	}

	start := time.Now()
	out, err := pipeline.Compute(r.Context(), s.project, capacity, s.logger)
	flagged := 0
	if out != nil {
		flagged = out.Summary.Flagged
	}
	s.metrics.ObserveComputation(time.Since(start).Seconds(), flagged, err)
	if err == nil && s.cache != nil {
		s.cache.Set(key, out, gocache.DefaultExpiration)
	}
	return out, capacity, err
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	out, capacity, err := s.compute(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"capacity": capacity,
		"results":  out.Results,
		"summary":  out.Summary,
		"report":   out.Report,
	})
}

func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	out, _, err := s.compute(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	fc, err := export.Layer(out.Regions, out.Results, export.Options{IncludeFlagged: s.project.Output.IncludeFlagged})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fc); err != nil {
		s.logger.Error("encoding layer", "error", err)
	}
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	out, capacity, err := s.compute(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene2d.Assemble2D(out, capacity))
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.Validate(r.Context(), s.project))
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	fields, err := pipeline.Fields(r.Context(), s.project)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": fields})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.project.Redacted())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, demand.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, demand.ErrDataSourceUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Warn("request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
