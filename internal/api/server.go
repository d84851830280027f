// Package api exposes the pipeline over HTTP.
//
// Every endpoint takes the raw outline text as the request body and reads
// options from the query string:
//
//	POST /v1/parse   tree with weights (graph.json)
//	POST /v1/layout  positioned tree (layout.json)
//	POST /v1/render  one artifact, ?format=html|svg|png|pdf|dot|json
//	GET  /healthz    liveness
//	GET  /metrics    Prometheus metrics
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgtree/pkg/observability"
	"github.com/matzehuels/orgtree/pkg/pipeline"
)

const (
	defaultMaxBodyBytes = 4 << 20
	defaultTimeout      = 30 * time.Second
	shutdownGrace       = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Logger *log.Logger
	// Metrics enables GET /metrics. Nil disables it.
	Metrics *observability.Metrics
	// Defaults are applied before query parameters.
	Defaults pipeline.Options
	// MaxBodyBytes caps request bodies. Zero means 4 MiB.
	MaxBodyBytes int64
	// Timeout bounds one request. Zero means 30s.
	Timeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	metrics  *observability.Metrics
	defaults pipeline.Options
	maxBody  int64
	timeout  time.Duration
}

// New creates a server. A nil runner gets an uncached one.
func New(opts Options) *Server {
	s := &Server{
		runner:   opts.Runner,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		defaults: opts.Defaults,
		maxBody:  opts.MaxBodyBytes,
		timeout:  opts.Timeout,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Post("/parse", s.handleParse)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
