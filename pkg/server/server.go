// Package server exposes skin generation over HTTP.
//
// Routes:
//
//	GET  /healthz         liveness and build information
//	POST /v1/composite    six faces (or one texture) → atlas PNG
//	POST /v1/classify     texture → partial-alpha verdict
//	POST /v1/packs        resource pack zip → skin pack (.mcpack)
//
// Uploads are multipart/form-data. Errors are JSON objects of the form
// {"code": "DECODE_FAILURE", "message": "..."}, with the HTTP status derived
// from the code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cubeskin/pkg/blocks"
	"github.com/matzehuels/cubeskin/pkg/pipeline"
)

// DefaultMaxUpload caps request bodies. Resource packs rarely exceed this.
const DefaultMaxUpload = 256 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	// Runner executes pack runs. Defaults to a runner without caching.
	Runner *pipeline.Runner

	// Reference is the reference table shared by all pack requests.
	Reference *blocks.Table

	// Logger defaults to log.Default().
	Logger *log.Logger

	// MaxUpload defaults to DefaultMaxUpload.
	MaxUpload int64
}

// Server serves the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	reference *blocks.Table
	logger    *log.Logger
	maxUpload int64
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	return &Server{
		runner:    cfg.Runner,
		reference: cfg.Reference,
		logger:    cfg.Logger,
		maxUpload: cfg.MaxUpload,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/composite", s.handleComposite)
		r.Post("/classify", s.handleClassify)
		r.Post("/packs", s.handlePacks)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
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
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs each request through the charm logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		next.ServeHTTP(w, r)
	})
}
