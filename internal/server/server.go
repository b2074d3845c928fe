// Package server serves built registry artifacts over HTTP for the shadcn CLI.
//
// Routes:
//
//	GET /r/{file}        registry items and indexes from the output directory
//	GET /healthz         liveness probe
//	GET /metrics         Prometheus metrics
//	GET /_kata/reload    WebSocket rebuild notifications (watch mode only)
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/dev"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/metrics"
)

const tracerName = "github.com/kata-shadcn/kata-registry/internal/server"

// Options configures the registry server.
type Options struct {
	// Dir is the output directory holding <name>.json files.
	Dir string

	// CacheMaxAge is the Cache-Control max-age in seconds.
	CacheMaxAge int

	// Metrics records request metrics and backs /metrics when set.
	Metrics *metrics.Metrics

	// Hub mounts the reload WebSocket when set.
	Hub *dev.ReloadHub

	Logger *zap.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the registry HTTP server.
type Server struct {
	opts   Options
	logger *zap.Logger
	tracer trace.Tracer
	router chi.Router
}

// New creates a registry server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts:   opts,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	if s.opts.Hub != nil {
		r.Get(dev.ReloadPath, s.opts.Hub.HandleWebSocket)
	}

	r.Group(func(r chi.Router) {
		r.Use(cors)
		r.Get("/r/{file}", s.handleFile)
		r.Head("/r/{file}", s.handleFile)
		r.Options("/r/{file}", handlePreflight)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("KR153").WithDetailf("listen on %s", addr).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("registry server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.opts.Hub != nil {
			s.opts.Hub.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.New("KR153").Wrap(err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("KR153").Wrap(err)
		}
		return nil
	}
}
