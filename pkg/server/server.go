package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-salon/pkg/logger"
)

// Options configures the ops server.
type Options struct {
	Addr string
	// Gatherer backs /metrics. Nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
	// Mount registers extra routes, e.g. the console API, on the same mux.
	Mount  func(mux *http.ServeMux)
	Logger logger.ILogger
}

// Server exposes /health, /metrics and any mounted routes over net/http.
type Server struct {
	srv *http.Server
	log logger.ILogger
}

func New(opts Options) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.Mount != nil {
		opts.Mount(mux)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		srv: &http.Server{Addr: opts.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log: log,
	}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
