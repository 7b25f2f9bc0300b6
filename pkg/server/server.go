// Package server exposes the pipeline over HTTP: one route per inbound
// message, plus a server-sent event stream for snapshot updates.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtnitsch/actionsense/pkg/pipeline"
)

const (
	maxBodyBytes    = 2 << 20
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	svc    *pipeline.Service
	logger *slog.Logger
	router *chi.Mux
}

func New(svc *pipeline.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/events", s.handleEvents)
	r.Route("/tabs/{tabID}", func(r chi.Router) {
		r.Post("/signal", s.handleSignal)
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/enrich", s.handleEnrich)
		r.Post("/ai", s.handleApplyAI)
		r.Post("/visibility", s.handleVisibility)
		r.Get("/compare", s.handleCompare)
		r.Delete("/", s.handleTabClosed)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down.
// Request contexts derive from ctx so open event streams end with it.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
