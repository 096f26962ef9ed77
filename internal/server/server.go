// Package server exposes the planning engine over HTTP: threshold and
// restriction state from the plan store, and an automatic planning endpoint
// that takes the two tables in the request body.
//
// All /v1 routes sit behind X-Token authentication and a process-wide rate
// limit. Errors use the JSON envelope {"error":{"code","message"}}.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/internal/server/middleware"
	"github.com/loomworks/loomplan/pkg/planstore"
)

// Config configures the server.
type Config struct {
	Host string
	Port int

	// Token is the shared secret for /v1 routes. Leaving it empty makes
	// every authenticated route answer 500 until it is configured.
	Token string

	// RateLimit is requests per second across all clients; zero disables.
	RateLimit float64

	// Store provides threshold, restrictions, and snapshot persistence.
	Store *planstore.Store
}

// Server is the HTTP API server.
type Server struct {
	host   string
	port   int
	store  *planstore.Store
	router chi.Router
}

// New builds the server and its route table.
func New(cfg Config) *Server {
	s := &Server{
		host:  cfg.Host,
		port:  cfg.Port,
		store: cfg.Store,
	}

	r := chi.NewRouter()
	r.NotFound(middleware.NotFoundHandler)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler)
	r.Use(middleware.Recovery)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, int(cfg.RateLimit)))
		r.Use(middleware.TokenAuth(cfg.Token))

		r.Get("/v1/threshold", s.handleGetThreshold)
		r.Put("/v1/threshold", s.handlePutThreshold)
		r.Get("/v1/restrictions", s.handleGetRestrictions)
		r.Post("/v1/plan/auto", s.handlePlanAuto)
	})

	s.router = r
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("server listening",
			zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
