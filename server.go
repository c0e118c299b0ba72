package trafficfusion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the engine's snapshot interface over HTTP for the
// dashboard layer. It is a thin read-only consumer of the engine; the
// engine itself has no transport knowledge.
type Server struct {
	engine     *Engine
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer builds the HTTP server on the given port.
func NewServer(engine *Engine, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{engine: engine, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/predictions", s.handlePredictions)
	mux.HandleFunc("/api/incidents", s.handleIncidents)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/route-summary", s.handleRouteSummary)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the server's route table; tests drive it with httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
