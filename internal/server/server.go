package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/logger"
)

// Config holds the listener settings
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes the fundamentals agent over HTTP.
type Server struct {
	agent  interfaces.FundamentalsAgent
	router *http.ServeMux
	server *http.Server
	now    func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithClock overrides the clock used to date chat requests
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new HTTP server backed by the given agent.
func New(agent interfaces.FundamentalsAgent, cfg Config, opts ...Option) *Server {
	s := &Server{
		agent: agent,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	// a batch of cold tickers can take a while behind the provider rate limit
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	logger.Info(context.Background(), "HTTP server starting",
		"address", s.server.Addr,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info(ctx, "HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analysis", s.handleAnalysis)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("/api/", s.handleNotFound)
	return mux
}
