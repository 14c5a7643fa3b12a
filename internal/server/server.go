// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oukeidos/codelex/internal/logger"
)

// Server is the Codelex HTTP API server
type Server struct {
	httpServer *http.Server
	handler    *Handler
	logger     *slog.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   3 * time.Minute,
		RequestTimeout: 2 * time.Minute,
		MaxBodyBytes:   64 << 10,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
	}
}

// New creates a server for proc. Nothing listens until Start.
func New(proc Processor, cfg Config) *Server {
	log := logger.With("component", "server")
	h := NewHandler(proc, cfg, log)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:           loggingMiddleware(log, h),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return &Server{httpServer: httpServer, handler: h, logger: log, config: cfg}
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Address returns the listen address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// Start listens and serves until Stop. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting Codelex API", "addr", s.Address(), "origins", s.config.AllowedOrigins)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping Codelex API")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware adds request logging
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
