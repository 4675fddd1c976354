package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/auth"
	"github.com/BobDeng1974/DNNCam/internal/lens"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

// Server represents the maintenance HTTP server.
type Server struct {
	httpServer     *http.Server
	listener       net.Listener
	store          registers.Port
	table          *lens.Table
	authMiddleware *auth.Middleware
	backendURL     string
	logger         *zap.Logger
	startTime      time.Time
}

// NewServer creates the maintenance server. store serves register access and
// table lists the mapped addresses.
func NewServer(store registers.Port, table *lens.Table, authMiddleware *auth.Middleware, backendURL string, logger *zap.Logger) *Server {
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:          store,
		table:          table,
		authMiddleware: authMiddleware,
		backendURL:     backendURL,
		logger:         logger.Named("api"),
		startTime:      time.Now(),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Start binds addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("Maintenance API listening", zap.String("addr", ln.Addr().String()), zap.Bool("auth", s.authMiddleware.Enabled()))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
