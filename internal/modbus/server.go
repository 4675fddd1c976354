package modbus

import (
	"fmt"
	"time"

	mb "github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// Options configures the Modbus TCP listener.
type Options struct {
	URL        string
	Timeout    time.Duration
	MaxClients uint
}

// Server owns the Modbus listener lifecycle.
type Server struct {
	opts    Options
	srv     *mb.ModbusServer
	logger  *zap.Logger
	started bool
}

// NewServer creates a listener dispatching to handler. It does not bind until
// Start is called.
func NewServer(opts Options, handler *Handler, logger *zap.Logger) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("modbus handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("modbus")

	srv, err := mb.NewServer(&mb.ServerConfiguration{
		URL:        opts.URL,
		Timeout:    opts.Timeout,
		MaxClients: opts.MaxClients,
		Logger:     zap.NewStdLog(logger),
	}, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to create modbus server: %w", err)
	}

	return &Server{opts: opts, srv: srv, logger: logger}, nil
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	if err := s.srv.Start(); err != nil {
		return fmt.Errorf("failed to start modbus server on %s: %w", s.opts.URL, err)
	}
	s.started = true
	s.logger.Info("Modbus server listening", zap.String("url", s.opts.URL), zap.Uint("max_clients", s.opts.MaxClients))
	return nil
}

// Stop closes the listener and all client connections. Stopping a server
// that never started is a no-op.
func (s *Server) Stop() error {
	if !s.started {
		return nil
	}
	s.started = false
	if err := s.srv.Stop(); err != nil {
		return fmt.Errorf("failed to stop modbus server: %w", err)
	}
	s.logger.Info("Modbus server stopped")
	return nil
}
