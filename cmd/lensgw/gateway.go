package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BobDeng1974/DNNCam/internal/api"
	"github.com/BobDeng1974/DNNCam/internal/audit"
	"github.com/BobDeng1974/DNNCam/internal/auth"
	"github.com/BobDeng1974/DNNCam/internal/backend"
	"github.com/BobDeng1974/DNNCam/internal/config"
	"github.com/BobDeng1974/DNNCam/internal/lens"
	"github.com/BobDeng1974/DNNCam/internal/modbus"
	"github.com/BobDeng1974/DNNCam/internal/registers"
)

// gateway holds the long-lived components of one lensgw process.
type gateway struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       *registers.Store
	modbus      *modbus.Server
	api         *api.Server
	auditLogger *audit.Logger
}

func newGateway(cfg *config.Config, logger *zap.Logger) (*gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := backend.NewClient(cfg.Backend.URL, cfg.BackendTimeout(), logger)
	if err != nil {
		return nil, err
	}

	table, err := lens.NewReferenceTable(client)
	if err != nil {
		return nil, err
	}

	gw := &gateway{cfg: cfg, logger: logger}

	var storeOpts []registers.Option
	if cfg.Audit.Enabled {
		gw.auditLogger, err = audit.NewLogger(cfg.Audit.Dir, audit.Rotation{
			MaxSizeMB:  cfg.Audit.MaxSizeMB,
			MaxBackups: cfg.Audit.MaxBackups,
			MaxAgeDays: cfg.Audit.MaxAgeDays,
			Compress:   cfg.Audit.Compress,
		})
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, registers.WithAuditLogger(gw.auditLogger))
	}

	store, err := registers.NewStore(table, logger, storeOpts...)
	if err != nil {
		gw.closeAudit()
		return nil, err
	}
	gw.store = store

	gw.modbus, err = modbus.NewServer(modbus.Options{
		URL:        cfg.Modbus.URL,
		Timeout:    cfg.ModbusTimeout(),
		MaxClients: cfg.Modbus.MaxClients,
	}, modbus.NewHandler(store, logger), logger)
	if err != nil {
		gw.closeAudit()
		return nil, err
	}

	if cfg.Maintenance.Enabled {
		var verifier *auth.Verifier
		if cfg.Maintenance.AuthSecret != "" {
			if verifier, err = auth.NewVerifier(cfg.Maintenance.AuthSecret); err != nil {
				gw.closeAudit()
				return nil, err
			}
		} else {
			logger.Warn("Maintenance API authentication disabled")
		}
		gw.api = api.NewServer(store, table, auth.NewMiddleware(verifier), client.URL(), logger)
	}

	return gw, nil
}

// Start brings up the Modbus listener and the maintenance API.
func (g *gateway) Start() error {
	if err := g.modbus.Start(); err != nil {
		return err
	}
	if g.api != nil {
		if err := g.api.Start(g.cfg.Maintenance.Addr); err != nil {
			return fmt.Errorf("maintenance API: %w", err)
		}
	}
	g.logger.Info("Lens gateway started",
		zap.String("modbus", g.cfg.Modbus.URL),
		zap.String("backend", g.cfg.Backend.URL))
	return nil
}

// Stop shuts every component down and reports all failures.
func (g *gateway) Stop(ctx context.Context) error {
	var err error
	if g.api != nil {
		err = multierr.Append(err, g.api.Stop(ctx))
	}
	err = multierr.Append(err, g.modbus.Stop())
	if g.auditLogger != nil {
		err = multierr.Append(err, g.auditLogger.Close())
	}
	return err
}

func (g *gateway) closeAudit() {
	if g.auditLogger != nil {
		_ = g.auditLogger.Close()
	}
}
