package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/BobDeng1974/DNNCam/internal/auth"
	"github.com/BobDeng1974/DNNCam/internal/config"
	"github.com/BobDeng1974/DNNCam/internal/logging"
)

// Version is the gateway release.
const Version = "1.0.0"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "lensgw",
		Short:         "Modbus TCP gateway for the lens controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateway(cmd, configFlag)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newConfigCommand(&configFlag))
	rootCmd.AddCommand(newTokenCommand(&configFlag))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the gateway version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	})

	return rootCmd
}

func runGateway(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // ignore sync errors on stdout

	logger.Info("Starting lens gateway", zap.String("version", Version))

	gw, err := newGateway(cfg, logger)
	if err != nil {
		logger.Error("Failed to build gateway", zap.Error(err))
		return err
	}
	if err := gw.Start(); err != nil {
		_ = gw.Stop(cmd.Context())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	if err := gw.Stop(cmd.Context()); err != nil {
		logger.Error("Shutdown incomplete", zap.Error(err))
		return err
	}
	logger.Info("Lens gateway stopped")
	return nil
}

func newConfigCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Maintenance.AuthSecret != "" {
				cfg.Maintenance.AuthSecret = "********"
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newTokenCommand(configPath *string) *cobra.Command {
	var (
		subject string
		scopes  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a maintenance API bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Maintenance.AuthSecret == "" {
				return fmt.Errorf("maintenance.authSecret is not set; the API accepts requests without tokens")
			}

			token, err := auth.IssueToken(cfg.Maintenance.AuthSecret, subject, strings.Split(scopes, ","), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "operator", "Token subject")
	cmd.Flags().StringVar(&scopes, "scopes", auth.ScopeRead, "Comma-separated scopes (read, control)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	return cmd
}
