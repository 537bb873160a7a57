package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/propstore/propstore/internal/logger"
	"github.com/propstore/propstore/internal/telemetry"
	"github.com/propstore/propstore/pkg/api"
	"github.com/propstore/propstore/pkg/config"
	"github.com/propstore/propstore/pkg/manager"
	"github.com/propstore/propstore/pkg/metrics"
	"github.com/propstore/propstore/pkg/registry"

	// Import prometheus metrics to register init() functions
	_ "github.com/propstore/propstore/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the propstore server",
	Long: `Start the propstore server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/propstore/config.yaml.

Examples:
  # Start with default config location
  propstore start

  # Start with custom config file
  propstore start --config /etc/propstore/config.yaml

  # Start with environment variable overrides
  PROPSTORE_LOGGING_LEVEL=DEBUG propstore start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "propstore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.KeyError, err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "propstore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.KeyError, err)
		}
	}()

	// Initialize metrics (if enabled)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metrics.Handler(),
		}
		go func() {
			logger.Info("metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logger.KeyError, err)
			}
		}()
	}

	// Build the registry and the configured stores
	reg := registry.NewRegistry()
	if err := config.BuildStores(cfg, reg, metrics.NewStoreMetrics); err != nil {
		return fmt.Errorf("failed to build stores: %w", err)
	}
	logger.Info("stores registered", logger.KeyEntries, reg.Count())

	// Start the sweep driver
	mgr, err := manager.New(reg, cfg.Manager, metrics.NewManagerMetrics())
	if err != nil {
		return fmt.Errorf("failed to create sweep driver: %w", err)
	}
	mgr.Start(ctx)

	// Start the management API server (if enabled)
	apiErr := make(chan error, 1)
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API, reg, mgr)
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				apiErr <- err
			}
		}()
	}

	logger.Info("propstore started", "version", Version)

	// Wait for shutdown signal or a server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-apiErr:
		logger.Error("api server failed", logger.KeyError, err)
	}

	// Graceful shutdown, bounded by the configured timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	cancel()
	if apiServer != nil {
		if err := apiServer.Shutdown(); err != nil {
			logger.Error("api shutdown error", logger.KeyError, err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics shutdown error", logger.KeyError, err)
		}
	}
	mgr.Stop()
	reg.CloseAll()

	logger.Info("propstore stopped")
	return nil
}
