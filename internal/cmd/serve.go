package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/config"
	apperrors "github.com/ccdaniele/name-finder/internal/errors"
	"github.com/ccdaniele/name-finder/internal/observability"
	"github.com/ccdaniele/name-finder/internal/server"
	"github.com/ccdaniele/name-finder/internal/server/handlers"
)

const telemetryNamespace = "namefinder"

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker reports whether the metrics exporter is running.
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errors.New("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API with graceful shutdown support.

Endpoints:
  POST /v1/validate              Validate a single name
  POST /v1/runs                  Generate and clear a batch of names
  GET  /v1/runs/{id}             Fetch a run
  POST /v1/runs/{id}/replace     Replace one name of a live run
  GET  /v1/runs/{id}/export      Export a run (?format=csv|markdown|json|table)
  POST /v1/export/csv            Render posted names as CSV

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config file re-read`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}
	if !cmd.Flags().Changed("host") && cfg.Server.Host != "" {
		serverHost = cfg.Server.Host
	}
	if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
		serverPort = cfg.Server.Port
	}

	observability.InitServerLogger(binaryName, cfg.Logging.Level, telemetryNamespace)
	logger := observability.ServerLogger

	metricsPort := cfg.Metrics.Port
	if metricsPort == 0 {
		metricsPort = 9090
	}
	if err := observability.InitMetrics(telemetryNamespace, metricsPort); err != nil {
		logger.Error("Failed to initialize metrics", zap.Error(err))
		return apperrors.Wrap(cmd.Context(), apperrors.CodeInternal, err, "metrics initialization failed")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close() // nolint:errcheck // best-effort cleanup
	if a.llm == nil {
		logger.Warn("No ailink provider configured; name generation endpoints will return 503")
	}

	logger.Info("Initializing server",
		zap.String("service", binaryName),
		zap.String("version", versionInfo.Version),
		zap.String("host", serverHost),
		zap.Int("port", serverPort),
		zap.Int("metrics_port", metricsPort))

	hm := handlers.NewHealthManager(versionInfo.Version)
	hm.RegisterChecker("store", a.store)
	hm.RegisterOptionalChecker("telemetry", telemetryHealthChecker{})

	clearance := &handlers.Clearance{
		Validator: a.pipeline,
		Runs:      a.store,
	}
	if a.runner != nil {
		clearance.Runner = a.runner
		clearance.Replacer = a.replacer
		clearance.Analyzer = a.analyzer
	}

	opts := []server.Option{
		server.WithClearance(clearance),
		server.WithHealth(hm),
		server.WithAdminToken(os.Getenv(config.EnvPrefix + "_ADMIN_TOKEN")),
	}
	if cfg.Server.WriteTimeout > 0 {
		opts = append(opts, server.WithWriteTimeout(cfg.Server.WriteTimeout))
	}
	srv := server.New(serverHost, serverPort, opts...)
	handlers.SetAppName(binaryName)

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// LIFO: the HTTP server stops, then the exporter, then the logger flushes.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		if err := observability.ShutdownMetrics(); err != nil {
			logger.Warn("Prometheus exporter did not stop cleanly", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: re-reading config file")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				logger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			logger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "config reload failed")
		}
		// Providers and checkers keep the settings they started with.
		logger.Info("Configuration file re-read; restart to apply provider changes",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server...",
			zap.String("host", serverHost),
			zap.Int("port", serverPort))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server error")
	}
	return nil
}
