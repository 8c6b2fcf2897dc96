package nfcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/internal/telemetry"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/config"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
	metricsprom "github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics/prometheus"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/models"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/nrfclient"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/sbi"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/worker"
)

// runStart boots one network function and blocks until it is stopped by
// a signal or a listener failure.
func runStart(ctx context.Context, opts Options, cfgFile string) error {
	cfg, err := config.MustLoad(cfgFile, opts.NFType)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serviceName := "5g-" + strings.ToLower(opts.NFType)

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: opts.Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: opts.Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Starting network function",
		logger.NFType(opts.NFType),
		"version", opts.Version,
		"log_level", cfg.Logging.Level)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled",
			"endpoint", cfg.Telemetry.Endpoint,
			"sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	// Pick up logging level changes without a restart.
	if path := watchablePath(cfgFile); path != "" {
		if err := config.Watch(ctx, path, opts.NFType, func(next *config.Config) {
			logger.SetLevel(next.Logging.Level)
		}); err != nil {
			logger.Warn("Config watch disabled", logger.Err(err))
		}
	}

	svc, err := opts.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s: %w", opts.NFType, err)
	}

	var sbiMetrics metrics.SBIMetrics
	if cfg.Metrics.IsEnabled() {
		sbiMetrics = metricsprom.NewSBIMetrics()
	}

	// The NRF is the registry; every other function keeps a client to it.
	var registry *nrfclient.Client
	if svc.Type() != models.NFTypeNRF {
		registry = nrfclient.New(nrfclient.Options{
			URL:       cfg.NRF.URL,
			Requester: svc.Type(),
			Timeout:   cfg.SBI.ClientTimeout,
			CacheTTL:  cfg.NRF.CacheTTL,
			Fallback: func(target models.NFType) string {
				return cfg.Peers.URLFor(string(target))
			},
			Metrics: sbiMetrics,
		})
		if user, ok := svc.(registryUser); ok {
			user.SetRegistry(registry)
		}
	}

	handler := sbi.NewRouter(sbi.RouterConfig{
		NFType:        string(svc.Type()),
		InstanceID:    svc.InstanceID(),
		Metrics:       sbiMetrics,
		HealthDetails: svc.HealthDetails,
	}, svc.Routes)

	server := sbi.NewServer(cfg.SBI, cfg.ShutdownTimeout, handler)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	heartbeat := startRegistration(ctx, svc, registry, cfg)

	if err := svc.Start(ctx); err != nil {
		cancel()
		<-serverErr
		return fmt.Errorf("failed to start %s: %w", opts.NFType, err)
	}

	logger.Info("Network function ready",
		logger.NFType(opts.NFType),
		logger.NFInstanceID(svc.InstanceID()),
		"addr", server.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logger.Error("SBI server failed", logger.Err(err))
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if heartbeat != nil {
		heartbeat.Stop(cfg.ShutdownTimeout)
	}
	if registry != nil && svc.Profile() != nil {
		if err := registry.Deregister(shutdownCtx, svc.InstanceID()); err != nil {
			logger.Warn("Registry deregistration failed", logger.Err(err))
		}
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		logger.Warn("Service stop error", logger.Err(err))
	}

	cancel()
	if err := <-serverErr; err != nil && runErr == nil {
		runErr = err
	}

	logger.Info("Network function stopped", logger.NFType(opts.NFType))
	return runErr
}

// startRegistration registers the function with the NRF and keeps the
// registration alive. Registration failures are retried on the heartbeat
// interval so functions can start in any order.
func startRegistration(ctx context.Context, svc Service, registry *nrfclient.Client, cfg *config.Config) *worker.Periodic {
	profile := svc.Profile()
	if registry == nil || profile == nil {
		return nil
	}

	var registered atomic.Bool

	task := worker.NewPeriodic(worker.Config{
		Name:      "nrf-heartbeat",
		Interval:  cfg.NRF.HeartbeatInterval,
		Immediate: true,
	}, func(ctx context.Context) {
		if !registered.Load() {
			if err := registry.Register(ctx, profile); err != nil {
				logger.Warn("Registry registration failed, will retry", logger.Err(err))
				return
			}
			registered.Store(true)
			return
		}

		if err := registry.Heartbeat(ctx, svc.InstanceID(), 0); err != nil {
			logger.Warn("Registry heartbeat failed, re-registering", logger.Err(err))
			registered.Store(false)
		}
	})

	task.Start(ctx)
	return task
}

// watchablePath resolves the config file the watcher should follow.
// Returns empty when the function runs on pure defaults.
func watchablePath(cfgFile string) string {
	if cfgFile != "" {
		return cfgFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}
