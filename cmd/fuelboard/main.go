package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fuelboard/internal/amqp"
	"fuelboard/internal/backend"
	"fuelboard/internal/cache"
	"fuelboard/internal/cli"
	"fuelboard/internal/core"
	apphttp "fuelboard/internal/http"
	"fuelboard/internal/observability"
	"fuelboard/internal/services"
	"fuelboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("fuelboard")
	cfg := cli.LoadAndValidateConfig(logger)

	metrics := observability.DefaultMetrics

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	dash := services.NewDashboardService(result.Backend, services.DashboardConfig{
		Options:   cli.PipelineOptions(cfg),
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, logger, metrics)

	// A failed startup load is served as the failure state, not fatal.
	if _, err := dash.Reload(context.Background(), services.TriggerStartup); err != nil {
		logger.Error("Initial dataset load failed", "error", err, "kind", core.ErrorKind(err))
	}

	cacheManager := cache.NewManager()
	cacheManager.Register(dash.Cache())
	cacheManager.OnClean(func(removed int) { metrics.CacheEvicted.Add(float64(removed)) })
	cacheManager.StartCleanup(cfg.CacheTTL)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:     ":" + cfg.Port,
		Logger:   logger,
		Metrics:  metrics,
		Gatherer: prometheus.DefaultGatherer,
	}, dash)

	var poller *worker.Poller
	var amqpClient *amqp.Client

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if poller != nil {
			if err := poller.Stop(ctx); err != nil {
				logger.Warn("Poller stop error", "error", err)
			}
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	})

	if cfg.ReloadInterval > 0 {
		poller = worker.NewPoller(result.Backend, dash, worker.PollerConfig{Interval: cfg.ReloadInterval, Logger: logger})
		if err := poller.Start(ctx); err != nil {
			logger.Error("Failed to start reload poller", "error", err)
			os.Exit(1)
		}
		logger.Info("Reload poller started", "interval", cfg.ReloadInterval, "watch", result.Watch)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Reload messages are optional; the dashboard still serves.
			logger.Warn("AMQP unavailable, reload messages disabled", "error", err)
		} else {
			go func() {
				if err := worker.NewReloadWorker(dash, logger).Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Reload message consumption stopped", "error", err)
				}
			}()
			logger.Info("Consuming reload messages", "queue", cfg.AMQPQueue)
		}
	}

	logger.Info("Starting fuelboard server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
