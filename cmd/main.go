package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/adapters/errors/noop"
	"hermes/internal/adapters/errors/sentry"
	"hermes/internal/adapters/telegram"
	"hermes/internal/api"
	"hermes/internal/api/health"
	"hermes/internal/metrics"
	"hermes/internal/refdata"
	trendssvc "hermes/internal/services/trends"
	"hermes/internal/workers"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	ref, err := refdata.Load()
	if err != nil {
		log.Fatalf("Failed to load reference data: %v", err)
	}
	log.Infof("Reference data loaded: %d coins", len(ref.Coins()))

	// Messaging client and session gateway
	bridge := telegram.NewBridgeClient(telegram.BridgeConfig{
		BaseURL:   cfg.Telegram.BridgeURL,
		AuthToken: cfg.Telegram.AuthToken,
		Timeout:   cfg.Telegram.Timeout,
	})
	gateway := telegram.NewGateway(bridge)
	defer gateway.Close()

	// Trend pipeline
	fetcher := trendssvc.NewChannelFetcher(gateway, trendssvc.FetcherConfig{
		BatchSize:     cfg.Trends.BatchSize,
		BatchDelay:    cfg.Trends.BatchDelay,
		MessageLimit:  cfg.Trends.MessageLimit,
		MessagesKept:  cfg.Trends.MessagesKept,
		RecencyWindow: cfg.Trends.RecencyWindow,
	})
	extractor := trendssvc.NewMentionExtractor(ref)
	service := trendssvc.NewService(
		fetcher,
		gateway,
		trendssvc.NewCoinAggregator(extractor),
		trendssvc.NewTopicAggregator(ref),
		trendssvc.NewResultCache(),
		trendssvc.TTLConfig{
			Channels: cfg.Trends.ChannelsTTL,
			Coins:    cfg.Trends.CoinsTTL,
			Topics:   cfg.Trends.TopicsTTL,
		},
		cfg.Telegram.Channels,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background cache warming
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewTrendRefreshWorker(
		service,
		cfg.Workers.RefreshInterval,
		cfg.Workers.RefreshEnabled,
	))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// HTTP API
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	},
		api.NewHandler(service),
		health.New(log, gateway, cfg.App.Name, cfg.App.Version),
		log,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, log)

	// Graceful teardown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Worker shutdown error: %v", err)
	}
	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Errorf("Error tracker flush failed: %v", err)
	}

	log.Info("Shutdown complete")
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Sentry error tracking enabled")
	return tracker
}

// waitForShutdown blocks until a termination signal or context cancellation
func waitForShutdown(ctx context.Context, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("Received signal: %v", sig)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}
}
