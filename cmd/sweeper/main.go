package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/config"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	temporal "github.com/feral-file/ff-collection-indexer/internal/providers/temporal"
	"github.com/feral-file/ff-collection-indexer/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to Temporal
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	kinds := make([]domain.GrantKind, 0, len(cfg.Schedule.GrantKinds))
	for _, kind := range cfg.Schedule.GrantKinds {
		kinds = append(kinds, domain.GrantKind(kind))
	}

	scheduler := sweeper.NewScheduler(sweeper.SchedulerConfig{
		TaskQueue:           cfg.Temporal.TaskQueue,
		SnapshotInterval:    cfg.Schedule.SnapshotInterval,
		LiveTailInterval:    cfg.Schedule.LiveTailInterval,
		GrantReviewInterval: cfg.Schedule.GrantReviewInterval,
		RateReviewInterval:  cfg.Schedule.RateReviewInterval,
		GrantKinds:          kinds,
	}, temporalClient, adapter.NewClock())

	logger.InfoCtx(ctx, "Initialized sweeper",
		zap.String("name", scheduler.Name()),
		zap.Duration("snapshot_interval", cfg.Schedule.SnapshotInterval),
		zap.Duration("live_tail_interval", cfg.Schedule.LiveTailInterval),
		zap.Duration("grant_review_interval", cfg.Schedule.GrantReviewInterval),
		zap.Duration("rate_review_interval", cfg.Schedule.RateReviewInterval),
		zap.Strings("grant_kinds", cfg.Schedule.GrantKinds),
	)

	// Start the scheduler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := scheduler.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Give the scheduler time to finish the current tick
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	cancel()

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
