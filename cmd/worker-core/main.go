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
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/block"
	"github.com/feral-file/ff-collection-indexer/internal/config"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/indexing"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-collection-indexer/internal/providers/jetstream"
	temporal "github.com/feral-file/ff-collection-indexer/internal/providers/temporal"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerCoreConfig(*configFile, *envPath)
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
			"service":  "worker-core",
			"chain_id": fmt.Sprintf("%d", cfg.Ethereum.ChainID),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Worker Core")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database", zap.Int("max_open_conns", cfg.Database.MaxOpenConns))

	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	jcsAdapter := adapter.NewJCS()
	clockAdapter := adapter.NewClock()

	// Initialize ethereum client
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err))
	}
	defer ethClient.Close()

	chainClient := ethereum.NewClient(cfg.Ethereum.ChainID, ethClient, ethereum.Config{
		MulticallAddress:    cfg.Indexing.MulticallAddress,
		TokenByIndexBatch:   cfg.Indexing.TokenByIndexBatch,
		OwnerOfBatch:        cfg.Indexing.OwnerOfBatch,
		ProbeBatch:          cfg.Indexing.ProbeBatch,
		ProbeStopAfterEmpty: cfg.Indexing.ProbeStopAfterEmpty,
		MaxIDs:              cfg.Indexing.MaxIDs,
		PunksSupply:         cfg.Indexing.PunksSupply,
		BestBlockRetries:    cfg.Indexing.BestBlockRetries,
		BestBlockBackoff:    cfg.Indexing.BestBlockBackoff,
	})
	logger.InfoCtx(ctx, "Connected to Ethereum RPC", zap.Int64("chain_id", int64(cfg.Ethereum.ChainID)))

	blockProvider := block.NewBlockProvider(
		ethereum.NewEthereumBlockFetcher(chainClient),
		block.Config{
			TTL:         cfg.Ethereum.BlockHeadTTL,
			StaleWindow: cfg.Ethereum.BlockHeadStaleWindow,
			ReorgDepth:  cfg.Indexing.ReorgDepth,
		},
		clockAdapter,
	)

	// Initialize event publisher, events are dropped when no broker is configured
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter, jcsAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS url not configured, events will not be published")
		publisher = messaging.NewNoopPublisher()
	}
	defer publisher.Close()

	// Initialize indexing and grants components
	snapshotter := indexing.NewSnapshotter(dataStore, chainClient, blockProvider, publisher, clockAdapter, indexing.Config{
		ReorgDepth:      cfg.Indexing.ReorgDepth,
		LockStaleAfter:  cfg.Indexing.LockStaleAfter,
		UpsertChunkSize: cfg.Indexing.UpsertChunkSize,
		MaxIDs:          cfg.Indexing.MaxIDs,
	})
	liveTailer := indexing.NewLiveTailer(dataStore, chainClient, blockProvider, clockAdapter, indexing.LiveTailConfig{
		ReorgDepth:      cfg.Indexing.ReorgDepth,
		Range:           cfg.Indexing.LiveTailRange,
		Batch:           cfg.Indexing.LiveTailBatch,
		PoolSize:        cfg.Indexing.LiveTail.WorkerPoolSize,
		UpsertChunkSize: cfg.Indexing.UpsertChunkSize,
	})
	capacity := grants.NewStoreCapacitySource(dataStore)
	reviewer := grants.NewReviewer(dataStore, capacity, publisher, clockAdapter, grants.Config{
		ReviewBudget: cfg.Grants.ReviewBudget,
	})
	rescaler := grants.NewRescaler(dataStore, capacity, publisher, clockAdapter)

	executor := workflows.NewExecutor(snapshotter, liveTailer, reviewer, rescaler)

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

	// Create Temporal worker
	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.TaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors:                       []interceptor.WorkerInterceptor{temporal.NewSentryActivityInterceptor()},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("task_queue", cfg.Temporal.TaskQueue))

	// The snapshot activity must finish before its lock is considered stale
	workerCore := workflows.NewWorkerCore(executor, workflows.WorkerCoreConfig{
		MaxSnapshotsPerCycle: cfg.Indexing.SnapshotsPerCycle,
		SnapshotTimeout:      cfg.Indexing.LockStaleAfter,
		GrantsTimeout:        cfg.Grants.ReviewBudget + time.Minute,
	})

	// Register workflows
	temporalWorker.RegisterWorkflow(workerCore.SnapshotCycle)
	temporalWorker.RegisterWorkflow(workerCore.LiveTailCycle)
	temporalWorker.RegisterWorkflow(workerCore.ReviewGrants)
	temporalWorker.RegisterWorkflow(workerCore.ReReviewRates)
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.AttemptSnapshot)
	temporalWorker.RegisterActivity(executor.TailLiveCollections)
	temporalWorker.RegisterActivity(executor.ReviewPendingGrants)
	temporalWorker.RegisterActivity(executor.RescaleGrantedRates)
	logger.InfoCtx(ctx, "Registered activities")

	// Start worker
	if err := temporalWorker.Start(); err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.InfoCtx(ctx, "Shutting down worker", zap.String("signal", sig.String()))
	cancel()
	temporalWorker.Stop()
	logger.InfoCtx(ctx, "Worker stopped")
}
