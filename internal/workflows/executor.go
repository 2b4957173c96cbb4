package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/indexing"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks -mock_names=Executor=MockExecutor
type Executor interface {
	// AttemptSnapshot locks and snapshots one waiting collection. A nil result means no job was eligible.
	AttemptSnapshot(ctx context.Context) (*indexing.SnapshotResult, error)

	// TailLiveCollections runs one live tailing cycle over a batch of LIVE_TAILING collections
	TailLiveCollections(ctx context.Context) (*indexing.LiveTailResult, error)

	// ReviewPendingGrants drains the pending grants queue of one kind
	ReviewPendingGrants(ctx context.Context, kind domain.GrantKind) (*grants.ReviewResult, error)

	// RescaleGrantedRates replaces GRANTED grants that overflow their grantor's capacity
	RescaleGrantedRates(ctx context.Context, kind domain.GrantKind) (*grants.RescaleResult, error)
}

// executor is the concrete implementation of Executor
type executor struct {
	snapshotter indexing.Snapshotter
	liveTailer  indexing.LiveTailer
	reviewer    grants.Reviewer
	rescaler    grants.Rescaler
}

// NewExecutor creates a new executor instance
func NewExecutor(
	snapshotter indexing.Snapshotter,
	liveTailer indexing.LiveTailer,
	reviewer grants.Reviewer,
	rescaler grants.Rescaler,
) Executor {
	return &executor{
		snapshotter: snapshotter,
		liveTailer:  liveTailer,
		reviewer:    reviewer,
		rescaler:    rescaler,
	}
}

// AttemptSnapshot locks and snapshots one waiting collection
func (e *executor) AttemptSnapshot(ctx context.Context) (*indexing.SnapshotResult, error) {
	result, err := e.snapshotter.AttemptSnapshot(ctx)
	if err != nil {
		// a lost lock means another worker owns the job now, retrying cannot help
		if errors.Is(err, domain.ErrLockLost) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "LockLost", err)
		}
		return nil, err
	}
	if result != nil {
		logger.InfoCtx(ctx, "Snapshot attempt finished",
			zap.String("partition", result.Partition.String()),
			zap.String("status", string(result.Status)),
			zap.Uint64("at_block", result.AtBlock))
	}
	return result, nil
}

// TailLiveCollections runs one live tailing cycle
func (e *executor) TailLiveCollections(ctx context.Context) (*indexing.LiveTailResult, error) {
	result, err := e.liveTailer.RunCycle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run live tail cycle: %w", err)
	}
	return result, nil
}

// ReviewPendingGrants drains the pending grants queue of one kind
func (e *executor) ReviewPendingGrants(ctx context.Context, kind domain.GrantKind) (*grants.ReviewResult, error) {
	if !domain.IsValidGrantKind(kind) {
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown grant kind %q", kind), "BadRequest", domain.ErrBadRequest)
	}
	return e.reviewer.Handle(ctx, kind)
}

// RescaleGrantedRates replaces GRANTED grants that overflow their grantor's capacity
func (e *executor) RescaleGrantedRates(ctx context.Context, kind domain.GrantKind) (*grants.RescaleResult, error) {
	if !domain.IsValidGrantKind(kind) {
		return nil, temporal.NewNonRetryableApplicationError(fmt.Sprintf("unknown grant kind %q", kind), "BadRequest", domain.ErrBadRequest)
	}
	return e.rescaler.ReReviewRates(ctx, kind)
}
