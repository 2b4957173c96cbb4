package workflows

import (
	"fmt"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/indexing"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// SnapshotCycleResult summarises one SnapshotCycle run
type SnapshotCycleResult struct {
	Attempts    int `json:"attempts"`
	LiveTailing int `json:"live_tailing"`
	Unindexable int `json:"unindexable"`
	Failed      int `json:"failed"`
	// Drained is true when the cycle stopped because no job was eligible
	Drained bool `json:"drained"`
}

// SnapshotCycle snapshots waiting collections one by one until none is eligible or the cap is reached
func (w *workerCore) SnapshotCycle(ctx workflow.Context) (*SnapshotCycleResult, error) {
	logger.InfoWf(ctx, "Starting snapshot cycle", zap.Int("max_snapshots", w.config.MaxSnapshotsPerCycle))

	// A failed snapshot is already recorded as ERROR_SNAPSHOTTING, a retry would lock a different job
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.SnapshotTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	result := &SnapshotCycleResult{}
	consecutiveErrors := 0

	for result.Attempts < w.config.MaxSnapshotsPerCycle {
		var snapshot *indexing.SnapshotResult
		err := workflow.ExecuteActivity(ctx, w.executor.AttemptSnapshot).Get(ctx, &snapshot)
		result.Attempts++

		if err != nil {
			result.Failed++
			consecutiveErrors++
			logger.ErrorWf(ctx, fmt.Errorf("snapshot attempt failed"),
				zap.Error(err),
				zap.Int("consecutive_errors", consecutiveErrors))
			if consecutiveErrors >= w.config.MaxConsecutiveSnapshotErrors {
				return result, fmt.Errorf("stopping snapshot cycle after %d consecutive errors: %w", consecutiveErrors, err)
			}
			continue
		}
		consecutiveErrors = 0

		if snapshot == nil {
			result.Attempts--
			result.Drained = true
			break
		}

		switch snapshot.Status {
		case domain.IndexingStatusLiveTailing:
			result.LiveTailing++
		case domain.IndexingStatusUnindexable:
			result.Unindexable++
		}
	}

	logger.InfoWf(ctx, "Snapshot cycle finished",
		zap.Int("attempts", result.Attempts),
		zap.Int("live_tailing", result.LiveTailing),
		zap.Int("unindexable", result.Unindexable),
		zap.Int("failed", result.Failed),
		zap.Bool("drained", result.Drained))

	return result, nil
}
