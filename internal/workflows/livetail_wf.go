package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/indexing"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// LiveTailCycle advances LIVE_TAILING collections towards the safe head
func (w *workerCore) LiveTailCycle(ctx workflow.Context) (*indexing.LiveTailResult, error) {
	logger.InfoWf(ctx, "Starting live tail cycle")

	// every write is fenced and idempotent so the whole cycle can be retried
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.LiveTailTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})

	var result *indexing.LiveTailResult
	err := workflow.ExecuteActivity(ctx, w.executor.TailLiveCollections).Get(ctx, &result)
	if err != nil {
		logger.ErrorWf(ctx, fmt.Errorf("failed to tail live collections"), zap.Error(err))
		return nil, err
	}

	logger.InfoWf(ctx, "Live tail cycle finished",
		zap.Uint64("safe_target", result.SafeTarget),
		zap.Int("collections", result.Collections),
		zap.Int("advanced", result.Advanced),
		zap.Int("failed", result.Failed),
		zap.Int("events", result.Events))

	return result, nil
}
