package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// ReviewGrants reviews the pending grants of one kind
func (w *workerCore) ReviewGrants(ctx workflow.Context, kind domain.GrantKind) (*grants.ReviewResult, error) {
	logger.InfoWf(ctx, "Starting grants review", zap.String("kind", string(kind)))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.GrantsTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 10 * time.Second,
			MaximumAttempts: 2,
		},
	})

	var result *grants.ReviewResult
	err := workflow.ExecuteActivity(ctx, w.executor.ReviewPendingGrants, kind).Get(ctx, &result)
	if err != nil {
		logger.ErrorWf(ctx, fmt.Errorf("failed to review pending grants"),
			zap.Error(err),
			zap.String("kind", string(kind)))
		return nil, err
	}

	logger.InfoWf(ctx, "Grants review finished",
		zap.String("kind", string(kind)),
		zap.Int("reviewed", result.Reviewed),
		zap.String("stop_reason", result.StopReason))

	return result, nil
}

// ReReviewRates rescales the GRANTED grants of one kind whose sum exceeds the grantor's capacity
func (w *workerCore) ReReviewRates(ctx workflow.Context, kind domain.GrantKind) (*grants.RescaleResult, error) {
	logger.InfoWf(ctx, "Starting grant rates review", zap.String("kind", string(kind)))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.GrantsTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 10 * time.Second,
			MaximumAttempts: 2,
		},
	})

	var result *grants.RescaleResult
	err := workflow.ExecuteActivity(ctx, w.executor.RescaleGrantedRates, kind).Get(ctx, &result)
	if err != nil {
		logger.ErrorWf(ctx, fmt.Errorf("failed to rescale granted rates"),
			zap.Error(err),
			zap.String("kind", string(kind)))
		return nil, err
	}

	logger.InfoWf(ctx, "Grant rates review finished",
		zap.String("kind", string(kind)),
		zap.Int("replacements", result.Replacements))

	return result, nil
}
