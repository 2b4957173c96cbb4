package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/indexing"
)

// Stable workflow ids of the cycles; at most one run of each is open at a time
const (
	SnapshotCycleWorkflowID = "snapshot-cycle"
	LiveTailCycleWorkflowID = "live-tail-cycle"
	reviewGrantsWorkflowID  = "review-grants-%s"
	reReviewRatesWorkflowID = "rereview-rates-%s"
)

// ReviewGrantsWorkflowID returns the workflow id of the review cycle of a grant kind
func ReviewGrantsWorkflowID(kind domain.GrantKind) string {
	return fmt.Sprintf(reviewGrantsWorkflowID, kind)
}

// ReReviewRatesWorkflowID returns the workflow id of the rescale cycle of a grant kind
func ReReviewRatesWorkflowID(kind domain.GrantKind) string {
	return fmt.Sprintf(reReviewRatesWorkflowID, kind)
}

// WorkerCore defines the periodic indexing and grants workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockWorkerCore
type WorkerCore interface {
	// SnapshotCycle snapshots waiting collections one by one until none is eligible or the cap is reached
	SnapshotCycle(ctx workflow.Context) (*SnapshotCycleResult, error)

	// LiveTailCycle advances LIVE_TAILING collections towards the safe head
	LiveTailCycle(ctx workflow.Context) (*indexing.LiveTailResult, error)

	// ReviewGrants reviews the pending grants of one kind
	ReviewGrants(ctx workflow.Context, kind domain.GrantKind) (*grants.ReviewResult, error)

	// ReReviewRates rescales the GRANTED grants of one kind whose sum exceeds the grantor's capacity
	ReReviewRates(ctx workflow.Context, kind domain.GrantKind) (*grants.RescaleResult, error)
}

// WorkerCoreConfig holds the workflow tunables
type WorkerCoreConfig struct {
	// MaxSnapshotsPerCycle caps the number of snapshot attempts of one SnapshotCycle run
	MaxSnapshotsPerCycle int
	// MaxConsecutiveSnapshotErrors stops a SnapshotCycle run early when the chain or the database is unhealthy
	MaxConsecutiveSnapshotErrors int
	// SnapshotTimeout bounds one snapshot activity; it must not exceed the snapshot lock staleness
	SnapshotTimeout time.Duration
	// LiveTailTimeout bounds one live tail activity
	LiveTailTimeout time.Duration
	// GrantsTimeout bounds the review and rescale activities
	GrantsTimeout time.Duration
}

// DefaultWorkerCoreConfig returns the defaults used when a field is left zero
func DefaultWorkerCoreConfig() WorkerCoreConfig {
	return WorkerCoreConfig{
		MaxSnapshotsPerCycle:         20,
		MaxConsecutiveSnapshotErrors: 3,
		SnapshotTimeout:              15 * time.Minute,
		LiveTailTimeout:              10 * time.Minute,
		GrantsTimeout:                15 * time.Minute,
	}
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config   WorkerCoreConfig
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig) WorkerCore {
	defaults := DefaultWorkerCoreConfig()
	if config.MaxSnapshotsPerCycle <= 0 {
		config.MaxSnapshotsPerCycle = defaults.MaxSnapshotsPerCycle
	}
	if config.MaxConsecutiveSnapshotErrors <= 0 {
		config.MaxConsecutiveSnapshotErrors = defaults.MaxConsecutiveSnapshotErrors
	}
	if config.SnapshotTimeout <= 0 {
		config.SnapshotTimeout = defaults.SnapshotTimeout
	}
	if config.LiveTailTimeout <= 0 {
		config.LiveTailTimeout = defaults.LiveTailTimeout
	}
	if config.GrantsTimeout <= 0 {
		config.GrantsTimeout = defaults.GrantsTimeout
	}

	return &workerCore{
		executor: executor,
		config:   config,
	}
}
