package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// =============================================================================
// Input and result types
// =============================================================================

// LockSnapshotJobInput is the input of LockNextWaitingSnapshotJob
type LockSnapshotJobInput struct {
	// LockOwner is a fresh opaque token identifying this attempt
	LockOwner string
	// TargetBlock is the reorg-safe block the snapshot will be taken at
	TargetBlock uint64
	// Now stamps snapshot_lock_at
	Now time.Time
	// StaleBefore is the lock age cut-off; SNAPSHOTTING rows locked before it can be taken over
	StaleBefore time.Time
}

// SnapshotJob is a locked snapshot job
type SnapshotJob struct {
	Partition   domain.Partition
	Chain       domain.ChainID
	Contract    string
	LockOwner   string
	LockAt      time.Time
	TargetBlock uint64
}

// SnapshotFence identifies the lock a fenced update must still hold
type SnapshotFence struct {
	Partition domain.Partition
	LockOwner string
}

// CommitSnapshotInput is the input of CommitSnapshotSuccess
type CommitSnapshotInput struct {
	SnapshotFence
	AtBlock        uint64
	Standard       domain.CollectionStandard
	Adapter        *string
	CollectionName *string
	TotalSupply    int64
	LagBlocks      uint64
	LagSeconds     int64
	SnapshotStats  datatypes.JSON
	Now            time.Time
}

// AdvanceHeadsInput is the input of AdvanceHeads
type AdvanceHeadsInput struct {
	Partition        domain.Partition
	LastIndexedBlock uint64
	SafeHeadBlock    uint64
	LagBlocks        uint64
	LagSeconds       int64
	LastEventTime    *time.Time
	Now              time.Time
}

// LagMetricsInput is the input of RefreshLagMetrics
type LagMetricsInput struct {
	Partition  domain.Partition
	LagBlocks  uint64
	LagSeconds int64
	Now        time.Time
}

// UpdateGrantStatusInput is the input of UpdateGrantStatus
type UpdateGrantStatusInput struct {
	ID           string
	Status       domain.GrantStatus
	ErrorDetails *string
	// ValidFrom is only written when non-nil
	ValidFrom *int64
	Now       time.Time
}

// SpentRateQuery selects the GRANTED grants of a grantor overlapping a validity window
type SpentRateQuery struct {
	Kind      domain.GrantKind
	GrantorID string
	// ValidFrom and ValidTo are unix millis, ValidTo already resolved to MAX_VALID_TO when open ended
	ValidFrom int64
	ValidTo   int64
	// ExcludeID skips the candidate itself
	ExcludeID string
}

// ReplaceGrantsInput is the input of DisableGrantsAndInsertReplacements
type ReplaceGrantsInput struct {
	// Replacements carry ReplacedGrantID pointing at the grant they replace
	Replacements    []schema.Grant
	DisabledMessage string
	Now             time.Time
}

// GrantFilter is the filter of SearchGrants
type GrantFilter struct {
	Kind          domain.GrantKind
	GrantorID     *string
	Chain         *int64
	Contract      *string
	Status        *domain.GrantStatus
	Sort          string
	SortDirection string
	Limit         int
	Offset        int
}

// Grant search sort columns
const (
	GrantSortCreatedAt = "created_at"
	GrantSortValidFrom = "valid_from"
	GrantSortValidTo   = "valid_to"
	GrantSortRate      = "rate"
)

// IsValidGrantSort checks if the sort column is supported
func IsValidGrantSort(sort string) bool {
	switch sort {
	case GrantSortCreatedAt, GrantSortValidFrom, GrantSortValidTo, GrantSortRate:
		return true
	default:
		return false
	}
}

// =============================================================================
// Store
// =============================================================================

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// WithTransaction runs fn inside a database transaction bound to the returned Store
	WithTransaction(ctx context.Context, fn func(tx Store) error) error

	// Collections

	// UpsertOrSelectCollection registers a collection as WAITING_FOR_SNAPSHOTTING if it is not tracked yet
	// and returns its current row
	UpsertOrSelectCollection(ctx context.Context, chain domain.ChainID, contract string) (*schema.IndexedCollection, error)
	// FindCollectionInfo returns the collection row, or nil if the partition is not tracked
	FindCollectionInfo(ctx context.Context, partition domain.Partition) (*schema.IndexedCollection, error)
	// LockNextWaitingSnapshotJob atomically picks and locks one snapshot job, or returns nil if none is eligible
	LockNextWaitingSnapshotJob(ctx context.Context, input LockSnapshotJobInput) (*SnapshotJob, error)
	// CommitSnapshotSuccess flips a locked job to LIVE_TAILING; false means the lock was lost
	CommitSnapshotSuccess(ctx context.Context, input CommitSnapshotInput) (bool, error)
	// FailSnapshotAndUnlockWithMessage flips a locked job to ERROR_SNAPSHOTTING; false means the lock was lost
	FailSnapshotAndUnlockWithMessage(ctx context.Context, fence SnapshotFence, message string) (bool, error)
	// MarkUnindexableWithMessage flips a locked job to UNINDEXABLE; false means the lock was lost
	MarkUnindexableWithMessage(ctx context.Context, fence SnapshotFence, standard domain.CollectionStandard, message string) (bool, error)
	// SetIndexedSinceIfEmpty sets indexed_since_block only if it was never set
	SetIndexedSinceIfEmpty(ctx context.Context, partition domain.Partition, block uint64) error
	// RequeueCollection moves a failed collection back to WAITING_FOR_SNAPSHOTTING; false if it was not failed
	RequeueCollection(ctx context.Context, partition domain.Partition) (bool, error)
	// FindLiveTailingCollections returns up to limit LIVE_TAILING collections, least recently advanced first
	FindLiveTailingCollections(ctx context.Context, limit int) ([]schema.IndexedCollection, error)
	// AdvanceHeads moves the cursors of a LIVE_TAILING collection forward; false if it is no longer live tailing
	AdvanceHeads(ctx context.Context, input AdvanceHeadsInput) (bool, error)
	// RefreshLagMetrics updates the lag telemetry of a collection
	RefreshLagMetrics(ctx context.Context, input LagMetricsInput) error

	// Ownership

	// UpsertOwners writes current owners, last writer wins per token
	UpsertOwners(ctx context.Context, rows []schema.CollectionOwner, chunkSize int) error
	// UpsertOwnersHistory appends ownership history, duplicates are no-ops
	UpsertOwnersHistory(ctx context.Context, rows []schema.CollectionOwnerHistory, chunkSize int) error
	// UpsertTransfers appends transfers, duplicates are no-ops
	UpsertTransfers(ctx context.Context, rows []schema.CollectionTransfer, chunkSize int) error
	// GetOwner returns the current owner row of a token, or nil
	GetOwner(ctx context.Context, partition domain.Partition, tokenID string) (*schema.CollectionOwner, error)
	// GetOwnersForTokens returns the current owner rows of the given tokens keyed by token id
	GetOwnersForTokens(ctx context.Context, partition domain.Partition, tokenIDs []string) (map[string]schema.CollectionOwner, error)
	// GetAllTokenNumbersForCollection returns every indexed token id of a collection
	GetAllTokenNumbersForCollection(ctx context.Context, partition domain.Partition) ([]string, error)

	// Grants

	// InsertGrant inserts a grant and its token rows
	InsertGrant(ctx context.Context, grant *schema.Grant, tokens []string) error
	// GetGrant returns a grant with its tokens, or nil
	GetGrant(ctx context.Context, kind domain.GrantKind, id string) (*schema.Grant, error)
	// SearchGrants returns a page of grants and the total count
	SearchGrants(ctx context.Context, filter GrantFilter) ([]schema.Grant, int64, error)
	// LockOldestPendingGrant locks the oldest PENDING grant (FOR UPDATE SKIP LOCKED), touches its updated_at
	// and loads its tokens. Must run inside WithTransaction. Returns nil if the queue is empty.
	LockOldestPendingGrant(ctx context.Context, kind domain.GrantKind, now time.Time) (*schema.Grant, error)
	// UpdateGrantStatus sets the status of a grant
	UpdateGrantStatus(ctx context.Context, input UpdateGrantStatusInput) error
	// GetGrantorSpentRate sums the rates of the grantor's GRANTED grants overlapping the window
	GetGrantorSpentRate(ctx context.Context, query SpentRateQuery) (float64, error)
	// ListGrantedGrants returns all GRANTED grants of a kind ordered by grantor and validity
	ListGrantedGrants(ctx context.Context, kind domain.GrantKind) ([]schema.Grant, error)
	// DisableGrantsAndInsertReplacements disables the replaced grants, inserts the replacements
	// and repoints the replaced grants' tokens to them
	DisableGrantsAndInsertReplacements(ctx context.Context, input ReplaceGrantsInput) error

	// Capacities

	// GetProducedRate returns the produced rate of a grantor; false if the grantor has none recorded
	GetProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string) (float64, bool, error)
	// UpsertProducedRate records the produced rate of a grantor
	UpsertProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string, rate float64) error
}
