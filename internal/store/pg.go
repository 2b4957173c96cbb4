package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize caps a requested chunk size so a single batch insert stays under
// PostgreSQL's 65535 bind parameter limit of the extended protocol.
func calculateSafeBatchSize(requested int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000 // Total parameter headroom for batch-level overhead

	safeBatchSize := max((maxParams-totalHeadroom)/fieldsPerRecord, 1)
	if requested <= 0 || requested > safeBatchSize {
		return safeBatchSize
	}

	return requested
}

// WithTransaction runs fn inside a transaction. Nested calls use savepoints.
func (s *pgStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

// =============================================================================
// Collections
// =============================================================================

// UpsertOrSelectCollection registers a collection if needed and returns its current row
func (s *pgStore) UpsertOrSelectCollection(ctx context.Context, chain domain.ChainID, contract string) (*schema.IndexedCollection, error) {
	partition := domain.NewPartition(chain, contract)
	if !partition.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPartition, partition)
	}

	row := schema.IndexedCollection{
		Partition: partition.String(),
		Chain:     int64(chain),
		Contract:  domain.NormalizeAddress(contract),
		Status:    domain.IndexingStatusWaitingForSnapshotting,
		Standard:  domain.CollectionStandardUnknown,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partition"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert collection: %w", err)
	}

	collection, err := s.FindCollectionInfo(ctx, partition)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, partition)
	}

	return collection, nil
}

// FindCollectionInfo retrieves a collection by partition
func (s *pgStore) FindCollectionInfo(ctx context.Context, partition domain.Partition) (*schema.IndexedCollection, error) {
	var collection schema.IndexedCollection
	err := s.db.WithContext(ctx).Where("partition = ?", partition.String()).Take(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	return &collection, nil
}

// lockNextWaitingSnapshotJobSQL picks one eligible partition and locks it in a single statement.
// Never-attempted jobs go first, then stale locks, oldest update first.
const lockNextWaitingSnapshotJobSQL = `
UPDATE indexed_collections AS c
SET status = @snapshotting,
    snapshot_lock_owner = @owner,
    snapshot_lock_at = @now,
    snapshot_target_block = @target,
    updated_at = @now
WHERE c.partition = (
    SELECT partition
    FROM indexed_collections
    WHERE ((status = @waiting AND snapshot_lock_owner IS NULL)
        OR (status = @snapshotting AND snapshot_lock_at < @stale_before))
      AND last_indexed_block <= @target
    ORDER BY (snapshot_lock_at IS NULL) DESC, updated_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING c.partition, c.chain, c.contract, c.snapshot_lock_owner, c.snapshot_lock_at, c.snapshot_target_block`

// LockNextWaitingSnapshotJob atomically selects and locks one snapshot job
func (s *pgStore) LockNextWaitingSnapshotJob(ctx context.Context, input LockSnapshotJobInput) (*SnapshotJob, error) {
	if input.LockOwner == "" {
		return nil, errors.New("lock owner is required")
	}

	var rows []struct {
		Partition           string
		Chain               int64
		Contract            string
		SnapshotLockOwner   string
		SnapshotLockAt      time.Time
		SnapshotTargetBlock uint64
	}
	err := s.db.WithContext(ctx).Raw(lockNextWaitingSnapshotJobSQL, map[string]interface{}{
		"snapshotting": domain.IndexingStatusSnapshotting,
		"waiting":      domain.IndexingStatusWaitingForSnapshotting,
		"owner":        input.LockOwner,
		"now":          input.Now,
		"target":       input.TargetBlock,
		"stale_before": input.StaleBefore,
	}).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock next snapshot job: %w", err)
	}

	if len(rows) != 1 {
		return nil, nil
	}

	row := rows[0]
	return &SnapshotJob{
		Partition:   domain.Partition(row.Partition),
		Chain:       domain.ChainID(row.Chain),
		Contract:    row.Contract,
		LockOwner:   row.SnapshotLockOwner,
		LockAt:      row.SnapshotLockAt,
		TargetBlock: row.SnapshotTargetBlock,
	}, nil
}

// fenced scopes an update to a partition still SNAPSHOTTING under the given lock owner
func (s *pgStore) fenced(ctx context.Context, fence SnapshotFence) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&schema.IndexedCollection{}).
		Where("partition = ? AND status = ? AND snapshot_lock_owner = ?",
			fence.Partition.String(), domain.IndexingStatusSnapshotting, fence.LockOwner)
}

// CommitSnapshotSuccess transitions a locked snapshot job to LIVE_TAILING
func (s *pgStore) CommitSnapshotSuccess(ctx context.Context, input CommitSnapshotInput) (bool, error) {
	updates := map[string]interface{}{
		"status":                domain.IndexingStatusLiveTailing,
		"standard":              input.Standard,
		"adapter":               input.Adapter,
		"collection_name":       input.CollectionName,
		"total_supply":          input.TotalSupply,
		"snapshot_stats":        input.SnapshotStats,
		"last_indexed_block":    gorm.Expr("GREATEST(last_indexed_block, ?)", input.AtBlock),
		"safe_head_block":       gorm.Expr("GREATEST(safe_head_block, ?)", input.AtBlock),
		"indexed_since_block":   gorm.Expr("CASE WHEN indexed_since_block = 0 THEN ? ELSE indexed_since_block END", input.AtBlock),
		"lag_blocks":            input.LagBlocks,
		"lag_seconds":           input.LagSeconds,
		"error_message":         nil,
		"snapshot_lock_owner":   nil,
		"snapshot_lock_at":      nil,
		"snapshot_target_block": nil,
		"updated_at":            input.Now,
	}

	result := s.fenced(ctx, input.SnapshotFence).
		Where("snapshot_target_block = ?", input.AtBlock).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to commit snapshot: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// FailSnapshotAndUnlockWithMessage transitions a locked snapshot job to ERROR_SNAPSHOTTING
func (s *pgStore) FailSnapshotAndUnlockWithMessage(ctx context.Context, fence SnapshotFence, message string) (bool, error) {
	result := s.fenced(ctx, fence).Updates(map[string]interface{}{
		"status":                domain.IndexingStatusErrorSnapshotting,
		"error_message":         message,
		"snapshot_lock_owner":   nil,
		"snapshot_lock_at":      nil,
		"snapshot_target_block": nil,
		"updated_at":            gorm.Expr("now()"),
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to fail snapshot: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		logger.WarnCtx(ctx, "Snapshot failure not recorded, lock no longer held",
			zap.String("partition", fence.Partition.String()),
			zap.String("lock_owner", fence.LockOwner))
	}

	return result.RowsAffected == 1, nil
}

// MarkUnindexableWithMessage transitions a locked snapshot job to UNINDEXABLE
func (s *pgStore) MarkUnindexableWithMessage(ctx context.Context, fence SnapshotFence, standard domain.CollectionStandard, message string) (bool, error) {
	result := s.fenced(ctx, fence).Updates(map[string]interface{}{
		"status":                domain.IndexingStatusUnindexable,
		"standard":              standard,
		"error_message":         message,
		"snapshot_lock_owner":   nil,
		"snapshot_lock_at":      nil,
		"snapshot_target_block": nil,
		"updated_at":            gorm.Expr("now()"),
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark collection unindexable: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		logger.WarnCtx(ctx, "Unindexable status not recorded, lock no longer held",
			zap.String("partition", fence.Partition.String()),
			zap.String("lock_owner", fence.LockOwner))
	}

	return result.RowsAffected == 1, nil
}

// SetIndexedSinceIfEmpty sets indexed_since_block if it was never set
func (s *pgStore) SetIndexedSinceIfEmpty(ctx context.Context, partition domain.Partition, block uint64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.IndexedCollection{}).
		Where("partition = ? AND indexed_since_block = 0", partition.String()).
		Update("indexed_since_block", block).Error
	if err != nil {
		return fmt.Errorf("failed to set indexed since block: %w", err)
	}
	return nil
}

// RequeueCollection moves a failed collection back to the snapshot queue
func (s *pgStore) RequeueCollection(ctx context.Context, partition domain.Partition) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&schema.IndexedCollection{}).
		Where("partition = ? AND status IN ?", partition.String(),
			[]domain.IndexingStatus{domain.IndexingStatusErrorSnapshotting, domain.IndexingStatusUnindexable}).
		Updates(map[string]interface{}{
			"status":                domain.IndexingStatusWaitingForSnapshotting,
			"error_message":         nil,
			"snapshot_lock_owner":   nil,
			"snapshot_lock_at":      nil,
			"snapshot_target_block": nil,
			"updated_at":            gorm.Expr("now()"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to requeue collection: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// FindLiveTailingCollections returns LIVE_TAILING collections, least recently advanced first
func (s *pgStore) FindLiveTailingCollections(ctx context.Context, limit int) ([]schema.IndexedCollection, error) {
	var collections []schema.IndexedCollection
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.IndexingStatusLiveTailing).
		Order("updated_at ASC").
		Limit(limit).
		Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find live tailing collections: %w", err)
	}
	return collections, nil
}

// AdvanceHeads moves the cursors of a LIVE_TAILING collection forward, never backwards
func (s *pgStore) AdvanceHeads(ctx context.Context, input AdvanceHeadsInput) (bool, error) {
	updates := map[string]interface{}{
		"last_indexed_block": gorm.Expr("GREATEST(last_indexed_block, ?)", input.LastIndexedBlock),
		"safe_head_block":    gorm.Expr("GREATEST(safe_head_block, ?)", input.SafeHeadBlock),
		"lag_blocks":         input.LagBlocks,
		"lag_seconds":        input.LagSeconds,
		"updated_at":         input.Now,
	}
	if input.LastEventTime != nil {
		updates["last_event_time"] = *input.LastEventTime
	}

	result := s.db.WithContext(ctx).
		Model(&schema.IndexedCollection{}).
		Where("partition = ? AND status = ?", input.Partition.String(), domain.IndexingStatusLiveTailing).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to advance heads: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// RefreshLagMetrics updates lag telemetry without moving cursors
func (s *pgStore) RefreshLagMetrics(ctx context.Context, input LagMetricsInput) error {
	err := s.db.WithContext(ctx).
		Model(&schema.IndexedCollection{}).
		Where("partition = ?", input.Partition.String()).
		Updates(map[string]interface{}{
			"lag_blocks":  input.LagBlocks,
			"lag_seconds": input.LagSeconds,
			"updated_at":  input.Now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to refresh lag metrics: %w", err)
	}
	return nil
}

// =============================================================================
// Ownership
// =============================================================================

// UpsertOwners writes current owners in chunks, updating every ownership column on conflict
func (s *pgStore) UpsertOwners(ctx context.Context, rows []schema.CollectionOwner, chunkSize int) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "partition"}, {Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"owner",
				"since_block",
				"since_time",
				"sale_epoch_start_block",
				"sale_epoch_tx",
				"free_transfers_since_epoch",
				"updated_at",
			}),
		}).
		CreateInBatches(rows, calculateSafeBatchSize(chunkSize, 9)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert owners: %w", err)
	}
	return nil
}

// UpsertOwnersHistory appends history rows in chunks; existing rows are left untouched
func (s *pgStore) UpsertOwnersHistory(ctx context.Context, rows []schema.CollectionOwnerHistory, chunkSize int) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "partition"}, {Name: "token_id"}, {Name: "block_number"}, {Name: "log_index"},
			},
			DoNothing: true,
		}).
		CreateInBatches(rows, calculateSafeBatchSize(chunkSize, 12)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert owners history: %w", err)
	}
	return nil
}

// UpsertTransfers appends transfer rows in chunks; existing rows are left untouched
func (s *pgStore) UpsertTransfers(ctx context.Context, rows []schema.CollectionTransfer, chunkSize int) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partition"}, {Name: "block_number"}, {Name: "log_index"}},
			DoNothing: true,
		}).
		CreateInBatches(rows, calculateSafeBatchSize(chunkSize, 12)).Error
	if err != nil {
		return fmt.Errorf("failed to upsert transfers: %w", err)
	}
	return nil
}

// GetOwner retrieves the current owner of a token
func (s *pgStore) GetOwner(ctx context.Context, partition domain.Partition, tokenID string) (*schema.CollectionOwner, error) {
	var owner schema.CollectionOwner
	err := s.db.WithContext(ctx).
		Where("partition = ? AND token_id = ?", partition.String(), tokenID).
		Take(&owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &owner, nil
}

// GetOwnersForTokens retrieves the current owners of the given tokens
func (s *pgStore) GetOwnersForTokens(ctx context.Context, partition domain.Partition, tokenIDs []string) (map[string]schema.CollectionOwner, error) {
	result := make(map[string]schema.CollectionOwner, len(tokenIDs))
	if len(tokenIDs) == 0 {
		return result, nil
	}

	var owners []schema.CollectionOwner
	err := s.db.WithContext(ctx).
		Where("partition = ? AND token_id IN ?", partition.String(), tokenIDs).
		Find(&owners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get owners for tokens: %w", err)
	}

	for _, owner := range owners {
		result[owner.TokenID] = owner
	}
	return result, nil
}

// GetAllTokenNumbersForCollection retrieves every indexed token id of a collection
func (s *pgStore) GetAllTokenNumbersForCollection(ctx context.Context, partition domain.Partition) ([]string, error) {
	var tokenIDs []string
	err := s.db.WithContext(ctx).
		Model(&schema.CollectionOwner{}).
		Where("partition = ?", partition.String()).
		Pluck("token_id", &tokenIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get token numbers: %w", err)
	}
	return tokenIDs, nil
}
