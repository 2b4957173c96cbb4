package indexing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/block"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// ErrCommitConditionsFailed is returned when the commit no longer matches the lock
var ErrCommitConditionsFailed = fmt.Errorf("%w: commit conditions failed (status/lock mismatch)", domain.ErrLockLost)

// punksCollectionName is the name stored for CryptoPunks, which has no name()
const punksCollectionName = "CryptoPunks"

// Config holds the snapshotting tunables
type Config struct {
	ReorgDepth      uint64
	LockStaleAfter  time.Duration
	UpsertChunkSize int
	MaxIDs          int
}

// SnapshotResult describes the outcome of one snapshot attempt
type SnapshotResult struct {
	Partition   domain.Partition      `json:"partition"`
	Status      domain.IndexingStatus `json:"status"`
	AtBlock     uint64                `json:"at_block"`
	Strategy    string                `json:"strategy,omitempty"`
	TokenCount  int                   `json:"token_count"`
	OwnedTokens int                   `json:"owned_tokens"`
	Reason      string                `json:"reason,omitempty"`
}

// snapshotStats is persisted as indexed_collections.snapshot_stats
type snapshotStats struct {
	Strategy    string `json:"strategy"`
	AtBlock     uint64 `json:"at_block"`
	IDsFound    int    `json:"ids_found"`
	OwnedTokens int    `json:"owned_tokens"`
	DurationMS  int64  `json:"duration_ms"`
}

// Snapshotter takes one-time ownership baselines of collections
//
//go:generate mockgen -source=snapshot.go -destination=../mocks/snapshotter.go -package=mocks -mock_names=Snapshotter=MockSnapshotter
type Snapshotter interface {
	// AttemptSnapshot locks the next eligible collection and snapshots it. Returns nil when nothing is eligible.
	AttemptSnapshot(ctx context.Context) (*SnapshotResult, error)

	// Snapshot runs a locked job to completion. Failures are persisted on the collection and returned.
	Snapshot(ctx context.Context, job store.SnapshotJob) (*SnapshotResult, error)
}

type snapshotter struct {
	store        store.Store
	chain        ethereum.EthereumClient
	blocks       block.BlockProvider
	publisher    messaging.Publisher
	clock        adapter.Clock
	config       Config
	strategies   []Strategy
	newLockOwner func() string
}

// NewSnapshotter creates a Snapshotter using the default enumeration strategies
func NewSnapshotter(
	st store.Store,
	chain ethereum.EthereumClient,
	blocks block.BlockProvider,
	publisher messaging.Publisher,
	clock adapter.Clock,
	config Config,
) Snapshotter {
	return &snapshotter{
		store:      st,
		chain:      chain,
		blocks:     blocks,
		publisher:  publisher,
		clock:      clock,
		config:     config,
		strategies: DefaultStrategies(chain, config.MaxIDs),
		newLockOwner: func() string {
			return "snap-" + uuid.NewString()
		},
	}
}

// AttemptSnapshot picks one job, preferring never-attempted ones over stale locks
func (s *snapshotter) AttemptSnapshot(ctx context.Context) (*SnapshotResult, error) {
	safeHead, err := s.blocks.GetSafeHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get safe head: %w", err)
	}

	now := s.clock.Now()
	job, err := s.store.LockNextWaitingSnapshotJob(ctx, store.LockSnapshotJobInput{
		LockOwner:   s.newLockOwner(),
		TargetBlock: safeHead,
		Now:         now,
		StaleBefore: now.Add(-s.config.LockStaleAfter),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lock snapshot job: %w", err)
	}
	if job == nil {
		logger.DebugCtx(ctx, "No collection waiting for snapshotting")
		return nil, nil
	}

	logger.InfoCtx(ctx, "Locked snapshot job",
		zap.String("partition", job.Partition.String()),
		zap.String("lock_owner", job.LockOwner),
		zap.Uint64("at_block", job.TargetBlock))

	return s.Snapshot(ctx, *job)
}

// Snapshot validates, enumerates and commits one locked collection
func (s *snapshotter) Snapshot(ctx context.Context, job store.SnapshotJob) (*SnapshotResult, error) {
	atBlock := job.TargetBlock
	if atBlock == 0 {
		safeHead, err := s.blocks.GetSafeHead(ctx)
		if err != nil {
			return nil, s.fail(ctx, job, fmt.Errorf("failed to get safe head: %w", err))
		}
		atBlock = safeHead
	}

	fence := store.SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner}

	validation, err := ValidateIndexable(ctx, s.chain, job.Contract, atBlock)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}
	if !validation.OK {
		logger.InfoCtx(ctx, "Collection is not indexable",
			zap.String("partition", job.Partition.String()),
			zap.String("reason", validation.Reason))

		applied, err := s.store.MarkUnindexableWithMessage(ctx, fence, validation.Classification.Standard(), validation.Reason)
		if err != nil {
			return nil, fmt.Errorf("failed to mark collection unindexable: %w", err)
		}
		if applied {
			s.publish(ctx, messaging.Event{
				ID:        fmt.Sprintf("%s:%s:unindexable", job.Partition, job.LockOwner),
				Type:      messaging.EventCollectionUnindexable,
				Partition: job.Partition.String(),
				AtBlock:   atBlock,
				Message:   validation.Reason,
			})
		}

		return &SnapshotResult{
			Partition: job.Partition,
			Status:    domain.IndexingStatusUnindexable,
			AtBlock:   atBlock,
			Reason:    validation.Reason,
		}, nil
	}

	result, err := s.run(ctx, job, fence, validation.Classification, atBlock)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}
	return result, nil
}

// run performs the enumeration and the fenced commit
func (s *snapshotter) run(
	ctx context.Context,
	job store.SnapshotJob,
	fence store.SnapshotFence,
	classification domain.Classification,
	atBlock uint64,
) (*SnapshotResult, error) {
	startedAt := s.clock.Now()

	target, name := s.prepare(ctx, job.Contract, classification, atBlock)

	ids, strategy, err := s.enumerate(ctx, target)
	if err != nil {
		return nil, err
	}

	totalSupply := int64(len(ids))
	if target.TotalSupply != nil && target.TotalSupply.IsInt64() && !classification.IsPunks() {
		totalSupply = target.TotalSupply.Int64()
	}

	blockTime, err := s.blocks.GetBlockTimestamp(ctx, atBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to get block timestamp: %w", err)
	}

	var owners []string
	if classification.IsPunks() {
		owners, err = s.chain.OwnersViaMulticallPunks(ctx, job.Contract, ids, atBlock)
	} else {
		owners, err = s.chain.OwnersViaMulticall721(ctx, job.Contract, ids, atBlock)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owners: %w", err)
	}

	current, history := buildBaselineRows(job.Partition, ids, owners, atBlock, blockTime)

	now := s.clock.Now()
	stats, err := json.Marshal(snapshotStats{
		Strategy:    strategy,
		AtBlock:     atBlock,
		IDsFound:    len(ids),
		OwnedTokens: len(current),
		DurationMS:  now.Sub(startedAt).Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot stats: %w", err)
	}

	lag := block.ComputeLag(atBlock, atBlock, blockTime, now)

	err = s.store.WithTransaction(ctx, func(tx store.Store) error {
		if err := tx.UpsertOwners(ctx, current, s.config.UpsertChunkSize); err != nil {
			return fmt.Errorf("failed to upsert owners: %w", err)
		}
		if err := tx.UpsertOwnersHistory(ctx, history, s.config.UpsertChunkSize); err != nil {
			return fmt.Errorf("failed to upsert owner history: %w", err)
		}

		applied, err := tx.CommitSnapshotSuccess(ctx, store.CommitSnapshotInput{
			SnapshotFence:  fence,
			AtBlock:        atBlock,
			Standard:       classification.Standard(),
			Adapter:        classification.AdapterName(),
			CollectionName: name,
			TotalSupply:    totalSupply,
			LagBlocks:      lag.Blocks,
			LagSeconds:     lag.Seconds,
			SnapshotStats:  datatypes.JSON(stats),
			Now:            now,
		})
		if err != nil {
			return fmt.Errorf("failed to commit snapshot: %w", err)
		}
		if !applied {
			return ErrCommitConditionsFailed
		}

		return tx.SetIndexedSinceIfEmpty(ctx, job.Partition, atBlock)
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Snapshot committed",
		zap.String("partition", job.Partition.String()),
		zap.Uint64("at_block", atBlock),
		zap.String("strategy", strategy),
		zap.Int("ids_found", len(ids)),
		zap.Int("owned_tokens", len(current)))

	s.publish(ctx, messaging.Event{
		ID:        fmt.Sprintf("%s:%s:live_tailing", job.Partition, job.LockOwner),
		Type:      messaging.EventCollectionLiveTailing,
		Partition: job.Partition.String(),
		AtBlock:   atBlock,
	})

	return &SnapshotResult{
		Partition:   job.Partition,
		Status:      domain.IndexingStatusLiveTailing,
		AtBlock:     atBlock,
		Strategy:    strategy,
		TokenCount:  len(ids),
		OwnedTokens: len(current),
	}, nil
}

// prepare reads what the strategies need to know about the contract
func (s *snapshotter) prepare(ctx context.Context, contract string, classification domain.Classification, atBlock uint64) (EnumerationTarget, *string) {
	target := EnumerationTarget{
		Contract:       contract,
		AtBlock:        atBlock,
		Classification: classification,
	}

	if classification.IsPunks() {
		name := punksCollectionName
		return target, &name
	}

	name := s.chain.Name(ctx, contract, atBlock)
	target.Enumerable = s.chain.SupportsEnumerable(ctx, contract, atBlock)
	target.TotalSupply = s.chain.TotalSupply(ctx, contract, atBlock)
	if target.Enumerable {
		if first, err := s.chain.TokenByIndex(ctx, contract, big.NewInt(0), atBlock); err == nil {
			target.StartHint = first
		}
	}

	return target, name
}

// enumerate runs the strategy chain until one answers
func (s *snapshotter) enumerate(ctx context.Context, target EnumerationTarget) ([]*big.Int, string, error) {
	for _, strategy := range s.strategies {
		ids, ok, err := strategy.TryEnumerate(ctx, target)
		if err != nil {
			return nil, strategy.Name(), err
		}
		if ok {
			logger.InfoCtx(ctx, "Enumerated collection",
				zap.String("contract", target.Contract),
				zap.String("strategy", strategy.Name()),
				zap.Int("count", len(ids)))
			return ids, strategy.Name(), nil
		}
	}
	return nil, "", errors.New("no enumeration strategy applies")
}

// fail persists the failure on the collection and returns the original error
func (s *snapshotter) fail(ctx context.Context, job store.SnapshotJob, cause error) error {
	logger.ErrorCtx(ctx, fmt.Errorf("snapshot failed: %w", cause),
		zap.String("partition", job.Partition.String()),
		zap.String("lock_owner", job.LockOwner))

	// the collection row must be released even when the caller's context is already done
	writeCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
	}

	applied, err := s.store.FailSnapshotAndUnlockWithMessage(writeCtx,
		store.SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner}, cause.Error())
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record snapshot failure: %w", err),
			zap.String("partition", job.Partition.String()))
	} else if applied {
		s.publish(writeCtx, messaging.Event{
			ID:        fmt.Sprintf("%s:%s:error_snapshotting", job.Partition, job.LockOwner),
			Type:      messaging.EventCollectionError,
			Partition: job.Partition.String(),
			AtBlock:   job.TargetBlock,
			Message:   cause.Error(),
		})
	}

	return cause
}

// publish sends an event, logging instead of failing
func (s *snapshotter) publish(ctx context.Context, event messaging.Event) {
	event.OccurredAt = s.clock.Now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// buildBaselineRows turns resolved owners into current and history rows; ids without an owner are dropped
func buildBaselineRows(
	partition domain.Partition,
	ids []*big.Int,
	owners []string,
	atBlock uint64,
	blockTime time.Time,
) ([]schema.CollectionOwner, []schema.CollectionOwnerHistory) {
	current := make([]schema.CollectionOwner, 0, len(ids))
	history := make([]schema.CollectionOwnerHistory, 0, len(ids))

	for i, id := range ids {
		if i >= len(owners) || owners[i] == "" {
			continue
		}

		epochStart := atBlock
		tokenID := id.String()

		current = append(current, schema.CollectionOwner{
			Partition:               partition.String(),
			TokenID:                 tokenID,
			Owner:                   owners[i],
			SinceBlock:              atBlock,
			SinceTime:               blockTime,
			SaleEpochStartBlock:     &epochStart,
			FreeTransfersSinceEpoch: 0,
		})
		history = append(history, schema.CollectionOwnerHistory{
			Partition:           partition.String(),
			TokenID:             tokenID,
			BlockNumber:         atBlock,
			LogIndex:            0,
			Owner:               owners[i],
			SinceTime:           blockTime,
			AcquiredAsSale:      1,
			SaleEpochStartBlock: &epochStart,
		})
	}

	return current, history
}
