package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// StoreTestSuite provides the interface for running store tests against different implementations
type StoreTestSuite struct {
	Store Store
	// InitDB should be called before each test to initialize the database
	InitDB func(t *testing.T) Store
	// CleanupDB should be called after each test to clean up the database
	CleanupDB func(t *testing.T)
}

// =============================================================================
// Test Data Builders
// =============================================================================

const (
	testContractA = "0x1111111111111111111111111111111111111111"
	testContractB = "0x2222222222222222222222222222222222222222"
	testOwnerA    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testOwnerB    = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// buildTestOwner creates a current owner row
func buildTestOwner(partition domain.Partition, tokenID, owner string, block uint64) schema.CollectionOwner {
	return schema.CollectionOwner{
		Partition:  partition.String(),
		TokenID:    tokenID,
		Owner:      owner,
		SinceBlock: block,
		SinceTime:  time.Unix(1_700_000_000, 0).UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

// buildTestGrant creates a grant row
func buildTestGrant(id string, kind domain.GrantKind, grantor string, status domain.GrantStatus, rate float64, from, to *int64) schema.Grant {
	partition := domain.NewPartition(domain.ChainEthereumMainnet, testContractA)
	return schema.Grant{
		ID:              id,
		Kind:            kind,
		GrantorID:       grantor,
		TargetChain:     int64(domain.ChainEthereumMainnet),
		TargetContract:  testContractA,
		TargetPartition: partition.String(),
		TokenMode:       domain.GrantTokenModeAll,
		ValidFrom:       from,
		ValidTo:         to,
		Rate:            rate,
		Status:          status,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

// lockCollection registers a collection and locks it for a snapshot at the given block
func lockCollection(t *testing.T, store Store, contract string, target uint64, owner string) *SnapshotJob {
	ctx := context.Background()

	_, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, contract)
	require.NoError(t, err)

	job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
		LockOwner:   owner,
		TargetBlock: target,
		Now:         time.Now().UTC(),
		StaleBefore: time.Now().UTC().Add(-30 * time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, job)
	return job
}

// =============================================================================
// Test: Collections
// =============================================================================

func testUpsertOrSelectCollection(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("registers a new collection as waiting", func(t *testing.T) {
		collection, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, "0xABCDEF0000000000000000000000000000000001")
		require.NoError(t, err)
		require.NotNil(t, collection)

		assert.Equal(t, "1:0xabcdef0000000000000000000000000000000001", collection.Partition)
		assert.Equal(t, domain.IndexingStatusWaitingForSnapshotting, collection.Status)
		assert.Equal(t, domain.CollectionStandardUnknown, collection.Standard)
		assert.Equal(t, uint64(0), collection.LastIndexedBlock)
	})

	t.Run("second call returns the existing row untouched", func(t *testing.T) {
		first, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractB)
		require.NoError(t, err)

		require.NoError(t, store.(*pgStore).db.
			Exec("UPDATE indexed_collections SET status = ?, last_indexed_block = 42 WHERE partition = ?",
				domain.IndexingStatusLiveTailing, first.Partition).Error)

		second, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractB)
		require.NoError(t, err)
		assert.Equal(t, first.Partition, second.Partition)
		assert.Equal(t, domain.IndexingStatusLiveTailing, second.Status)
		assert.Equal(t, uint64(42), second.LastIndexedBlock)
	})

	t.Run("invalid contract is rejected", func(t *testing.T) {
		_, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, "not-an-address")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidPartition)
	})

	t.Run("unknown partition returns nil", func(t *testing.T) {
		collection, err := store.FindCollectionInfo(ctx, domain.NewPartition(domain.ChainEthereumMainnet, "0x9999999999999999999999999999999999999999"))
		require.NoError(t, err)
		assert.Nil(t, collection)
	})
}

func testLockNextWaitingSnapshotJob(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("empty queue returns nil", func(t *testing.T) {
		job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
			LockOwner:   "snap-empty",
			TargetBlock: 100,
			Now:         now,
			StaleBefore: now.Add(-time.Hour),
		})
		require.NoError(t, err)
		assert.Nil(t, job)
	})

	t.Run("lock owner is required", func(t *testing.T) {
		_, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{TargetBlock: 100, Now: now})
		require.Error(t, err)
	})

	t.Run("locks a waiting job once", func(t *testing.T) {
		job := lockCollection(t, store, testContractA, 100, "snap-1")
		assert.Equal(t, domain.NewPartition(domain.ChainEthereumMainnet, testContractA), job.Partition)
		assert.Equal(t, "snap-1", job.LockOwner)
		assert.Equal(t, uint64(100), job.TargetBlock)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, domain.IndexingStatusSnapshotting, collection.Status)
		require.NotNil(t, collection.SnapshotLockOwner)
		assert.Equal(t, "snap-1", *collection.SnapshotLockOwner)

		// A fresh lock is not stale, so a second worker finds nothing
		again, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
			LockOwner:   "snap-2",
			TargetBlock: 100,
			Now:         now,
			StaleBefore: now.Add(-30 * time.Minute),
		})
		require.NoError(t, err)
		assert.Nil(t, again)
	})

	t.Run("stale lock is taken over", func(t *testing.T) {
		partition := domain.NewPartition(domain.ChainEthereumMainnet, testContractA)
		require.NoError(t, store.(*pgStore).db.
			Exec("UPDATE indexed_collections SET snapshot_lock_at = ? WHERE partition = ?", now.Add(-2*time.Hour), partition.String()).Error)

		job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
			LockOwner:   "snap-3",
			TargetBlock: 120,
			Now:         now,
			StaleBefore: now.Add(-30 * time.Minute),
		})
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, partition, job.Partition)
		assert.Equal(t, "snap-3", job.LockOwner)
		assert.Equal(t, uint64(120), job.TargetBlock)
	})

	t.Run("collections indexed past the target are skipped", func(t *testing.T) {
		_, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractB)
		require.NoError(t, err)
		partition := domain.NewPartition(domain.ChainEthereumMainnet, testContractB)
		require.NoError(t, store.(*pgStore).db.
			Exec("UPDATE indexed_collections SET last_indexed_block = 500 WHERE partition = ?", partition.String()).Error)

		job, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
			LockOwner:   "snap-4",
			TargetBlock: 400,
			Now:         now,
			StaleBefore: now.Add(-30 * time.Minute),
		})
		require.NoError(t, err)
		assert.Nil(t, job)
	})
}

func testCommitSnapshotSuccess(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	job := lockCollection(t, store, testContractA, 1000, "snap-commit")
	name := "Test Collection"

	t.Run("wrong lock owner does not commit", func(t *testing.T) {
		ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
			SnapshotFence: SnapshotFence{Partition: job.Partition, LockOwner: "snap-other"},
			AtBlock:       1000,
			Standard:      domain.CollectionStandardERC721,
			TotalSupply:   10,
			Now:           now,
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mismatched target block does not commit", func(t *testing.T) {
		ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
			SnapshotFence: SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner},
			AtBlock:       999,
			Standard:      domain.CollectionStandardERC721,
			TotalSupply:   10,
			Now:           now,
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lock holder commits and flips to live tailing", func(t *testing.T) {
		ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
			SnapshotFence:  SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner},
			AtBlock:        1000,
			Standard:       domain.CollectionStandardERC721,
			CollectionName: &name,
			TotalSupply:    10,
			LagBlocks:      12,
			LagSeconds:     144,
			SnapshotStats:  datatypes.JSON(`{"strategy":"contiguous"}`),
			Now:            now,
		})
		require.NoError(t, err)
		assert.True(t, ok)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, domain.IndexingStatusLiveTailing, collection.Status)
		assert.Equal(t, domain.CollectionStandardERC721, collection.Standard)
		assert.Equal(t, uint64(1000), collection.LastIndexedBlock)
		assert.Equal(t, uint64(1000), collection.SafeHeadBlock)
		assert.Equal(t, uint64(1000), collection.IndexedSinceBlock)
		assert.Nil(t, collection.SnapshotLockOwner)
		assert.Nil(t, collection.SnapshotLockAt)
		assert.Nil(t, collection.ErrorMessage)
		require.NotNil(t, collection.CollectionName)
		assert.Equal(t, name, *collection.CollectionName)
		require.NotNil(t, collection.TotalSupply)
		assert.Equal(t, int64(10), *collection.TotalSupply)
	})

	t.Run("second commit with the same owner is a no-op", func(t *testing.T) {
		ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
			SnapshotFence: SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner},
			AtBlock:       1000,
			Standard:      domain.CollectionStandardERC721,
			Now:           now,
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func testCommitAfterLockTakeover(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	first := lockCollection(t, store, testContractA, 1000, "snap-slow")

	require.NoError(t, store.(*pgStore).db.
		Exec("UPDATE indexed_collections SET snapshot_lock_at = ? WHERE partition = ?", now.Add(-time.Hour), first.Partition.String()).Error)

	second, err := store.LockNextWaitingSnapshotJob(ctx, LockSnapshotJobInput{
		LockOwner:   "snap-fast",
		TargetBlock: 1010,
		Now:         now,
		StaleBefore: now.Add(-30 * time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, second)

	// The slow worker's commit is rejected
	ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
		SnapshotFence: SnapshotFence{Partition: first.Partition, LockOwner: first.LockOwner},
		AtBlock:       1000,
		Standard:      domain.CollectionStandardERC721,
		Now:           now,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.FailSnapshotAndUnlockWithMessage(ctx, SnapshotFence{Partition: first.Partition, LockOwner: first.LockOwner}, "late failure")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
		SnapshotFence: SnapshotFence{Partition: second.Partition, LockOwner: second.LockOwner},
		AtBlock:       1010,
		Standard:      domain.CollectionStandardERC721,
		Now:           now,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	collection, err := store.FindCollectionInfo(ctx, first.Partition)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexingStatusLiveTailing, collection.Status)
	assert.Equal(t, uint64(1010), collection.LastIndexedBlock)
	assert.Nil(t, collection.ErrorMessage)
}

func testFailAndUnindexable(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("fail records the message and clears the lock", func(t *testing.T) {
		job := lockCollection(t, store, testContractA, 100, "snap-fail")

		ok, err := store.FailSnapshotAndUnlockWithMessage(ctx, SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner}, "rpc down")
		require.NoError(t, err)
		assert.True(t, ok)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, domain.IndexingStatusErrorSnapshotting, collection.Status)
		require.NotNil(t, collection.ErrorMessage)
		assert.Equal(t, "rpc down", *collection.ErrorMessage)
		assert.Nil(t, collection.SnapshotLockOwner)
	})

	t.Run("unindexable records the standard", func(t *testing.T) {
		job := lockCollection(t, store, testContractB, 100, "snap-1155")

		ok, err := store.MarkUnindexableWithMessage(ctx, SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner},
			domain.CollectionStandardERC1155, "ERC-1155 collections are not supported")
		require.NoError(t, err)
		assert.True(t, ok)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, domain.IndexingStatusUnindexable, collection.Status)
		assert.Equal(t, domain.CollectionStandardERC1155, collection.Standard)
	})

	t.Run("requeue moves failed collections back to waiting", func(t *testing.T) {
		for _, contract := range []string{testContractA, testContractB} {
			partition := domain.NewPartition(domain.ChainEthereumMainnet, contract)
			ok, err := store.RequeueCollection(ctx, partition)
			require.NoError(t, err)
			assert.True(t, ok)

			collection, err := store.FindCollectionInfo(ctx, partition)
			require.NoError(t, err)
			assert.Equal(t, domain.IndexingStatusWaitingForSnapshotting, collection.Status)
			assert.Nil(t, collection.ErrorMessage)
		}
	})

	t.Run("requeue ignores healthy collections", func(t *testing.T) {
		ok, err := store.RequeueCollection(ctx, domain.NewPartition(domain.ChainEthereumMainnet, testContractA))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func testAdvanceHeads(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	job := lockCollection(t, store, testContractA, 1000, "snap-heads")
	ok, err := store.CommitSnapshotSuccess(ctx, CommitSnapshotInput{
		SnapshotFence: SnapshotFence{Partition: job.Partition, LockOwner: job.LockOwner},
		AtBlock:       1000,
		Standard:      domain.CollectionStandardERC721,
		Now:           now,
	})
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("heads move forward", func(t *testing.T) {
		eventTime := now.Add(-time.Minute)
		ok, err := store.AdvanceHeads(ctx, AdvanceHeadsInput{
			Partition:        job.Partition,
			LastIndexedBlock: 1100,
			SafeHeadBlock:    1100,
			LagBlocks:        12,
			LagSeconds:       150,
			LastEventTime:    &eventTime,
			Now:              now,
		})
		require.NoError(t, err)
		assert.True(t, ok)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(1100), collection.LastIndexedBlock)
		assert.Equal(t, uint64(1100), collection.SafeHeadBlock)
		assert.Equal(t, uint64(12), collection.LagBlocks)
		require.NotNil(t, collection.LastEventTime)
	})

	t.Run("heads never move backwards", func(t *testing.T) {
		ok, err := store.AdvanceHeads(ctx, AdvanceHeadsInput{
			Partition:        job.Partition,
			LastIndexedBlock: 1050,
			SafeHeadBlock:    1050,
			Now:              now,
		})
		require.NoError(t, err)
		assert.True(t, ok)

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(1100), collection.LastIndexedBlock)
	})

	t.Run("set indexed since keeps the first value", func(t *testing.T) {
		require.NoError(t, store.SetIndexedSinceIfEmpty(ctx, job.Partition, 5))

		collection, err := store.FindCollectionInfo(ctx, job.Partition)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), collection.IndexedSinceBlock)
	})

	t.Run("live tailing collections are listed", func(t *testing.T) {
		collections, err := store.FindLiveTailingCollections(ctx, 10)
		require.NoError(t, err)
		require.Len(t, collections, 1)
		assert.Equal(t, job.Partition.String(), collections[0].Partition)
	})

	t.Run("non live tailing collections are not advanced", func(t *testing.T) {
		_, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractB)
		require.NoError(t, err)

		ok, err := store.AdvanceHeads(ctx, AdvanceHeadsInput{
			Partition:        domain.NewPartition(domain.ChainEthereumMainnet, testContractB),
			LastIndexedBlock: 2000,
			SafeHeadBlock:    2000,
			Now:              now,
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// =============================================================================
// Test: Ownership
// =============================================================================

func testUpsertOwners(t *testing.T, store Store) {
	ctx := context.Background()

	collection, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractA)
	require.NoError(t, err)
	partition := domain.Partition(collection.Partition)

	t.Run("upsert is idempotent and last writer wins", func(t *testing.T) {
		rows := []schema.CollectionOwner{
			buildTestOwner(partition, "1", testOwnerA, 100),
			buildTestOwner(partition, "2", testOwnerA, 100),
			buildTestOwner(partition, "3", testOwnerB, 100),
		}
		require.NoError(t, store.UpsertOwners(ctx, rows, 2))
		require.NoError(t, store.UpsertOwners(ctx, rows, 2))

		ids, err := store.GetAllTokenNumbersForCollection(ctx, partition)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1", "2", "3"}, ids)

		saleBlock := uint64(150)
		saleTx := "0xsale"
		updated := buildTestOwner(partition, "2", testOwnerB, 150)
		updated.SaleEpochStartBlock = &saleBlock
		updated.SaleEpochTx = &saleTx
		require.NoError(t, store.UpsertOwners(ctx, []schema.CollectionOwner{updated}, 10))

		owner, err := store.GetOwner(ctx, partition, "2")
		require.NoError(t, err)
		require.NotNil(t, owner)
		assert.Equal(t, testOwnerB, owner.Owner)
		assert.Equal(t, uint64(150), owner.SinceBlock)
		require.NotNil(t, owner.SaleEpochTx)
		assert.Equal(t, saleTx, *owner.SaleEpochTx)
	})

	t.Run("owners for tokens skips unknown ids", func(t *testing.T) {
		owners, err := store.GetOwnersForTokens(ctx, partition, []string{"1", "3", "404"})
		require.NoError(t, err)
		assert.Len(t, owners, 2)
		assert.Equal(t, testOwnerA, owners["1"].Owner)
		assert.Equal(t, testOwnerB, owners["3"].Owner)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		require.NoError(t, store.UpsertOwners(ctx, nil, 10))
		owners, err := store.GetOwnersForTokens(ctx, partition, nil)
		require.NoError(t, err)
		assert.Empty(t, owners)
	})

	t.Run("unknown token returns nil", func(t *testing.T) {
		owner, err := store.GetOwner(ctx, partition, "404")
		require.NoError(t, err)
		assert.Nil(t, owner)
	})
}

func testUpsertHistoryAndTransfers(t *testing.T, store Store) {
	ctx := context.Background()

	collection, err := store.UpsertOrSelectCollection(ctx, domain.ChainEthereumMainnet, testContractA)
	require.NoError(t, err)
	partition := collection.Partition
	blockTime := time.Unix(1_700_000_000, 0).UTC()
	txHash := "0xtx1"
	sale := true

	history := []schema.CollectionOwnerHistory{
		{Partition: partition, TokenID: "1", BlockNumber: 200, LogIndex: 3, Owner: testOwnerB, SinceTime: blockTime, AcquiredAsSale: 1, TxHash: &txHash},
		{Partition: partition, TokenID: "1", BlockNumber: 201, LogIndex: 0, Owner: testOwnerA, SinceTime: blockTime, TxHash: &txHash},
	}
	transfers := []schema.CollectionTransfer{
		{Partition: partition, BlockNumber: 200, LogIndex: 3, TxHash: txHash, TokenID: "1", FromAddress: testOwnerA, ToAddress: testOwnerB, Amount: 1, Time: blockTime, IsMonetarySale: &sale, SaleEpochStart: true},
		{Partition: partition, BlockNumber: 201, LogIndex: 0, TxHash: txHash, TokenID: "1", FromAddress: testOwnerB, ToAddress: testOwnerA, Amount: 1, Time: blockTime},
	}

	require.NoError(t, store.UpsertOwnersHistory(ctx, history, 100))
	require.NoError(t, store.UpsertTransfers(ctx, transfers, 100))

	// Replays are no-ops
	require.NoError(t, store.UpsertOwnersHistory(ctx, history, 1))
	require.NoError(t, store.UpsertTransfers(ctx, transfers, 1))

	db := store.(*pgStore).db
	var historyCount, transferCount int64
	require.NoError(t, db.Model(&schema.CollectionOwnerHistory{}).Where("partition = ?", partition).Count(&historyCount).Error)
	require.NoError(t, db.Model(&schema.CollectionTransfer{}).Where("partition = ?", partition).Count(&transferCount).Error)
	assert.Equal(t, int64(2), historyCount)
	assert.Equal(t, int64(2), transferCount)
}

// =============================================================================
// Test: Grants
// =============================================================================

func testInsertAndGetGrant(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("include grant stores its tokens", func(t *testing.T) {
		grant := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZA1", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusPending, 10, nil, nil)
		grant.TokenMode = domain.GrantTokenModeInclude
		require.NoError(t, store.InsertGrant(ctx, &grant, []string{"3", "1", "2"}))

		got, err := store.GetGrant(ctx, domain.GrantKindXTDH, grant.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.GrantStatusPending, got.Status)
		assert.ElementsMatch(t, []string{"1", "2", "3"}, got.Tokens)
	})

	t.Run("grant of another kind is not found", func(t *testing.T) {
		got, err := store.GetGrant(ctx, domain.GrantKindTDH, "01HZZZZZZZZZZZZZZZZZZZZZA1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("nil grant is rejected", func(t *testing.T) {
		require.Error(t, store.InsertGrant(ctx, nil, nil))
	})
}

func testLockOldestPendingGrant(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	older := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZB1", domain.GrantKindTDH, "grantor-1", domain.GrantStatusPending, 1, nil, nil)
	older.UpdatedAt = base
	newer := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZB2", domain.GrantKindTDH, "grantor-1", domain.GrantStatusPending, 1, nil, nil)
	newer.UpdatedAt = base.Add(time.Minute)
	other := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZB3", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusPending, 1, nil, nil)
	other.UpdatedAt = base.Add(-time.Minute)

	for _, g := range []schema.Grant{older, newer, other} {
		g := g
		require.NoError(t, store.InsertGrant(ctx, &g, nil))
	}

	err := store.WithTransaction(ctx, func(tx Store) error {
		grant, err := tx.LockOldestPendingGrant(ctx, domain.GrantKindTDH, base.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, older.ID, grant.ID)
		return nil
	})
	require.NoError(t, err)

	// The touched grant moved to the back of the queue
	err = store.WithTransaction(ctx, func(tx Store) error {
		grant, err := tx.LockOldestPendingGrant(ctx, domain.GrantKindTDH, base.Add(2*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.Equal(t, newer.ID, grant.ID)
		return nil
	})
	require.NoError(t, err)

	t.Run("status update removes the grant from the queue", func(t *testing.T) {
		validFrom := int64(1_700_000_000_000)
		for _, id := range []string{older.ID, newer.ID} {
			require.NoError(t, store.UpdateGrantStatus(ctx, UpdateGrantStatusInput{
				ID:        id,
				Status:    domain.GrantStatusGranted,
				ValidFrom: &validFrom,
				Now:       time.Now().UTC(),
			}))
		}

		grant, err := store.LockOldestPendingGrant(ctx, domain.GrantKindTDH, time.Now().UTC())
		require.NoError(t, err)
		assert.Nil(t, grant)

		got, err := store.GetGrant(ctx, domain.GrantKindTDH, older.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ValidFrom)
		assert.Equal(t, validFrom, *got.ValidFrom)
	})

	t.Run("unknown grant update fails", func(t *testing.T) {
		err := store.UpdateGrantStatus(ctx, UpdateGrantStatusInput{ID: "missing", Status: domain.GrantStatusFailed, Now: time.Now()})
		assert.ErrorIs(t, err, domain.ErrGrantNotFound)
	})
}

func testGetGrantorSpentRate(t *testing.T, store Store) {
	ctx := context.Background()

	grants := []schema.Grant{
		buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZC1", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusGranted, 10, int64Ptr(1000), int64Ptr(2000)),
		buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZC2", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusGranted, 20, int64Ptr(1500), nil),
		buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZC3", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusDisabled, 40, int64Ptr(1000), nil),
		buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZC4", domain.GrantKindXTDH, "grantor-2", domain.GrantStatusGranted, 80, int64Ptr(1000), nil),
		buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZC5", domain.GrantKindTDH, "grantor-1", domain.GrantStatusGranted, 160, int64Ptr(1000), nil),
	}
	for _, g := range grants {
		g := g
		require.NoError(t, store.InsertGrant(ctx, &g, nil))
	}

	tests := []struct {
		name     string
		query    SpentRateQuery
		expected float64
	}{
		{
			name:     "overlapping both granted grants",
			query:    SpentRateQuery{Kind: domain.GrantKindXTDH, GrantorID: "grantor-1", ValidFrom: 1600, ValidTo: 1700, ExcludeID: "x"},
			expected: 30,
		},
		{
			name:     "window after the first grant ended",
			query:    SpentRateQuery{Kind: domain.GrantKindXTDH, GrantorID: "grantor-1", ValidFrom: 2000, ValidTo: domain.MAX_VALID_TO, ExcludeID: "x"},
			expected: 20,
		},
		{
			name:     "window ending where the first grant starts",
			query:    SpentRateQuery{Kind: domain.GrantKindXTDH, GrantorID: "grantor-1", ValidFrom: 0, ValidTo: 1000, ExcludeID: "x"},
			expected: 0,
		},
		{
			name:     "candidate itself is excluded",
			query:    SpentRateQuery{Kind: domain.GrantKindXTDH, GrantorID: "grantor-1", ValidFrom: 1600, ValidTo: 1700, ExcludeID: "01HZZZZZZZZZZZZZZZZZZZZZC2"},
			expected: 10,
		},
		{
			name:     "unknown grantor",
			query:    SpentRateQuery{Kind: domain.GrantKindXTDH, GrantorID: "nobody", ValidFrom: 0, ValidTo: domain.MAX_VALID_TO, ExcludeID: "x"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spent, err := store.GetGrantorSpentRate(ctx, tt.query)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, spent, 1e-9)
		})
	}

	t.Run("list granted grants per kind", func(t *testing.T) {
		listed, err := store.ListGrantedGrants(ctx, domain.GrantKindXTDH)
		require.NoError(t, err)
		assert.Len(t, listed, 3)
		for _, g := range listed {
			assert.Equal(t, domain.GrantStatusGranted, g.Status)
		}
	})
}

func testDisableGrantsAndInsertReplacements(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	original := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZD1", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusGranted, 50, int64Ptr(1000), nil)
	original.TokenMode = domain.GrantTokenModeInclude
	require.NoError(t, store.InsertGrant(ctx, &original, []string{"7", "8"}))

	replacement := original
	replacement.ID = "01HZZZZZZZZZZZZZZZZZZZZZD2"
	replacement.Rate = 25
	replacement.ReplacedGrantID = &original.ID
	replacement.CreatedAt = time.Time{}
	replacement.UpdatedAt = time.Time{}

	t.Run("replaces and moves tokens", func(t *testing.T) {
		err := store.DisableGrantsAndInsertReplacements(ctx, ReplaceGrantsInput{
			Replacements:    []schema.Grant{replacement},
			DisabledMessage: "rescaled",
			Now:             now,
		})
		require.NoError(t, err)

		disabled, err := store.GetGrant(ctx, domain.GrantKindXTDH, original.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.GrantStatusDisabled, disabled.Status)
		require.NotNil(t, disabled.ErrorDetails)
		assert.Equal(t, "rescaled", *disabled.ErrorDetails)
		assert.Empty(t, disabled.Tokens)

		created, err := store.GetGrant(ctx, domain.GrantKindXTDH, replacement.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.GrantStatusGranted, created.Status)
		assert.InDelta(t, 25.0, created.Rate, 1e-9)
		assert.ElementsMatch(t, []string{"7", "8"}, created.Tokens)
	})

	t.Run("replacing an already disabled grant rolls back", func(t *testing.T) {
		again := replacement
		again.ID = "01HZZZZZZZZZZZZZZZZZZZZZD3"

		err := store.DisableGrantsAndInsertReplacements(ctx, ReplaceGrantsInput{
			Replacements:    []schema.Grant{again},
			DisabledMessage: "rescaled",
			Now:             now,
		})
		require.Error(t, err)

		got, err := store.GetGrant(ctx, domain.GrantKindXTDH, again.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("replacement without origin is rejected", func(t *testing.T) {
		orphan := buildTestGrant("01HZZZZZZZZZZZZZZZZZZZZZD4", domain.GrantKindXTDH, "grantor-1", domain.GrantStatusGranted, 1, nil, nil)
		err := store.DisableGrantsAndInsertReplacements(ctx, ReplaceGrantsInput{Replacements: []schema.Grant{orphan}, Now: now})
		require.Error(t, err)
	})
}

func testSearchGrants(t *testing.T, store Store) {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		grantor := "grantor-1"
		if i%2 == 1 {
			grantor = "grantor-2"
		}
		g := buildTestGrant(fmt.Sprintf("01HZZZZZZZZZZZZZZZZZZZZZE%d", i), domain.GrantKindXTDH, grantor, domain.GrantStatusPending, float64(i+1), nil, nil)
		require.NoError(t, store.InsertGrant(ctx, &g, nil))
	}

	t.Run("filters by grantor", func(t *testing.T) {
		grantor := "grantor-2"
		grants, total, err := store.SearchGrants(ctx, GrantFilter{Kind: domain.GrantKindXTDH, GrantorID: &grantor})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, grants, 2)
	})

	t.Run("sorts by rate and paginates", func(t *testing.T) {
		grants, total, err := store.SearchGrants(ctx, GrantFilter{
			Kind:          domain.GrantKindXTDH,
			Sort:          GrantSortRate,
			SortDirection: "asc",
			Limit:         2,
			Offset:        1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, grants, 2)
		assert.InDelta(t, 2.0, grants[0].Rate, 1e-9)
		assert.InDelta(t, 3.0, grants[1].Rate, 1e-9)
	})

	t.Run("filters by contract and status", func(t *testing.T) {
		contract := "0x1111111111111111111111111111111111111111"
		status := domain.GrantStatusGranted
		_, total, err := store.SearchGrants(ctx, GrantFilter{Kind: domain.GrantKindXTDH, Contract: &contract, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

// =============================================================================
// Test: Capacities
// =============================================================================

func testProducedRate(t *testing.T, store Store) {
	ctx := context.Background()

	_, ok, err := store.GetProducedRate(ctx, domain.GrantKindXTDH, "grantor-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.UpsertProducedRate(ctx, domain.GrantKindXTDH, "grantor-1", 100))
	require.NoError(t, store.UpsertProducedRate(ctx, domain.GrantKindXTDH, "grantor-1", 120))

	rate, ok, err := store.GetProducedRate(ctx, domain.GrantKindXTDH, "grantor-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 120.0, rate, 1e-9)

	_, ok, err = store.GetProducedRate(ctx, domain.GrantKindTDH, "grantor-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// Test: Batch size
// =============================================================================

func testCalculateSafeBatchSize(t *testing.T, _ Store) {
	assert.Equal(t, 100, calculateSafeBatchSize(100, 9))
	assert.Equal(t, (65535-1000)/9, calculateSafeBatchSize(0, 9))
	assert.Equal(t, (65535-1000)/12, calculateSafeBatchSize(1_000_000, 12))
}

// RunStoreTests runs all store tests against a store implementation.
// newStore must return a store whose writes are discarded when the test ends.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"UpsertOrSelectCollection", testUpsertOrSelectCollection},
		{"LockNextWaitingSnapshotJob", testLockNextWaitingSnapshotJob},
		{"CommitSnapshotSuccess", testCommitSnapshotSuccess},
		{"CommitAfterLockTakeover", testCommitAfterLockTakeover},
		{"FailAndUnindexable", testFailAndUnindexable},
		{"AdvanceHeads", testAdvanceHeads},
		{"UpsertOwners", testUpsertOwners},
		{"UpsertHistoryAndTransfers", testUpsertHistoryAndTransfers},
		{"InsertAndGetGrant", testInsertAndGetGrant},
		{"LockOldestPendingGrant", testLockOldestPendingGrant},
		{"GetGrantorSpentRate", testGetGrantorSpentRate},
		{"DisableGrantsAndInsertReplacements", testDisableGrantsAndInsertReplacements},
		{"SearchGrants", testSearchGrants},
		{"ProducedRate", testProducedRate},
		{"CalculateSafeBatchSize", testCalculateSafeBatchSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}
