package indexing_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/indexing"
	"github.com/feral-file/ff-collection-indexer/internal/mocks"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

type testLiveTailMocks struct {
	ctrl   *gomock.Controller
	store  *mocks.MockStore
	chain  *mocks.MockEthereumClient
	blocks *mocks.MockBlockProvider
	clock  *mocks.MockClock
	tailer indexing.LiveTailer
}

func setupLiveTailer(t *testing.T) *testLiveTailMocks {
	ctrl := gomock.NewController(t)
	tm := &testLiveTailMocks{
		ctrl:   ctrl,
		store:  mocks.NewMockStore(ctrl),
		chain:  mocks.NewMockEthereumClient(ctrl),
		blocks: mocks.NewMockBlockProvider(ctrl),
		clock:  mocks.NewMockClock(ctrl),
	}
	tm.clock.EXPECT().Now().Return(testNow).AnyTimes()

	tm.tailer = indexing.NewLiveTailer(tm.store, tm.chain, tm.blocks, tm.clock, indexing.LiveTailConfig{
		ReorgDepth:      12,
		Range:           2000,
		Batch:           100,
		PoolSize:        2,
		UpsertChunkSize: 1000,
	})
	return tm
}

func addressTopic(address string) common.Hash {
	return common.BytesToHash(common.HexToAddress(address).Bytes())
}

func erc721TransferLog(contract, from, to string, tokenID int64, blockNumber uint64, index uint, tx common.Hash) types.Log {
	return types.Log{
		Address: common.HexToAddress(contract),
		Topics: []common.Hash{
			ethereum.TransferEventSignature,
			addressTopic(from),
			addressTopic(to),
			common.BigToHash(big.NewInt(tokenID)),
		},
		BlockNumber: blockNumber,
		Index:       index,
		TxHash:      tx,
	}
}

func txHex(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

const (
	ownerA = "0x00000000000000000000000000000000000000a1"
	ownerB = "0x00000000000000000000000000000000000000a2"
)

func TestLiveTailer_RunCycle(t *testing.T) {
	tm := setupLiveTailer(t)
	ctx := context.Background()

	upToDate := schema.IndexedCollection{
		Partition:        "1:0x0000000000000000000000000000000000000def",
		Contract:         "0x0000000000000000000000000000000000000def",
		Status:           domain.IndexingStatusLiveTailing,
		LastIndexedBlock: 988,
		SafeHeadBlock:    988,
	}
	behind := schema.IndexedCollection{
		Partition:        testPartition.String(),
		Contract:         testContract,
		Status:           domain.IndexingStatusLiveTailing,
		LastIndexedBlock: 900,
		SafeHeadBlock:    900,
	}

	safeTime := testNow.Add(-3 * time.Minute)
	mintTx := common.HexToHash("0xaa")
	saleTx := common.HexToHash("0xbb")

	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return([]schema.IndexedCollection{upToDate, behind}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(988)).Return(safeTime, nil)

	tm.store.EXPECT().RefreshLagMetrics(gomock.Any(), store.LagMetricsInput{
		Partition:  domain.Partition(upToDate.Partition),
		LagBlocks:  0,
		LagSeconds: 180,
		Now:        testNow,
	}).Return(nil)

	erc20Style := types.Log{
		Address:     common.HexToAddress(testContract),
		Topics:      []common.Hash{ethereum.TransferEventSignature, addressTopic(ownerA), addressTopic(ownerB)},
		Data:        common.BigToHash(big.NewInt(1)).Bytes(),
		BlockNumber: 911,
		TxHash:      saleTx,
	}
	tm.chain.EXPECT().FilterTransferLogs(gomock.Any(), testContract, uint64(901), uint64(988)).Return([]types.Log{
		erc721TransferLog(testContract, ownerA, ownerB, 5, 910, 3, saleTx),
		erc20Style,
		erc721TransferLog(testContract, domain.ETHEREUM_ZERO_ADDRESS, ownerA, 5, 905, 0, mintTx),
	}, nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(905)).Return(testNow.Add(-10*time.Minute), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(910)).Return(testNow.Add(-9*time.Minute), nil)

	marketplace := common.HexToAddress("0x00000000006c3852cbef3e08e8df289169ede581")
	tm.chain.EXPECT().TransactionByHash(gomock.Any(), txHex(saleTx)).
		Return(types.NewTx(&types.LegacyTx{To: &marketplace, Value: big.NewInt(0)}), nil)
	tm.chain.EXPECT().TransactionReceipt(gomock.Any(), txHex(saleTx)).Return(&types.Receipt{}, nil)

	tm.store.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx store.Store) error) error {
			return fn(tm.store)
		})
	tm.store.EXPECT().GetOwnersForTokens(gomock.Any(), testPartition, []string{"5"}).
		Return(map[string]schema.CollectionOwner{}, nil)
	tm.store.EXPECT().UpsertTransfers(gomock.Any(), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, rows []schema.CollectionTransfer, _ int) error {
			require.Len(t, rows, 2)
			assert.Equal(t, uint64(905), rows[0].BlockNumber)
			require.NotNil(t, rows[0].IsMonetarySale)
			assert.False(t, *rows[0].IsMonetarySale)
			assert.Equal(t, uint64(910), rows[1].BlockNumber)
			require.NotNil(t, rows[1].IsMonetarySale)
			assert.True(t, *rows[1].IsMonetarySale)
			assert.True(t, rows[1].SaleEpochStart)
			return nil
		})
	tm.store.EXPECT().UpsertOwnersHistory(gomock.Any(), gomock.Len(2), 1000).Return(nil)
	tm.store.EXPECT().UpsertOwners(gomock.Any(), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, rows []schema.CollectionOwner, _ int) error {
			require.Len(t, rows, 1)
			assert.Equal(t, ownerB, rows[0].Owner)
			assert.Equal(t, uint64(910), rows[0].SinceBlock)
			assert.Equal(t, 0, rows[0].FreeTransfersSinceEpoch)
			require.NotNil(t, rows[0].SaleEpochTx)
			assert.Equal(t, txHex(saleTx), *rows[0].SaleEpochTx)
			return nil
		})
	tm.store.EXPECT().AdvanceHeads(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input store.AdvanceHeadsInput) (bool, error) {
			assert.Equal(t, testPartition, input.Partition)
			assert.Equal(t, uint64(988), input.LastIndexedBlock)
			assert.Equal(t, uint64(988), input.SafeHeadBlock)
			assert.Equal(t, uint64(0), input.LagBlocks)
			assert.Equal(t, int64(180), input.LagSeconds)
			require.NotNil(t, input.LastEventTime)
			assert.Equal(t, testNow.Add(-9*time.Minute), *input.LastEventTime)
			return true, nil
		})

	result, err := tm.tailer.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(988), result.SafeTarget)
	assert.Equal(t, 2, result.Collections)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.UpToDate)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Events)
}

func TestLiveTailer_RunCycle_NoCollections(t *testing.T) {
	tm := setupLiveTailer(t)

	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return(nil, nil)

	result, err := tm.tailer.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Collections)
}

func TestLiveTailer_RunCycle_EmptyRangeStillAdvances(t *testing.T) {
	tm := setupLiveTailer(t)

	collection := schema.IndexedCollection{
		Partition:        testPartition.String(),
		Contract:         testContract,
		LastIndexedBlock: 980,
		SafeHeadBlock:    970,
	}
	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return([]schema.IndexedCollection{collection}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(988)).Return(testNow, nil)
	tm.chain.EXPECT().FilterTransferLogs(gomock.Any(), testContract, uint64(981), uint64(988)).Return(nil, nil)
	tm.store.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx store.Store) error) error {
			return fn(tm.store)
		})
	tm.store.EXPECT().AdvanceHeads(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input store.AdvanceHeadsInput) (bool, error) {
			assert.Equal(t, uint64(988), input.LastIndexedBlock)
			assert.Nil(t, input.LastEventTime)
			return true, nil
		})

	result, err := tm.tailer.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 0, result.Events)
}

func TestLiveTailer_RunCycle_SkipsWhenNoLongerLiveTailing(t *testing.T) {
	tm := setupLiveTailer(t)

	collection := schema.IndexedCollection{
		Partition:        testPartition.String(),
		Contract:         testContract,
		LastIndexedBlock: 980,
		SafeHeadBlock:    980,
	}
	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return([]schema.IndexedCollection{collection}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(988)).Return(testNow, nil)
	tm.chain.EXPECT().FilterTransferLogs(gomock.Any(), testContract, uint64(981), uint64(988)).Return(nil, nil)
	tm.store.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx store.Store) error) error {
			return fn(tm.store)
		})
	tm.store.EXPECT().AdvanceHeads(gomock.Any(), gomock.Any()).Return(false, nil)

	result, err := tm.tailer.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Advanced)
}

func TestLiveTailer_RunCycle_LogFailureIsolated(t *testing.T) {
	tm := setupLiveTailer(t)

	collection := schema.IndexedCollection{
		Partition:        testPartition.String(),
		Contract:         testContract,
		LastIndexedBlock: 980,
		SafeHeadBlock:    980,
	}
	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return([]schema.IndexedCollection{collection}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(988)).Return(testNow, nil)
	tm.chain.EXPECT().FilterTransferLogs(gomock.Any(), testContract, uint64(981), uint64(988)).
		Return(nil, errors.New("rpc timeout"))

	result, err := tm.tailer.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestLiveTailer_RunCycle_BestBlockFailure(t *testing.T) {
	tm := setupLiveTailer(t)

	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).
		Return([]schema.IndexedCollection{{Partition: testPartition.String(), Contract: testContract}}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(0), errors.New("rpc down"))

	_, err := tm.tailer.RunCycle(context.Background())
	assert.Error(t, err)
}

func TestLiveTailer_RunCycle_PunkBidAcceptedIsSale(t *testing.T) {
	tm := setupLiveTailer(t)

	punks := domain.Partition("1:" + domain.CRYPTOPUNKS_ADDRESS)
	collection := schema.IndexedCollection{
		Partition:        punks.String(),
		Contract:         domain.CRYPTOPUNKS_ADDRESS,
		Status:           domain.IndexingStatusLiveTailing,
		LastIndexedBlock: 980,
		SafeHeadBlock:    980,
	}
	acceptTx := common.HexToHash("0xcc")

	tm.store.EXPECT().FindLiveTailingCollections(gomock.Any(), 100).Return([]schema.IndexedCollection{collection}, nil)
	tm.blocks.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(988)).Return(testNow, nil)
	tm.blocks.EXPECT().GetBlockTimestamp(gomock.Any(), uint64(985)).Return(testNow.Add(-time.Minute), nil)

	// acceptBidForPunk: Transfer(seller, bidder, 1) then a PunkBought with a cleared bid
	tm.chain.EXPECT().FilterTransferLogs(gomock.Any(), domain.CRYPTOPUNKS_ADDRESS, uint64(981), uint64(988)).Return([]types.Log{
		{
			Address:     common.HexToAddress(domain.CRYPTOPUNKS_ADDRESS),
			Topics:      []common.Hash{ethereum.TransferEventSignature, addressTopic(ownerA), addressTopic(ownerB)},
			Data:        common.BigToHash(big.NewInt(1)).Bytes(),
			BlockNumber: 985,
			Index:       4,
			TxHash:      acceptTx,
		},
		{
			Address:     common.HexToAddress(domain.CRYPTOPUNKS_ADDRESS),
			Topics:      []common.Hash{ethereum.PunkBoughtEventSignature, common.BigToHash(big.NewInt(77)), addressTopic(ownerA), {}},
			Data:        common.BigToHash(big.NewInt(0)).Bytes(),
			BlockNumber: 985,
			Index:       5,
			TxHash:      acceptTx,
		},
	}, nil)

	tm.store.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(tx store.Store) error) error {
			return fn(tm.store)
		})
	tm.store.EXPECT().GetOwnersForTokens(gomock.Any(), punks, []string{"77"}).
		Return(map[string]schema.CollectionOwner{}, nil)
	tm.store.EXPECT().UpsertTransfers(gomock.Any(), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, rows []schema.CollectionTransfer, _ int) error {
			require.Len(t, rows, 1)
			assert.Equal(t, "77", rows[0].TokenID)
			assert.Equal(t, ownerA, rows[0].FromAddress)
			assert.Equal(t, ownerB, rows[0].ToAddress)
			require.NotNil(t, rows[0].IsMonetarySale)
			assert.True(t, *rows[0].IsMonetarySale)
			assert.True(t, rows[0].SaleEpochStart)
			return nil
		})
	tm.store.EXPECT().UpsertOwnersHistory(gomock.Any(), gomock.Len(1), 1000).Return(nil)
	tm.store.EXPECT().UpsertOwners(gomock.Any(), gomock.Any(), 1000).
		DoAndReturn(func(_ context.Context, rows []schema.CollectionOwner, _ int) error {
			require.Len(t, rows, 1)
			assert.Equal(t, ownerB, rows[0].Owner)
			require.NotNil(t, rows[0].SaleEpochTx)
			assert.Equal(t, txHex(acceptTx), *rows[0].SaleEpochTx)
			return nil
		})
	tm.store.EXPECT().AdvanceHeads(gomock.Any(), gomock.Any()).Return(true, nil)

	result, err := tm.tailer.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.Events)
}
