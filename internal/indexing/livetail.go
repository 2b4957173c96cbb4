package indexing

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/block"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// errNoLongerLiveTailing rolls back a range whose collection left LIVE_TAILING mid-cycle
var errNoLongerLiveTailing = errors.New("collection is no longer live tailing")

// LiveTailConfig holds the live tailing tunables
type LiveTailConfig struct {
	ReorgDepth uint64
	// Range is the maximum number of blocks scanned per collection per cycle
	Range uint64
	// Batch is the number of collections loaded per cycle
	Batch           int
	PoolSize        int
	UpsertChunkSize int
}

// LiveTailResult summarises one cycle
type LiveTailResult struct {
	SafeTarget  uint64 `json:"safe_target"`
	Collections int    `json:"collections"`
	Advanced    int    `json:"advanced"`
	UpToDate    int    `json:"up_to_date"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Events      int    `json:"events"`
}

// LiveTailer follows the safe head for snapshotted collections
//
//go:generate mockgen -source=livetail.go -destination=../mocks/live_tailer.go -package=mocks -mock_names=LiveTailer=MockLiveTailer
type LiveTailer interface {
	// RunCycle advances every loaded collection by at most one range
	RunCycle(ctx context.Context) (*LiveTailResult, error)
}

type liveTailer struct {
	store  store.Store
	chain  ethereum.EthereumClient
	blocks block.BlockProvider
	clock  adapter.Clock
	config LiveTailConfig

	newSaleDetector func() SaleDetector
}

// NewLiveTailer creates a LiveTailer
func NewLiveTailer(
	st store.Store,
	chain ethereum.EthereumClient,
	blocks block.BlockProvider,
	clock adapter.Clock,
	config LiveTailConfig,
) LiveTailer {
	if config.Range == 0 {
		config.Range = 2000
	}
	if config.Batch <= 0 {
		config.Batch = 100
	}
	if config.PoolSize <= 0 {
		config.PoolSize = 1
	}
	return &liveTailer{
		store:  st,
		chain:  chain,
		blocks: blocks,
		clock:  clock,
		config: config,
		newSaleDetector: func() SaleDetector {
			return NewSaleDetector(chain)
		},
	}
}

// transferEvent is a decoded ownership change
type transferEvent struct {
	BlockNumber uint64
	LogIndex    uint
	TxHash      string
	TokenID     string
	From        string
	To          string

	// MarketplaceSale marks transfers the contract itself settled against payment
	MarketplaceSale bool
}

type tailOutcome int

const (
	tailAdvanced tailOutcome = iota
	tailUpToDate
	tailSkipped
)

func (t *liveTailer) RunCycle(ctx context.Context) (*LiveTailResult, error) {
	collections, err := t.store.FindLiveTailingCollections(ctx, t.config.Batch)
	if err != nil {
		return nil, fmt.Errorf("failed to find live tailing collections: %w", err)
	}
	if len(collections) == 0 {
		logger.DebugCtx(ctx, "No collections in LIVE_TAILING state")
		return &LiveTailResult{}, nil
	}

	best, err := t.blocks.GetLatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block: %w", err)
	}
	safeTarget := block.SafeHead(best, t.config.ReorgDepth)

	var safeTime time.Time
	if safeTarget > 0 {
		safeTime, err = t.blocks.GetBlockTimestamp(ctx, safeTarget)
		if err != nil {
			return nil, fmt.Errorf("failed to get safe target timestamp: %w", err)
		}
	}

	detector := t.newSaleDetector()

	var advanced, upToDate, skipped, failed, events atomic.Int32

	pool := pond.NewPool(
		t.config.PoolSize,
		pond.WithQueueSize(len(collections)),
		pond.WithContext(ctx),
	)
	for _, collection := range collections {
		pool.Submit(func() {
			outcome, count, err := t.tailCollection(ctx, detector, collection, safeTarget, safeTime)
			if err != nil {
				failed.Add(1)
				logger.ErrorCtx(ctx, fmt.Errorf("failed to tail collection: %w", err),
					zap.String("partition", collection.Partition))
				return
			}
			events.Add(int32(count)) //nolint:gosec,G115
			switch outcome {
			case tailAdvanced:
				advanced.Add(1)
			case tailUpToDate:
				upToDate.Add(1)
			case tailSkipped:
				skipped.Add(1)
			}
		})
	}
	pool.StopAndWait()

	result := &LiveTailResult{
		SafeTarget:  safeTarget,
		Collections: len(collections),
		Advanced:    int(advanced.Load()),
		UpToDate:    int(upToDate.Load()),
		Skipped:     int(skipped.Load()),
		Failed:      int(failed.Load()),
		Events:      int(events.Load()),
	}

	logger.InfoCtx(ctx, "Live tail cycle completed",
		zap.Uint64("safe_target", safeTarget),
		zap.Int("collections", result.Collections),
		zap.Int("advanced", result.Advanced),
		zap.Int("up_to_date", result.UpToDate),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("events", result.Events))

	return result, ctx.Err()
}

// tailCollection applies one block range of one collection
func (t *liveTailer) tailCollection(
	ctx context.Context,
	detector SaleDetector,
	collection schema.IndexedCollection,
	safeTarget uint64,
	safeTime time.Time,
) (tailOutcome, int, error) {
	partition := domain.Partition(collection.Partition)

	from, to, ok := block.TailRange(collection.SafeHeadBlock, collection.LastIndexedBlock, safeTarget, t.config.Range)
	if !ok {
		lag := block.ComputeLag(safeTarget, max(collection.SafeHeadBlock, collection.LastIndexedBlock), safeTime, t.clock.Now())
		err := t.store.RefreshLagMetrics(ctx, store.LagMetricsInput{
			Partition:  partition,
			LagBlocks:  lag.Blocks,
			LagSeconds: lag.Seconds,
			Now:        t.clock.Now(),
		})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to refresh lag metrics: %w", err)
		}
		return tailUpToDate, 0, nil
	}

	contract := domain.NormalizeAddress(collection.Contract)
	logs, err := t.chain.FilterTransferLogs(ctx, contract, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get logs for blocks %d-%d: %w", from, to, err)
	}

	var decoded []transferEvent
	if contract == domain.CRYPTOPUNKS_ADDRESS {
		decoded = decodePunksLogs(logs)
	} else {
		decoded = decodeERC721Logs(logs)
	}

	blockTimes := make(map[uint64]time.Time)
	for _, ev := range decoded {
		if _, ok := blockTimes[ev.BlockNumber]; ok {
			continue
		}
		ts, err := t.blocks.GetBlockTimestamp(ctx, ev.BlockNumber)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to get timestamp of block %d: %w", ev.BlockNumber, err)
		}
		blockTimes[ev.BlockNumber] = ts
	}

	// classify before opening the transaction so no RPC runs while rows are locked
	sales := make(map[string]*bool)
	for _, ev := range decoded {
		if ev.MarketplaceSale {
			sale := true
			sales[ev.TxHash] = &sale
		}
	}
	for _, ev := range decoded {
		if ev.From == domain.ETHEREUM_ZERO_ADDRESS {
			continue
		}
		if _, ok := sales[ev.TxHash]; !ok {
			sales[ev.TxHash] = detector.IsMonetarySale(ctx, contract, ev.TxHash)
		}
	}

	now := t.clock.Now()
	lag := block.ComputeLag(safeTarget, to, safeTime, now)

	var lastEventTime *time.Time
	if n := len(decoded); n > 0 {
		ts := blockTimes[decoded[n-1].BlockNumber]
		lastEventTime = &ts
	}

	err = t.store.WithTransaction(ctx, func(tx store.Store) error {
		if len(decoded) > 0 {
			tokenIDs := make([]string, 0, len(decoded))
			for _, ev := range decoded {
				if !slices.Contains(tokenIDs, ev.TokenID) {
					tokenIDs = append(tokenIDs, ev.TokenID)
				}
			}
			previous, err := tx.GetOwnersForTokens(ctx, partition, tokenIDs)
			if err != nil {
				return fmt.Errorf("failed to get previous owners: %w", err)
			}

			transfers, history, owners := applyTransfers(partition, decoded, blockTimes, sales, previous)

			if err := tx.UpsertTransfers(ctx, transfers, t.config.UpsertChunkSize); err != nil {
				return fmt.Errorf("failed to upsert transfers: %w", err)
			}
			if err := tx.UpsertOwnersHistory(ctx, history, t.config.UpsertChunkSize); err != nil {
				return fmt.Errorf("failed to upsert owner history: %w", err)
			}
			if err := tx.UpsertOwners(ctx, owners, t.config.UpsertChunkSize); err != nil {
				return fmt.Errorf("failed to upsert owners: %w", err)
			}
		}

		applied, err := tx.AdvanceHeads(ctx, store.AdvanceHeadsInput{
			Partition:        partition,
			LastIndexedBlock: to,
			SafeHeadBlock:    to,
			LagBlocks:        lag.Blocks,
			LagSeconds:       lag.Seconds,
			LastEventTime:    lastEventTime,
			Now:              now,
		})
		if err != nil {
			return fmt.Errorf("failed to advance heads: %w", err)
		}
		if !applied {
			return errNoLongerLiveTailing
		}
		return nil
	})
	if errors.Is(err, errNoLongerLiveTailing) {
		logger.InfoCtx(ctx, "Skipped advancing, collection left live tailing mid-cycle",
			zap.String("partition", collection.Partition))
		return tailSkipped, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	logger.DebugCtx(ctx, "Advanced collection",
		zap.String("partition", collection.Partition),
		zap.Uint64("from_block", from),
		zap.Uint64("to_block", to),
		zap.Int("events", len(decoded)))

	return tailAdvanced, len(decoded), nil
}

// applyTransfers replays ordered events over the previous owners, producing the ledger rows,
// the history rows and the resulting current owner of every touched token
func applyTransfers(
	partition domain.Partition,
	events []transferEvent,
	blockTimes map[uint64]time.Time,
	sales map[string]*bool,
	previous map[string]schema.CollectionOwner,
) ([]schema.CollectionTransfer, []schema.CollectionOwnerHistory, []schema.CollectionOwner) {
	transfers := make([]schema.CollectionTransfer, 0, len(events))
	history := make([]schema.CollectionOwnerHistory, 0, len(events))
	current := make(map[string]schema.CollectionOwner, len(events))
	var touched []string

	for _, ev := range events {
		ts := blockTimes[ev.BlockNumber]

		var isSale *bool
		if ev.From == domain.ETHEREUM_ZERO_ADDRESS {
			isSale = new(bool)
		} else {
			isSale = sales[ev.TxHash]
		}
		sale := isSale != nil && *isSale

		prev, hasPrev := current[ev.TokenID]
		if !hasPrev {
			prev, hasPrev = previous[ev.TokenID]
		}

		next := schema.CollectionOwner{
			Partition:  partition.String(),
			TokenID:    ev.TokenID,
			Owner:      ev.To,
			SinceBlock: ev.BlockNumber,
			SinceTime:  ts,
		}
		switch {
		case sale:
			epochBlock, epochTx := ev.BlockNumber, ev.TxHash
			next.SaleEpochStartBlock = &epochBlock
			next.SaleEpochTx = &epochTx
		case hasPrev:
			next.SaleEpochStartBlock = prev.SaleEpochStartBlock
			next.SaleEpochTx = prev.SaleEpochTx
			next.FreeTransfersSinceEpoch = prev.FreeTransfersSinceEpoch + 1
		default:
			epochBlock := ev.BlockNumber
			next.SaleEpochStartBlock = &epochBlock
			next.FreeTransfersSinceEpoch = 1
		}
		if next.SaleEpochStartBlock == nil {
			epochBlock := ev.BlockNumber
			next.SaleEpochStartBlock = &epochBlock
		}

		if _, seen := current[ev.TokenID]; !seen {
			touched = append(touched, ev.TokenID)
		}
		current[ev.TokenID] = next

		txHash := ev.TxHash
		acquiredAsSale := 0
		if sale {
			acquiredAsSale = 1
		}

		transfers = append(transfers, schema.CollectionTransfer{
			Partition:      partition.String(),
			BlockNumber:    ev.BlockNumber,
			LogIndex:       ev.LogIndex,
			TxHash:         ev.TxHash,
			TokenID:        ev.TokenID,
			FromAddress:    ev.From,
			ToAddress:      ev.To,
			Amount:         1,
			Time:           ts,
			IsMonetarySale: isSale,
			SaleEpochStart: sale,
		})
		history = append(history, schema.CollectionOwnerHistory{
			Partition:               partition.String(),
			TokenID:                 ev.TokenID,
			BlockNumber:             ev.BlockNumber,
			LogIndex:                ev.LogIndex,
			Owner:                   ev.To,
			SinceTime:               ts,
			AcquiredAsSale:          acquiredAsSale,
			TxHash:                  &txHash,
			SaleEpochStartBlock:     next.SaleEpochStartBlock,
			SaleEpochTx:             next.SaleEpochTx,
			FreeTransfersSinceEpoch: next.FreeTransfersSinceEpoch,
		})
	}

	owners := make([]schema.CollectionOwner, 0, len(touched))
	for _, tokenID := range touched {
		owners = append(owners, current[tokenID])
	}
	return transfers, history, owners
}

// decodeERC721Logs keeps ERC-721 Transfer logs (tokenId indexed, no data); ERC-20 style logs are dropped
func decodeERC721Logs(logs []types.Log) []transferEvent {
	events := make([]transferEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed || len(l.Topics) != 4 || len(l.Data) != 0 || l.Topics[0] != ethereum.TransferEventSignature {
			continue
		}
		events = append(events, transferEvent{
			BlockNumber: l.BlockNumber,
			LogIndex:    l.Index,
			TxHash:      strings.ToLower(l.TxHash.Hex()),
			TokenID:     new(big.Int).SetBytes(l.Topics[3].Bytes()).String(),
			From:        topicAddress(l.Topics[1]),
			To:          topicAddress(l.Topics[2]),
		})
	}
	sortEvents(events)
	return events
}

// decodePunksLogs decodes PunkTransfer, Assign and PunkBought; Assign is treated as a mint
func decodePunksLogs(logs []types.Log) []transferEvent {
	events := make([]transferEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed || len(l.Topics) == 0 || len(l.Data) < 32 {
			continue
		}
		ev := transferEvent{
			BlockNumber: l.BlockNumber,
			LogIndex:    l.Index,
			TxHash:      strings.ToLower(l.TxHash.Hex()),
			TokenID:     new(big.Int).SetBytes(l.Data[:32]).String(),
		}
		switch {
		case l.Topics[0] == ethereum.PunkTransferEventSignature && len(l.Topics) == 3:
			ev.From = topicAddress(l.Topics[1])
			ev.To = topicAddress(l.Topics[2])
		case l.Topics[0] == ethereum.PunkAssignEventSignature && len(l.Topics) == 2:
			ev.From = domain.ETHEREUM_ZERO_ADDRESS
			ev.To = topicAddress(l.Topics[1])
		case l.Topics[0] == ethereum.PunkBoughtEventSignature && len(l.Topics) == 4:
			bought, ok := decodePunkBought(l, logs)
			if !ok {
				continue
			}
			ev = bought
		default:
			continue
		}
		events = append(events, ev)
	}
	sortEvents(events)
	return events
}

// decodePunkBought turns a marketplace buy into a transfer. acceptBidForPunk emits the event
// after clearing the bid, so its value and buyer are zero; the buyer is then taken from the
// preceding Transfer(seller, buyer, 1) of the same transaction
func decodePunkBought(l types.Log, logs []types.Log) (transferEvent, bool) {
	ev := transferEvent{
		BlockNumber: l.BlockNumber,
		LogIndex:    l.Index,
		TxHash:      strings.ToLower(l.TxHash.Hex()),
		TokenID:     new(big.Int).SetBytes(l.Topics[1].Bytes()).String(),
		From:        topicAddress(l.Topics[2]),
		To:          topicAddress(l.Topics[3]),
	}
	value := new(big.Int).SetBytes(l.Data[:32])

	if ev.To != domain.ETHEREUM_ZERO_ADDRESS {
		ev.MarketplaceSale = value.Sign() > 0
		return ev, true
	}

	var buyer *types.Log
	for i := range logs {
		candidate := &logs[i]
		if candidate.Removed || candidate.TxHash != l.TxHash || candidate.Address != l.Address ||
			candidate.Index >= l.Index || len(candidate.Topics) != 3 ||
			candidate.Topics[0] != ethereum.TransferEventSignature ||
			topicAddress(candidate.Topics[1]) != ev.From {
			continue
		}
		if buyer == nil || candidate.Index > buyer.Index {
			buyer = candidate
		}
	}
	if buyer == nil {
		return transferEvent{}, false
	}
	ev.To = topicAddress(buyer.Topics[2])
	// bids are escrowed with a non-zero value
	ev.MarketplaceSale = true
	return ev, true
}

func sortEvents(events []transferEvent) {
	slices.SortFunc(events, func(a, b transferEvent) int {
		if a.BlockNumber != b.BlockNumber {
			if a.BlockNumber < b.BlockNumber {
				return -1
			}
			return 1
		}
		return int(a.LogIndex) - int(b.LogIndex) //nolint:gosec,G115
	})
}

func topicAddress(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}
