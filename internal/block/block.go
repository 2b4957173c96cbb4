package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// cachedHead is the last fetched best block
type cachedHead struct {
	Number    uint64
	FetchedAt time.Time
}

// cachedTimestamp is the cached time of one block
type cachedTimestamp struct {
	Timestamp time.Time
	CachedAt  time.Time
}

// BlockProvider gives cached access to the best block and to block timestamps.
// Snapshot attempts and live-tail cycles ask for the head many times per run; the cache
// keeps that to one RPC per TTL. Timestamps of reorg-safe blocks never change.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider,BlockFetcher=MockBlockFetcher
type BlockProvider interface {
	// GetLatestBlock returns the best block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetSafeHead returns the best block minus the reorg depth
	GetSafeHead(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the timestamp of a block, potentially from cache
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// BlockFetcher reads block information from the chain
type BlockFetcher interface {
	// FetchLatestBlock fetches the best block number
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the timestamp of a block
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds configuration for the BlockProvider
type Config struct {
	// TTL is how long the best block is cached
	TTL time.Duration

	// StaleWindow is how long a cached value may still be served when a fetch fails
	StaleWindow time.Duration

	// BlockTimestampTTL is how long block timestamps are cached, 0 caches forever
	BlockTimestampTTL time.Duration

	// ReorgDepth is the number of blocks behind the best block considered safe from reorgs
	ReorgDepth uint64
}

type blockProvider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *cachedHead
	timestamps map[uint64]*cachedTimestamp
}

// NewBlockProvider creates a caching BlockProvider
func NewBlockProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) BlockProvider {
	return &blockProvider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: make(map[uint64]*cachedTimestamp),
	}
}

// GetLatestBlock returns the best block number, using the cache while it is fresh
func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && now.Sub(cached.FetchedAt) < p.config.TTL {
		logger.DebugCtx(ctx, "Using cached best block", zap.Uint64("block_number", cached.Number))
		return cached.Number, nil
	}

	best, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.FetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale best block after fetch failure",
				zap.Error(err),
				zap.Uint64("block_number", cached.Number))
			return cached.Number, nil
		}
		return 0, fmt.Errorf("failed to fetch best block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	// never move the cached head backwards when a lagging node answers
	if p.head == nil || best >= p.head.Number {
		p.head = &cachedHead{Number: best, FetchedAt: now}
	} else {
		best = p.head.Number
		p.head.FetchedAt = now
	}
	p.mu.Unlock()

	return best, nil
}

// GetSafeHead returns the reorg-safe head
func (p *blockProvider) GetSafeHead(ctx context.Context) (uint64, error) {
	best, err := p.GetLatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	return SafeHead(best, p.config.ReorgDepth), nil
}

// GetBlockTimestamp returns the timestamp of a block, using the cache when valid
func (p *blockProvider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	p.mu.RLock()
	cached := p.timestamps[blockNumber]
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && (p.config.BlockTimestampTTL == 0 || now.Sub(cached.CachedAt) < p.config.BlockTimestampTTL) {
		return cached.Timestamp, nil
	}

	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		if cached != nil && now.Sub(cached.CachedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale block timestamp after fetch failure",
				zap.Error(err),
				zap.Uint64("block_number", blockNumber))
			return cached.Timestamp, nil
		}
		return time.Time{}, fmt.Errorf("failed to fetch timestamp of block %d and no valid cache available: %w", blockNumber, err)
	}

	p.mu.Lock()
	p.timestamps[blockNumber] = &cachedTimestamp{Timestamp: timestamp, CachedAt: now}
	p.mu.Unlock()

	return timestamp, nil
}
