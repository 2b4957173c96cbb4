package ethereum

import (
	"context"
	"time"

	"github.com/feral-file/ff-collection-indexer/internal/block"
)

// ethereumBlockFetcher implements block.BlockFetcher over the chain reader
type ethereumBlockFetcher struct {
	client EthereumClient
}

func NewEthereumBlockFetcher(client EthereumClient) block.BlockFetcher {
	return &ethereumBlockFetcher{client: client}
}

// FetchLatestBlock fetches the best block, retrying transient provider errors
func (f *ethereumBlockFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	return f.client.BestBlock(ctx)
}

// FetchBlockTimestamp fetches the timestamp for a given block number
func (f *ethereumBlockFetcher) FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	return f.client.BlockTimestamp(ctx, blockNumber)
}
