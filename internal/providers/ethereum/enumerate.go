package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// maxContiguousSamples bounds the ownerOf calls spent proving a contiguous id range
const maxContiguousSamples = 24

// PunkIDs returns the CryptoPunks id range [0, punks_supply)
func (c *ethereumClient) PunkIDs() []*big.Int {
	ids := make([]*big.Int, c.config.PunksSupply)
	for i := range ids {
		ids[i] = big.NewInt(int64(i))
	}
	return ids
}

// EnumerateContiguousFast accepts [start, start+totalSupply) only if every id in it has an owner.
// A cheap sample of up to 24 ids runs first, then the whole range is checked in owner_of_batch
// chunks. Any miss returns nil so the caller falls back to a slower strategy.
func (c *ethereumClient) EnumerateContiguousFast(ctx context.Context, contract string, startHint *big.Int, atBlock uint64) ([]*big.Int, error) {
	totalSupply := c.TotalSupply(ctx, contract, atBlock)
	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return nil, nil
	}

	if totalSupply.Cmp(big.NewInt(int64(c.config.MaxIDs))) > 0 {
		logger.WarnCtx(ctx, "Skipping fast contiguous enumeration, supply too large",
			zap.String("contract", contract),
			zap.String("total_supply", totalSupply.String()))
		return nil, nil
	}

	start, err := c.pickStartID(ctx, contract, startHint, atBlock)
	if err != nil {
		return nil, err
	}

	n := int(totalSupply.Int64())
	ids := make([]*big.Int, n)
	for i := range ids {
		ids[i] = new(big.Int).Add(start, big.NewInt(int64(i)))
	}

	logger.InfoCtx(ctx, "Trying fast contiguous enumeration",
		zap.String("contract", contract),
		zap.String("start", start.String()),
		zap.Int("total_supply", n))

	ok, err := c.sampleOwnerOf(ctx, contract, ids, atBlock)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.InfoCtx(ctx, "Fast contiguous check failed, falling back", zap.String("contract", contract))
		return nil, nil
	}

	// samples only reject early; a hole anywhere in the range must also reject
	owners, err := c.OwnersViaMulticall721(ctx, contract, ids, atBlock)
	if err != nil {
		return nil, err
	}
	for i, owner := range owners {
		if owner == "" {
			logger.InfoCtx(ctx, "Fast contiguous range has a hole, falling back",
				zap.String("contract", contract),
				zap.String("token_id", ids[i].String()))
			return nil, nil
		}
	}

	logger.InfoCtx(ctx, "Fast contiguous enumeration accepted", zap.String("contract", contract), zap.Int("count", n))
	return ids, nil
}

// contiguousSampleIndexes picks the first, last and middle positions, then evenly spaced ones
func contiguousSampleIndexes(n int) []int {
	if n == 0 {
		return nil
	}

	seen := make(map[int]bool, maxContiguousSamples)
	indexes := make([]int, 0, maxContiguousSamples)
	push := func(idx int) {
		if len(indexes) < maxContiguousSamples && !seen[idx] {
			seen[idx] = true
			indexes = append(indexes, idx)
		}
	}

	push(0)
	push(n - 1)
	push(n / 2)
	for i := 0; i < maxContiguousSamples && i < n; i++ {
		push(i * (n - 1) / maxContiguousSamples)
	}
	return indexes
}

// sampleOwnerOf reports whether every sampled id has a non-zero owner
func (c *ethereumClient) sampleOwnerOf(ctx context.Context, contract string, ids []*big.Int, atBlock uint64) (bool, error) {
	indexes := contiguousSampleIndexes(len(ids))
	samples := make([]*big.Int, len(indexes))
	for i, idx := range indexes {
		samples[i] = ids[idx]
	}

	owners, err := c.ownersVia(ctx, contract, samples, atBlock, len(samples), erc721ABI.Pack, erc721ABI.Unpack, "ownerOf")
	if err != nil {
		return false, err
	}

	for _, owner := range owners {
		if owner == "" {
			return false, nil
		}
	}
	return true, nil
}

// pickStartID returns the hinted first id, else 0 when ownerOf(0) succeeds, else 1
func (c *ethereumClient) pickStartID(ctx context.Context, contract string, startHint *big.Int, atBlock uint64) (*big.Int, error) {
	if startHint != nil {
		logger.DebugCtx(ctx, "Using start hint from tokenByIndex(0)", zap.String("start", startHint.String()))
		return new(big.Int).Set(startHint), nil
	}

	if _, err := c.OwnerOf(ctx, contract, big.NewInt(0), atBlock); err == nil {
		return big.NewInt(0), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return big.NewInt(1), nil
}

// EnumerateByTokenByIndexMulticall lists ids through batched tokenByIndex calls
func (c *ethereumClient) EnumerateByTokenByIndexMulticall(ctx context.Context, contract string, totalSupply uint64, atBlock uint64) ([]*big.Int, error) {
	target := common.HexToAddress(contract)
	batchSize := uint64(c.config.TokenByIndexBatch) //nolint:gosec,G115

	ids := make([]*big.Int, 0, totalSupply)
	for start := uint64(0); start < totalSupply; start += batchSize {
		end := min(start+batchSize, totalSupply)

		payloads := make([][]byte, 0, end-start)
		for i := start; i < end; i++ {
			data, err := erc721ABI.Pack("tokenByIndex", new(big.Int).SetUint64(i))
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, data)
		}

		results, err := c.callBatch(ctx, target, payloads, atBlock)
		if err != nil {
			return nil, err
		}

		for _, out := range results {
			if tokenID := decodeUint("tokenByIndex", out); tokenID != nil {
				ids = append(ids, tokenID)
			}
		}
	}

	if uint64(len(ids)) != totalSupply {
		logger.WarnCtx(ctx, "tokenByIndex returned fewer ids than totalSupply",
			zap.String("contract", contract),
			zap.Uint64("expected", totalSupply),
			zap.Int("got", len(ids)))
	}

	return ids, nil
}

// EnumerateByOwnerOf probes ids from the start id in batches. It stops after probe_stop_after_empty
// consecutive ids without an owner, or once max_ids ids have been found.
func (c *ethereumClient) EnumerateByOwnerOf(ctx context.Context, contract string, startHint *big.Int, atBlock uint64) ([]*big.Int, error) {
	maxIDs := c.config.MaxIDs
	stopAfterEmpty := c.config.ProbeStopAfterEmpty

	start, err := c.pickStartID(ctx, contract, startHint, atBlock)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Starting ownerOf probing",
		zap.String("contract", contract),
		zap.String("start", start.String()),
		zap.Int("stop_after_empty", stopAfterEmpty),
		zap.Int("max_ids", maxIDs))

	var ids []*big.Int
	probe := new(big.Int).Set(start)
	emptyStreak := 0

	for emptyStreak < stopAfterEmpty && len(ids) < maxIDs {
		chunkSize := max(1, min(c.config.ProbeBatch, maxIDs-len(ids), stopAfterEmpty-emptyStreak))

		chunk := make([]*big.Int, chunkSize)
		for i := range chunk {
			chunk[i] = new(big.Int).Add(probe, big.NewInt(int64(i)))
		}

		owners, err := c.ownersVia(ctx, contract, chunk, atBlock, chunkSize, erc721ABI.Pack, erc721ABI.Unpack, "ownerOf")
		if err != nil {
			return nil, err
		}

		advanced := 0
		for i, owner := range owners {
			advanced++
			if owner == "" {
				emptyStreak++
				if emptyStreak >= stopAfterEmpty {
					break
				}
				continue
			}

			ids = append(ids, chunk[i])
			emptyStreak = 0
			if len(ids)%1000 == 0 {
				logger.DebugCtx(ctx, "ownerOf probe progress",
					zap.Int("found", len(ids)),
					zap.String("last_id", chunk[i].String()))
			}
			if len(ids) >= maxIDs {
				break
			}
		}

		probe.Add(probe, big.NewInt(int64(advanced)))
	}

	logger.InfoCtx(ctx, "ownerOf probing finished",
		zap.String("contract", contract),
		zap.Int("found", len(ids)),
		zap.String("last_probed", new(big.Int).Sub(probe, big.NewInt(1)).String()))

	return ids, nil
}
