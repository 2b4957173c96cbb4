package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// multicallCall is one entry of a Multicall3 tryAggregate batch
type multicallCall struct {
	Target   common.Address
	CallData []byte
}

// multicallResult is the per-call outcome reported by tryAggregate
type multicallResult struct {
	Success    bool
	ReturnData []byte
}

// tryAggregate runs calls through Multicall3 tryAggregate(false, calls) at the given block.
// Individual reverts are reported per call; an error means the batch itself failed.
func (c *ethereumClient) tryAggregate(ctx context.Context, calls []multicallCall, atBlock uint64) ([]multicallResult, error) {
	data, err := multicall3ABI.Pack("tryAggregate", false, calls)
	if err != nil {
		return nil, fmt.Errorf("failed to pack multicall: %w", err)
	}

	multicall := common.HexToAddress(c.config.MulticallAddress)
	out, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &multicall,
		Data: data,
	}, new(big.Int).SetUint64(atBlock))
	if err != nil {
		return nil, fmt.Errorf("failed to call multicall: %w", err)
	}

	unpacked, err := multicall3ABI.Unpack("tryAggregate", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack multicall: %w", err)
	}
	if len(unpacked) != 1 {
		return nil, fmt.Errorf("unexpected multicall output length %d", len(unpacked))
	}

	results := *abi.ConvertType(unpacked[0], new([]multicallResult)).(*[]multicallResult)
	if len(results) != len(calls) {
		return nil, fmt.Errorf("multicall returned %d results for %d calls", len(results), len(calls))
	}

	return results, nil
}

// callBatch calls target with every payload at the given block. The returned slice is aligned with payloads;
// a nil entry means that call reverted or returned nothing. When the aggregated call fails as a whole, the
// batch falls back to one call per payload, so a single bad batch never aborts the caller.
func (c *ethereumClient) callBatch(ctx context.Context, target common.Address, payloads [][]byte, atBlock uint64) ([][]byte, error) {
	results := make([][]byte, len(payloads))
	if len(payloads) == 0 {
		return results, nil
	}

	calls := make([]multicallCall, len(payloads))
	for i, payload := range payloads {
		calls[i] = multicallCall{Target: target, CallData: payload}
	}

	aggregated, err := c.tryAggregate(ctx, calls, atBlock)
	if err == nil {
		for i, r := range aggregated {
			if r.Success && len(r.ReturnData) > 0 {
				results[i] = r.ReturnData
			}
		}
		return results, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	logger.WarnCtx(ctx, "Multicall batch failed, falling back to single calls",
		zap.Error(err),
		zap.String("target", target.Hex()),
		zap.Int("batch_size", len(payloads)),
		zap.Uint64("at_block", atBlock))

	for i, payload := range payloads {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, err := c.call(ctx, target, payload, atBlock)
		if err != nil || len(out) == 0 {
			continue
		}
		results[i] = out
	}

	return results, nil
}

// call performs a single eth_call at the given block
func (c *ethereumClient) call(ctx context.Context, target common.Address, payload []byte, atBlock uint64) ([]byte, error) {
	return c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &target,
		Data: payload,
	}, new(big.Int).SetUint64(atBlock))
}
