package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
)

// EthereumClient is the chain reader used by snapshotting and live tailing.
// Every contract read is pinned to an explicit block.
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// BestBlock returns the latest block number, retrying provider errors with linear backoff
	BestBlock(ctx context.Context) (uint64, error)

	// BlockTimestamp returns the timestamp of a block
	BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error)

	// CodeAt returns the contract code at a block
	CodeAt(ctx context.Context, contract string, atBlock uint64) ([]byte, error)

	// SupportsInterface runs an ERC-165 supportsInterface probe
	SupportsInterface(ctx context.Context, contract string, interfaceID string, atBlock uint64) (bool, error)

	// SupportsEnumerable reports ERC-721 Enumerable support; any call failure reads as false
	SupportsEnumerable(ctx context.Context, contract string, atBlock uint64) bool

	// TotalSupply returns totalSupply(), or nil if the call fails
	TotalSupply(ctx context.Context, contract string, atBlock uint64) *big.Int

	// Name returns the trimmed collection name capped at the column width, or nil if the call fails
	Name(ctx context.Context, contract string, atBlock uint64) *string

	// TokenByIndex returns tokenByIndex(index)
	TokenByIndex(ctx context.Context, contract string, index *big.Int, atBlock uint64) (*big.Int, error)

	// OwnerOf returns the lowercase owner of a token, "" for the zero address, or an error if the call reverts
	OwnerOf(ctx context.Context, contract string, tokenID *big.Int, atBlock uint64) (string, error)

	// EnumerateContiguousFast tries to prove the ids form [start, start+totalSupply); nil means not proven
	EnumerateContiguousFast(ctx context.Context, contract string, startHint *big.Int, atBlock uint64) ([]*big.Int, error)

	// EnumerateByTokenByIndexMulticall lists ids through batched tokenByIndex calls; holes are skipped
	EnumerateByTokenByIndexMulticall(ctx context.Context, contract string, totalSupply uint64, atBlock uint64) ([]*big.Int, error)

	// EnumerateByOwnerOf probes ids sequentially until enough consecutive misses or the id cap is reached
	EnumerateByOwnerOf(ctx context.Context, contract string, startHint *big.Int, atBlock uint64) ([]*big.Int, error)

	// PunkIDs returns the CryptoPunks id range
	PunkIDs() []*big.Int

	// OwnersViaMulticall721 resolves ownerOf for every id; "" marks ids without an owner
	OwnersViaMulticall721(ctx context.Context, contract string, tokenIDs []*big.Int, atBlock uint64) ([]string, error)

	// OwnersViaMulticallPunks resolves punkIndexToAddress for every id; "" marks ids without an owner
	OwnersViaMulticallPunks(ctx context.Context, contract string, tokenIDs []*big.Int, atBlock uint64) ([]string, error)

	// FilterTransferLogs fetches the ownership-changing logs of a contract in [fromBlock, toBlock]
	FilterTransferLogs(ctx context.Context, contract string, fromBlock, toBlock uint64) ([]types.Log, error)

	// TransactionByHash returns a mined transaction
	TransactionByHash(ctx context.Context, txHash string) (*types.Transaction, error)

	// TransactionReceipt returns the receipt of a mined transaction
	TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error)

	// Close closes the connection
	Close()
}

// Config holds the chain reader tuning
type Config struct {
	MulticallAddress    string
	TokenByIndexBatch   int
	OwnerOfBatch        int
	ProbeBatch          int
	ProbeStopAfterEmpty int
	MaxIDs              int
	PunksSupply         int
	BestBlockRetries    int
	BestBlockBackoff    time.Duration
}

// withDefaults fills unset fields with the production defaults
func (c Config) withDefaults() Config {
	if c.MulticallAddress == "" {
		c.MulticallAddress = domain.DEFAULT_MULTICALL_ADDRESS
	}
	if c.TokenByIndexBatch <= 0 {
		c.TokenByIndexBatch = 300
	}
	if c.OwnerOfBatch <= 0 {
		c.OwnerOfBatch = 150
	}
	if c.ProbeBatch <= 0 {
		c.ProbeBatch = 64
	}
	if c.ProbeStopAfterEmpty <= 0 {
		c.ProbeStopAfterEmpty = 500
	}
	if c.MaxIDs <= 0 {
		c.MaxIDs = 250_000
	}
	if c.PunksSupply <= 0 {
		c.PunksSupply = 10_000
	}
	if c.BestBlockRetries < 0 {
		c.BestBlockRetries = 0
	}
	if c.BestBlockBackoff <= 0 {
		c.BestBlockBackoff = 500 * time.Millisecond
	}
	return c
}

type ethereumClient struct {
	chainID domain.ChainID
	client  adapter.EthClient
	config  Config
}

// NewClient creates a chain reader over an RPC connection
func NewClient(chainID domain.ChainID, client adapter.EthClient, config Config) EthereumClient {
	return &ethereumClient{chainID: chainID, client: client, config: config.withDefaults()}
}

// BestBlock returns the latest block number
func (c *ethereumClient) BestBlock(ctx context.Context) (uint64, error) {
	var best uint64
	operation := func() error {
		n, err := c.client.BlockNumber(ctx)
		if err != nil {
			return err
		}
		best = n
		return nil
	}

	var attempt int
	notify := func(err error, next time.Duration) {
		attempt++
		logger.WarnCtx(ctx, "Failed to get best block, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", next))
	}

	policy := NewRetryPolicy(ctx, c.config.BestBlockBackoff, c.config.BestBlockRetries)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return 0, fmt.Errorf("failed to get best block: %w", err)
	}
	return best, nil
}

// BlockTimestamp returns the timestamp of a block
func (c *ethereumClient) BlockTimestamp(ctx context.Context, blockNumber uint64) (time.Time, error) {
	header, err := c.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get block %d: %w", blockNumber, err)
	}
	if header == nil {
		return time.Time{}, fmt.Errorf("block %d not found", blockNumber)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil //nolint:gosec,G115
}

// CodeAt returns the contract code at a block
func (c *ethereumClient) CodeAt(ctx context.Context, contract string, atBlock uint64) ([]byte, error) {
	code, err := c.client.CodeAt(ctx, common.HexToAddress(contract), new(big.Int).SetUint64(atBlock))
	if err != nil {
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	return code, nil
}

// SupportsInterface runs an ERC-165 supportsInterface probe
func (c *ethereumClient) SupportsInterface(ctx context.Context, contract string, id string, atBlock uint64) (bool, error) {
	data, err := erc721ABI.Pack("supportsInterface", interfaceID(id))
	if err != nil {
		return false, fmt.Errorf("failed to pack data: %w", err)
	}

	out, err := c.call(ctx, common.HexToAddress(contract), data, atBlock)
	if err != nil {
		return false, fmt.Errorf("failed to call contract: %w", err)
	}

	values, err := erc721ABI.Unpack("supportsInterface", out)
	if err != nil {
		return false, fmt.Errorf("failed to unpack result: %w", err)
	}
	if len(values) != 1 {
		return false, fmt.Errorf("unexpected supportsInterface output length %d", len(values))
	}

	supported, ok := values[0].(bool)
	if !ok {
		return false, errors.New("unexpected supportsInterface result type")
	}
	return supported, nil
}

// SupportsEnumerable reports ERC-721 Enumerable support
func (c *ethereumClient) SupportsEnumerable(ctx context.Context, contract string, atBlock uint64) bool {
	supported, err := c.SupportsInterface(ctx, contract, domain.INTERFACE_ID_ERC721_ENUMERABLE, atBlock)
	if err != nil {
		return false
	}
	return supported
}

// TotalSupply returns totalSupply(), or nil if the call fails
func (c *ethereumClient) TotalSupply(ctx context.Context, contract string, atBlock uint64) *big.Int {
	data, err := erc721ABI.Pack("totalSupply")
	if err != nil {
		return nil
	}

	out, err := c.call(ctx, common.HexToAddress(contract), data, atBlock)
	if err != nil {
		return nil
	}
	return decodeUint("totalSupply", out)
}

// Name returns the trimmed collection name
func (c *ethereumClient) Name(ctx context.Context, contract string, atBlock uint64) *string {
	data, err := erc721ABI.Pack("name")
	if err != nil {
		return nil
	}

	out, err := c.call(ctx, common.HexToAddress(contract), data, atBlock)
	if err != nil {
		logger.WarnCtx(ctx, "name() call failed", zap.String("contract", contract), zap.Error(err))
		return nil
	}

	values, err := erc721ABI.Unpack("name", out)
	if err != nil || len(values) != 1 {
		return nil
	}
	name, ok := values[0].(string)
	if !ok {
		return nil
	}

	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > domain.MAX_COLLECTION_NAME_LENGTH {
		logger.WarnCtx(ctx, "Truncated collection name", zap.Int("original_length", len(runes)))
		name = string(runes[:domain.MAX_COLLECTION_NAME_LENGTH])
	}
	return &name
}

// TokenByIndex returns tokenByIndex(index)
func (c *ethereumClient) TokenByIndex(ctx context.Context, contract string, index *big.Int, atBlock uint64) (*big.Int, error) {
	data, err := erc721ABI.Pack("tokenByIndex", index)
	if err != nil {
		return nil, fmt.Errorf("failed to pack data: %w", err)
	}

	out, err := c.call(ctx, common.HexToAddress(contract), data, atBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}

	tokenID := decodeUint("tokenByIndex", out)
	if tokenID == nil {
		return nil, errors.New("failed to unpack tokenByIndex result")
	}
	return tokenID, nil
}

// OwnerOf returns the lowercase owner of a token
func (c *ethereumClient) OwnerOf(ctx context.Context, contract string, tokenID *big.Int, atBlock uint64) (string, error) {
	data, err := erc721ABI.Pack("ownerOf", tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to pack data: %w", err)
	}

	out, err := c.call(ctx, common.HexToAddress(contract), data, atBlock)
	if err != nil {
		return "", fmt.Errorf("failed to call contract: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("empty ownerOf result")
	}

	return decodeOwner(erc721ABI.Unpack, "ownerOf", out), nil
}

// FilterTransferLogs fetches the ownership-changing logs of a contract
func (c *ethereumClient) FilterTransferLogs(ctx context.Context, contract string, fromBlock, toBlock uint64) ([]types.Log, error) {
	topics := []common.Hash{TransferEventSignature}
	if domain.NormalizeAddress(contract) == domain.CRYPTOPUNKS_ADDRESS {
		// marketplace buys emit no PunkTransfer; the ERC-20 style Transfer names the bidder
		topics = []common.Hash{PunkTransferEventSignature, PunkAssignEventSignature, PunkBoughtEventSignature, TransferEventSignature}
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{common.HexToAddress(contract)},
		Topics:    [][]common.Hash{topics},
	}

	logs, err := c.getLogsWithRetry(ctx, query, toBlock-fromBlock+1)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs: %w", err)
	}
	return logs, nil
}

// getLogsWithRetry fetches logs for the whole query range in chunks, halving the chunk
// whenever the provider rejects a range as too large
func (c *ethereumClient) getLogsWithRetry(ctx context.Context, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := max(stepSize, 1)

	var allLogs []types.Log
	currentFrom := new(big.Int).Set(query.FromBlock)

	for currentFrom.Cmp(query.ToBlock) <= 0 {
		currentTo := new(big.Int).Add(currentFrom, new(big.Int).SetUint64(currentStepSize-1))
		if currentTo.Cmp(query.ToBlock) > 0 {
			currentTo.Set(query.ToBlock)
		}

		queryCopy := query
		queryCopy.FromBlock = new(big.Int).Set(currentFrom)
		queryCopy.ToBlock = new(big.Int).Set(currentTo)

		logs, err := c.client.FilterLogs(ctx, queryCopy)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom.SetUint64(currentTo.Uint64() + 1)
			continue
		}

		if !isTooManyResultsError(err) || currentStepSize == 1 {
			return nil, err
		}

		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("old_step_size", currentStepSize*2),
			zap.Uint64("new_step_size", currentStepSize),
			zap.Uint64("from_block", currentFrom.Uint64()),
			zap.Uint64("to_block", currentTo.Uint64()))
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}

// TransactionByHash returns a mined transaction
func (c *ethereumClient) TransactionByHash(ctx context.Context, txHash string) (*types.Transaction, error) {
	tx, _, err := c.client.TransactionByHash(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// TransactionReceipt returns the receipt of a mined transaction
func (c *ethereumClient) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}
	return receipt, nil
}

// Close closes the connection
func (c *ethereumClient) Close() {
	c.client.Close()
}

// decodeUint unpacks a single uint256 output, or returns nil
func decodeUint(method string, data []byte) *big.Int {
	if len(data) == 0 {
		return nil
	}
	values, err := erc721ABI.Unpack(method, data)
	if err != nil || len(values) != 1 {
		return nil
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil
	}
	return v
}

// decodeOwner unpacks a single address output into a lowercase string; zero address and failures yield ""
func decodeOwner(unpack unpackFunc, method string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	values, err := unpack(method, data)
	if err != nil || len(values) != 1 {
		return ""
	}
	owner, ok := values[0].(common.Address)
	if !ok || owner == (common.Address{}) {
		return ""
	}
	return strings.ToLower(owner.Hex())
}
