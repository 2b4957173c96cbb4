package indexing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
)

const (
	saleFetchBackoff = 200 * time.Millisecond
	saleFetchRetries = 2
)

// SaleDetector tells whether a transaction moving an NFT was paid for
type SaleDetector interface {
	// IsMonetarySale returns nil when the transaction could not be classified
	IsMonetarySale(ctx context.Context, contract string, txHash string) *bool
}

type saleDetector struct {
	chain        ethereum.EthereumClient
	retryBackoff time.Duration

	mu   sync.Mutex
	memo map[string]bool
}

// NewSaleDetector creates a detector memoising classifications for its lifetime; create one per cycle
func NewSaleDetector(chain ethereum.EthereumClient) SaleDetector {
	return &saleDetector{
		chain:        chain,
		retryBackoff: saleFetchBackoff,
		memo:         make(map[string]bool),
	}
}

func (d *saleDetector) IsMonetarySale(ctx context.Context, contract string, txHash string) *bool {
	contract = domain.NormalizeAddress(contract)
	key := contract + ":" + strings.ToLower(txHash)

	d.mu.Lock()
	sale, ok := d.memo[key]
	d.mu.Unlock()
	if ok {
		return &sale
	}

	tx, receipt, err := d.fetch(ctx, txHash)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to classify sale",
			zap.String("contract", contract),
			zap.String("tx_hash", txHash),
			zap.Error(err))
		return nil
	}

	sale = classifySale(contract, tx, receipt)

	d.mu.Lock()
	d.memo[key] = sale
	d.mu.Unlock()

	return &sale
}

// fetch loads the transaction and its receipt; a missing transaction is not retried
func (d *saleDetector) fetch(ctx context.Context, txHash string) (*types.Transaction, *types.Receipt, error) {
	var (
		tx      *types.Transaction
		receipt *types.Receipt
	)

	op := func() error {
		var err error
		if tx == nil {
			tx, err = d.chain.TransactionByHash(ctx, txHash)
			if err != nil {
				return permanentIfNotFound(err)
			}
		}
		receipt, err = d.chain.TransactionReceipt(ctx, txHash)
		if err != nil {
			return permanentIfNotFound(err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.DebugCtx(ctx, "Retrying transaction fetch",
			zap.String("tx_hash", txHash),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, ethereum.NewRetryPolicy(ctx, d.retryBackoff, saleFetchRetries), notify); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return tx, receipt, nil
}

func permanentIfNotFound(err error) error {
	if errors.Is(err, geth.NotFound) {
		return backoff.Permanent(err)
	}
	return err
}

// classifySale applies the sale rules to a fetched transaction.
// The contract is lowercase.
func classifySale(contract string, tx *types.Transaction, receipt *types.Receipt) bool {
	if tx.Value() != nil && tx.Value().Sign() > 0 {
		return true
	}
	if to := tx.To(); to != nil && domain.IsMarketplace(to.Hex()) {
		return true
	}
	if receipt == nil {
		return false
	}

	for _, log := range receipt.Logs {
		address := strings.ToLower(log.Address.Hex())
		if domain.IsMarketplace(address) {
			return true
		}
		// a Transfer from another contract means tokens (WETH, ERC-20, another NFT) moved in exchange
		if address != contract && len(log.Topics) > 0 && log.Topics[0] == ethereum.TransferEventSignature {
			return true
		}
	}
	return false
}
