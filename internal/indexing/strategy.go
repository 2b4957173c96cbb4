package indexing

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
)

// Strategy names recorded in snapshot_stats
const (
	StrategyPunks        = "punks"
	StrategyContiguous   = "contiguous"
	StrategySupplyCap    = "supply_cap"
	StrategyTokenByIndex = "token_by_index"
	StrategyOwnerOfProbe = "owner_of_probe"
)

// EnumerationTarget is what the strategies know about a contract before enumerating it
type EnumerationTarget struct {
	Contract       string
	AtBlock        uint64
	Classification domain.Classification
	Enumerable     bool
	// TotalSupply is nil when totalSupply() is not callable
	TotalSupply *big.Int
	// StartHint is tokenByIndex(0) when the contract is enumerable
	StartHint *big.Int
}

// Strategy is one way of listing a collection's token ids. Strategies are tried in order;
// ok=false passes to the next one, an error aborts the snapshot.
type Strategy interface {
	Name() string
	TryEnumerate(ctx context.Context, target EnumerationTarget) (ids []*big.Int, ok bool, err error)
}

// SupplyTooLargeError is returned when totalSupply is above the id cap
type SupplyTooLargeError struct {
	TotalSupply *big.Int
}

func (e *SupplyTooLargeError) Error() string {
	return fmt.Sprintf("Given collections totalSupply of %s is too big so unfortunately it can't be indexed automatically.", e.TotalSupply)
}

func (e *SupplyTooLargeError) Unwrap() error {
	return domain.ErrSupplyTooLarge
}

// DefaultStrategies returns the enumeration chain in priority order
func DefaultStrategies(chain ethereum.EthereumClient, maxIDs int) []Strategy {
	return []Strategy{
		&punksStrategy{chain: chain},
		&contiguousStrategy{chain: chain},
		&supplyCapStrategy{maxIDs: maxIDs},
		&enumerableStrategy{chain: chain},
		&ownerOfProbeStrategy{chain: chain},
	}
}

// punksStrategy lists the fixed CryptoPunks id range
type punksStrategy struct {
	chain ethereum.EthereumClient
}

func (s *punksStrategy) Name() string { return StrategyPunks }

func (s *punksStrategy) TryEnumerate(_ context.Context, target EnumerationTarget) ([]*big.Int, bool, error) {
	if !target.Classification.IsPunks() {
		return nil, false, nil
	}
	return s.chain.PunkIDs(), true, nil
}

// contiguousStrategy proves [start, start+totalSupply) by sampling
type contiguousStrategy struct {
	chain ethereum.EthereumClient
}

func (s *contiguousStrategy) Name() string { return StrategyContiguous }

func (s *contiguousStrategy) TryEnumerate(ctx context.Context, target EnumerationTarget) ([]*big.Int, bool, error) {
	ids, err := s.chain.EnumerateContiguousFast(ctx, target.Contract, target.StartHint, target.AtBlock)
	if err != nil {
		return nil, false, err
	}
	return ids, len(ids) > 0, nil
}

// supplyCapStrategy never enumerates; it stops collections too large for the slow paths
type supplyCapStrategy struct {
	maxIDs int
}

func (s *supplyCapStrategy) Name() string { return StrategySupplyCap }

func (s *supplyCapStrategy) TryEnumerate(_ context.Context, target EnumerationTarget) ([]*big.Int, bool, error) {
	if target.TotalSupply != nil && target.TotalSupply.Cmp(big.NewInt(int64(s.maxIDs))) > 0 {
		return nil, false, &SupplyTooLargeError{TotalSupply: target.TotalSupply}
	}
	return nil, false, nil
}

// enumerableStrategy lists ids through tokenByIndex
type enumerableStrategy struct {
	chain ethereum.EthereumClient
}

func (s *enumerableStrategy) Name() string { return StrategyTokenByIndex }

func (s *enumerableStrategy) TryEnumerate(ctx context.Context, target EnumerationTarget) ([]*big.Int, bool, error) {
	if !target.Enumerable || target.TotalSupply == nil || target.TotalSupply.Sign() <= 0 {
		return nil, false, nil
	}

	ids, err := s.chain.EnumerateByTokenByIndexMulticall(ctx, target.Contract, target.TotalSupply.Uint64(), target.AtBlock)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		logger.WarnCtx(ctx, "tokenByIndex enumeration failed, falling back to ownerOf probing",
			zap.String("contract", target.Contract),
			zap.Error(err))
		return nil, false, nil
	}
	return ids, len(ids) > 0, nil
}

// ownerOfProbeStrategy probes ids sequentially; it is the last resort and always answers
type ownerOfProbeStrategy struct {
	chain ethereum.EthereumClient
}

func (s *ownerOfProbeStrategy) Name() string { return StrategyOwnerOfProbe }

func (s *ownerOfProbeStrategy) TryEnumerate(ctx context.Context, target EnumerationTarget) ([]*big.Int, bool, error) {
	ids, err := s.chain.EnumerateByOwnerOf(ctx, target.Contract, target.StartHint, target.AtBlock)
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}
