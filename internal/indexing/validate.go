package indexing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/providers/ethereum"
)

// Rejection reasons persisted as error_message of UNINDEXABLE collections
const (
	ReasonNoCode    = "No contract code at address"
	ReasonERC1155   = "ERC-1155 collections are not supported"
	ReasonNotERC721 = "Contract does not support ERC-721 (ERC165 and probe failed)"
)

// Validation is the outcome of ValidateIndexable
type Validation struct {
	Classification domain.Classification
	OK             bool
	// Reason explains a rejection
	Reason string
}

// ValidateIndexable decides whether and how a contract can be snapshotted at a block.
// A rejection is terminal; an error is not and leaves the collection retryable
func ValidateIndexable(ctx context.Context, chain ethereum.EthereumClient, contract string, atBlock uint64) (Validation, error) {
	if domain.NormalizeAddress(contract) == domain.CRYPTOPUNKS_ADDRESS {
		return Validation{Classification: domain.LegacyAdapter(domain.AdapterCryptoPunks), OK: true}, nil
	}

	code, err := chain.CodeAt(ctx, contract, atBlock)
	if err != nil {
		return Validation{}, fmt.Errorf("failed to fetch contract code: %w", err)
	}
	if len(code) == 0 {
		return Validation{Reason: ReasonNoCode}, nil
	}

	if is1155, err := chain.SupportsInterface(ctx, contract, domain.INTERFACE_ID_ERC1155, atBlock); err == nil && is1155 {
		return Validation{Classification: domain.Standard1155Rejected(), Reason: ReasonERC1155}, nil
	}

	if is721, err := chain.SupportsInterface(ctx, contract, domain.INTERFACE_ID_ERC721, atBlock); err == nil && is721 {
		return Validation{Classification: domain.Standard721(), OK: true}, nil
	}

	// pre-ERC-165 contracts still answer ownerOf for a minted id
	for _, id := range []int64{0, 1} {
		if _, err := chain.OwnerOf(ctx, contract, big.NewInt(id), atBlock); err == nil {
			return Validation{Classification: domain.Standard721(), OK: true}, nil
		}
	}

	// reverts above are expected; a cancelled context is not a verdict on the contract
	if err := ctx.Err(); err != nil {
		return Validation{}, fmt.Errorf("validation interrupted: %w", err)
	}

	return Validation{Reason: ReasonNotERC721}, nil
}
