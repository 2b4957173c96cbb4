package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type packFunc func(name string, args ...interface{}) ([]byte, error)

type unpackFunc func(name string, data []byte) ([]interface{}, error)

// OwnersViaMulticall721 resolves ownerOf for every id in owner_of_batch chunks
func (c *ethereumClient) OwnersViaMulticall721(ctx context.Context, contract string, tokenIDs []*big.Int, atBlock uint64) ([]string, error) {
	return c.ownersVia(ctx, contract, tokenIDs, atBlock, c.config.OwnerOfBatch, erc721ABI.Pack, erc721ABI.Unpack, "ownerOf")
}

// OwnersViaMulticallPunks resolves punkIndexToAddress for every id in owner_of_batch chunks
func (c *ethereumClient) OwnersViaMulticallPunks(ctx context.Context, contract string, tokenIDs []*big.Int, atBlock uint64) ([]string, error) {
	return c.ownersVia(ctx, contract, tokenIDs, atBlock, c.config.OwnerOfBatch, punksABI.Pack, punksABI.Unpack, "punkIndexToAddress")
}

// ownersVia calls an address-returning getter for every id. The result is aligned with tokenIDs;
// reverts, undecodable results and the zero address become "".
func (c *ethereumClient) ownersVia(
	ctx context.Context,
	contract string,
	tokenIDs []*big.Int,
	atBlock uint64,
	batchSize int,
	pack packFunc,
	unpack unpackFunc,
	method string,
) ([]string, error) {
	target := common.HexToAddress(contract)
	owners := make([]string, len(tokenIDs))
	batchSize = max(batchSize, 1)

	for start := 0; start < len(tokenIDs); start += batchSize {
		end := min(start+batchSize, len(tokenIDs))

		payloads := make([][]byte, 0, end-start)
		for _, tokenID := range tokenIDs[start:end] {
			data, err := pack(method, tokenID)
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, data)
		}

		results, err := c.callBatch(ctx, target, payloads, atBlock)
		if err != nil {
			return nil, err
		}

		for j, out := range results {
			owners[start+j] = decodeOwner(unpack, method, out)
		}
	}

	return owners, nil
}
