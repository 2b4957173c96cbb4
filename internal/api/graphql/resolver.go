package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-collection-indexer/internal/api/rest"
	"github.com/feral-file/ff-collection-indexer/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/api/shared/executor"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
)

// Resolver is the root resolver that holds the executor
type Resolver struct {
	executor executor.Executor
}

// NewResolver creates a new root resolver with executor
func NewResolver(exec executor.Executor) *Resolver {
	return &Resolver{
		executor: exec,
	}
}

// resolve dispatches a root field; the result is rendered against the field's selection set
func (r *Resolver) resolve(ctx context.Context, object, field string, args map[string]any) (any, error) {
	switch object + "." + field {
	case "Query.collection":
		chain, contract, err := collectionArgs(args)
		if err != nil {
			return nil, err
		}
		return r.executor.GetCollection(ctx, chain, contract)

	case "Query.collection_tokens":
		chain, contract, err := collectionArgs(args)
		if err != nil {
			return nil, err
		}
		return r.executor.ListCollectionTokens(ctx, chain, contract)

	case "Query.token_owner":
		chain, contract, err := collectionArgs(args)
		if err != nil {
			return nil, err
		}
		tokenID := strings.TrimSpace(stringArg(args, "token_id"))
		if tokenID == "" || strings.TrimLeft(tokenID, "0123456789") != "" {
			return nil, apierrors.NewBadRequestError(fmt.Sprintf("invalid token id: %s", tokenID))
		}
		return r.executor.GetTokenOwner(ctx, chain, contract, tokenID)

	case "Query.grants":
		return r.searchGrants(ctx, args)

	case "Query.grant":
		return r.executor.GetGrant(ctx, domain.GrantKind(stringArg(args, "kind")), stringArg(args, "id"))

	case "Mutation.register_collection":
		chain, err := intArg(args, "chain")
		if err != nil {
			return nil, err
		}
		req := dto.RegisterCollectionRequest{Chain: chain, Contract: stringArg(args, "contract")}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return r.executor.RegisterCollection(ctx, req)

	case "Mutation.requeue_collection":
		chain, contract, err := collectionArgs(args)
		if err != nil {
			return nil, err
		}
		return r.executor.RequeueCollection(ctx, chain, contract)
	}

	return nil, apierrors.NewBadRequestError(fmt.Sprintf("unsupported field: %s.%s", object, field))
}

func (r *Resolver) searchGrants(ctx context.Context, args map[string]any) (*dto.GrantListResponse, error) {
	params := rest.SearchGrantsQueryParams{
		GrantorID: stringArg(args, "grantor_id"),
		Contract:  stringArg(args, "target_contract"),
		Status:    stringArg(args, "status"),
		Sort:      stringArg(args, "sort"),
		Order:     rest.Order(stringArg(args, "order")),
	}

	var err error
	if params.Chain, err = intArg(args, "target_chain"); err != nil {
		return nil, err
	}
	limit, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := intArg(args, "offset")
	if err != nil {
		return nil, err
	}
	params.Limit = int(min(limit, rest.MAX_PAGE_SIZE))
	params.Offset = int(offset) //nolint:gosec,G115

	if err := params.Validate(); err != nil {
		return nil, apierrors.NewValidationError(err.Error())
	}

	return r.executor.SearchGrants(ctx, params.ToFilter(domain.GrantKind(stringArg(args, "kind"))))
}

func collectionArgs(args map[string]any) (domain.ChainID, string, error) {
	chain, err := intArg(args, "chain")
	if err != nil {
		return 0, "", err
	}
	if chain <= 0 {
		return 0, "", apierrors.NewBadRequestError(fmt.Sprintf("invalid chain: %d", chain))
	}
	contract := stringArg(args, "contract")
	if !common.IsHexAddress(contract) {
		return 0, "", apierrors.NewBadRequestError(fmt.Sprintf("invalid contract address: %s", contract))
	}
	return domain.ChainID(chain), contract, nil
}

func stringArg(args map[string]any, name string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return ""
}

// intArg reads an Int argument; literals arrive as int64, variables as decoded JSON
func intArg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, apierrors.NewBadRequestError(fmt.Sprintf("%s must be an integer", name))
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, apierrors.NewBadRequestError(fmt.Sprintf("%s must be an integer", name))
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, apierrors.NewBadRequestError(fmt.Sprintf("%s must be an integer", name))
		}
		return n, nil
	default:
		return 0, apierrors.NewBadRequestError(fmt.Sprintf("%s has unsupported type %T", name, v))
	}
}
