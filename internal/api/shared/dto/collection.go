package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// CollectionResponse is the indexing state of a tracked collection
type CollectionResponse struct {
	Partition         string          `json:"partition"`
	Chain             int64           `json:"chain"`
	Contract          string          `json:"contract"`
	Status            string          `json:"status"`
	Standard          string          `json:"standard"`
	Adapter           *string         `json:"adapter,omitempty"`
	Name              *string         `json:"name,omitempty"`
	TotalSupply       *int64          `json:"total_supply,omitempty"`
	IndexedSinceBlock uint64          `json:"indexed_since_block"`
	LastIndexedBlock  uint64          `json:"last_indexed_block"`
	SafeHeadBlock     uint64          `json:"safe_head_block"`
	LagBlocks         uint64          `json:"lag_blocks"`
	LagSeconds        int64           `json:"lag_seconds"`
	LastEventTime     *time.Time      `json:"last_event_time,omitempty"`
	ErrorMessage      *string         `json:"error_message,omitempty"`
	SnapshotStats     json.RawMessage `json:"snapshot_stats,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MapCollectionToDTO maps an indexed collection row, leaving out the snapshot lock
func MapCollectionToDTO(c *schema.IndexedCollection) *CollectionResponse {
	resp := &CollectionResponse{
		Partition:         c.Partition,
		Chain:             c.Chain,
		Contract:          c.Contract,
		Status:            string(c.Status),
		Standard:          string(c.Standard),
		Adapter:           c.Adapter,
		Name:              c.CollectionName,
		TotalSupply:       c.TotalSupply,
		IndexedSinceBlock: c.IndexedSinceBlock,
		LastIndexedBlock:  c.LastIndexedBlock,
		SafeHeadBlock:     c.SafeHeadBlock,
		LagBlocks:         c.LagBlocks,
		LagSeconds:        c.LagSeconds,
		LastEventTime:     c.LastEventTime,
		ErrorMessage:      c.ErrorMessage,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if len(c.SnapshotStats) > 0 {
		resp.SnapshotStats = json.RawMessage(c.SnapshotStats)
	}
	return resp
}

// CollectionTokensResponse lists the indexed token ids of a collection
type CollectionTokensResponse struct {
	Partition string   `json:"partition"`
	TokenIDs  []string `json:"token_ids"`
	Total     int      `json:"total"`
}

// TokenOwnerResponse is the current owner of a token with its sale epoch
type TokenOwnerResponse struct {
	Partition               string    `json:"partition"`
	TokenID                 string    `json:"token_id"`
	Owner                   string    `json:"owner"`
	SinceBlock              uint64    `json:"since_block"`
	SinceTime               time.Time `json:"since_time"`
	SaleEpochStartBlock     *uint64   `json:"sale_epoch_start_block,omitempty"`
	SaleEpochTx             *string   `json:"sale_epoch_tx,omitempty"`
	FreeTransfersSinceEpoch int       `json:"free_transfers_since_epoch"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// MapOwnerToDTO maps a collection owner row
func MapOwnerToDTO(o *schema.CollectionOwner) *TokenOwnerResponse {
	return &TokenOwnerResponse{
		Partition:               o.Partition,
		TokenID:                 o.TokenID,
		Owner:                   o.Owner,
		SinceBlock:              o.SinceBlock,
		SinceTime:               o.SinceTime,
		SaleEpochStartBlock:     o.SaleEpochStartBlock,
		SaleEpochTx:             o.SaleEpochTx,
		FreeTransfersSinceEpoch: o.FreeTransfersSinceEpoch,
		UpdatedAt:               o.UpdatedAt,
	}
}

// RegisterCollectionRequest asks for a collection to be tracked
type RegisterCollectionRequest struct {
	Chain    int64  `json:"chain"`
	Contract string `json:"contract"`
}

// Validate validates the request body
func (r *RegisterCollectionRequest) Validate() error {
	if r.Chain <= 0 {
		return apierrors.NewValidationError("chain must be a positive chain id")
	}
	if !common.IsHexAddress(r.Contract) {
		return apierrors.NewValidationError(fmt.Sprintf("invalid contract address: %s", r.Contract))
	}
	return nil
}

// RequeueCollectionResponse reports a requeued collection
type RequeueCollectionResponse struct {
	Partition string `json:"partition"`
	Status    string `json:"status"`
}
