package dto

import (
	"encoding/json"
	"time"

	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// GrantResponse is a tdh or xtdh grant
type GrantResponse struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	GrantorID          string          `json:"grantor_id"`
	TargetChain        int64           `json:"target_chain"`
	TargetContract     string          `json:"target_contract"`
	TargetPartition    string          `json:"target_partition"`
	TokenMode          string          `json:"token_mode"`
	TargetTokens       json.RawMessage `json:"target_tokens,omitempty"`
	TargetTokensDigest *string         `json:"target_tokens_digest,omitempty"`
	ValidFrom          *int64          `json:"valid_from,omitempty"`
	ValidTo            *int64          `json:"valid_to,omitempty"`
	Rate               float64         `json:"rate"`
	Status             string          `json:"status"`
	ErrorDetails       *string         `json:"error_details,omitempty"`
	IsIrrevocable      bool            `json:"is_irrevocable"`
	ReplacedGrantID    *string         `json:"replaced_grant_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MapGrantToDTO maps a grant row
func MapGrantToDTO(g *schema.Grant) GrantResponse {
	resp := GrantResponse{
		ID:                 g.ID,
		Kind:               string(g.Kind),
		GrantorID:          g.GrantorID,
		TargetChain:        g.TargetChain,
		TargetContract:     g.TargetContract,
		TargetPartition:    g.TargetPartition,
		TokenMode:          string(g.TokenMode),
		TargetTokensDigest: g.TargetTokensDigest,
		ValidFrom:          g.ValidFrom,
		ValidTo:            g.ValidTo,
		Rate:               g.Rate,
		Status:             string(g.Status),
		ErrorDetails:       g.ErrorDetails,
		IsIrrevocable:      g.IsIrrevocable,
		ReplacedGrantID:    g.ReplacedGrantID,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
	if len(g.TargetTokens) > 0 {
		resp.TargetTokens = json.RawMessage(g.TargetTokens)
	}
	return resp
}

// GrantListResponse is a page of grants
type GrantListResponse struct {
	Grants []GrantResponse `json:"grants"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// CreateGrantRequest is the body of a grant creation request
type CreateGrantRequest struct {
	GrantorID      string `json:"grantor_id"`
	TargetChain    int64  `json:"target_chain"`
	TargetContract string `json:"target_contract"`
	// TargetTokens accepts ids and inclusive ranges such as "1-5"
	TargetTokens  []string `json:"target_tokens"`
	ValidTo       *int64   `json:"valid_to"`
	Rate          float64  `json:"rate"`
	IsIrrevocable bool     `json:"is_irrevocable"`
}
