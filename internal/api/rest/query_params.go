package rest

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/store"
)

const MAX_PAGE_SIZE = 100

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// SearchGrantsQueryParams holds query parameters for GET /grants/:kind
type SearchGrantsQueryParams struct {
	GrantorID string `form:"grantor_id"`
	Chain     int64  `form:"target_chain"`
	Contract  string `form:"target_contract"`
	Status    string `form:"status"`

	Sort  string `form:"sort,default=created_at"`
	Order Order  `form:"order,default=desc"`

	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ParseSearchGrantsQuery parses query parameters for GET /grants/:kind
func ParseSearchGrantsQuery(c *gin.Context) (*SearchGrantsQueryParams, error) {
	var params SearchGrantsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Cap limits
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// Validate validates the query parameters
func (p *SearchGrantsQueryParams) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	if p.Chain < 0 {
		return fmt.Errorf("target_chain must be a positive chain id")
	}
	if p.Contract != "" && !common.IsHexAddress(p.Contract) {
		return fmt.Errorf("invalid target_contract: %s", p.Contract)
	}
	if p.Status != "" && !domain.IsValidGrantStatus(domain.GrantStatus(p.Status)) {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if !store.IsValidGrantSort(p.Sort) {
		return fmt.Errorf("invalid sort: %s", p.Sort)
	}
	if p.Order != OrderAsc && p.Order != OrderDesc {
		return fmt.Errorf("invalid order: %s. Must be 'asc' or 'desc'", p.Order)
	}
	return nil
}

// ToFilter converts the query parameters into a store filter
func (p *SearchGrantsQueryParams) ToFilter(kind domain.GrantKind) store.GrantFilter {
	filter := store.GrantFilter{
		Kind:          kind,
		Sort:          p.Sort,
		SortDirection: string(p.Order),
		Limit:         p.Limit,
		Offset:        p.Offset,
	}
	if p.GrantorID != "" {
		filter.GrantorID = &p.GrantorID
	}
	if p.Chain > 0 {
		filter.Chain = &p.Chain
	}
	if p.Contract != "" {
		filter.Contract = &p.Contract
	}
	if p.Status != "" {
		status := domain.GrantStatus(p.Status)
		filter.Status = &status
	}
	return filter
}

// parseCollectionParams reads the :chain and :contract path parameters
func parseCollectionParams(c *gin.Context) (domain.ChainID, string, error) {
	chain, err := strconv.ParseInt(c.Param("chain"), 10, 64)
	if err != nil || chain <= 0 {
		return 0, "", fmt.Errorf("invalid chain: %s", c.Param("chain"))
	}
	contract := c.Param("contract")
	if !common.IsHexAddress(contract) {
		return 0, "", fmt.Errorf("invalid contract address: %s", contract)
	}
	return domain.ChainID(chain), contract, nil
}

// parseGrantKind reads the :kind path parameter
func parseGrantKind(c *gin.Context) (domain.GrantKind, error) {
	kind := domain.GrantKind(c.Param("kind"))
	if !domain.IsValidGrantKind(kind) {
		return "", fmt.Errorf("invalid grant kind: %s", kind)
	}
	return kind, nil
}
