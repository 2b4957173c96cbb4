package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-collection-indexer/internal/api/shared/dto"
	"github.com/feral-file/ff-collection-indexer/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetCollection returns the indexing state of a collection
	// GET /api/v1/collections/:chain/:contract
	GetCollection(c *gin.Context)

	// ListCollectionTokens returns the indexed token ids of a collection
	// GET /api/v1/collections/:chain/:contract/tokens
	ListCollectionTokens(c *gin.Context)

	// GetTokenOwner returns the current owner of a token
	// GET /api/v1/collections/:chain/:contract/owners/:token_id
	GetTokenOwner(c *gin.Context)

	// RegisterCollection starts tracking a collection (requires authentication)
	// POST /api/v1/collections
	RegisterCollection(c *gin.Context)

	// RequeueCollection moves a failed collection back to the snapshot queue (requires authentication)
	// POST /api/v1/collections/:chain/:contract/requeue
	RequeueCollection(c *gin.Context)

	// CreateGrant registers a pending grant (requires authentication)
	// POST /api/v1/grants/:kind
	CreateGrant(c *gin.Context)

	// SearchGrants lists grants of a kind
	// GET /api/v1/grants/:kind?grantor_id=<id>&target_chain=<chain>&target_contract=<address>&status=<status>&sort=<column>&order=<order>&limit=<limit>&offset=<offset>
	SearchGrants(c *gin.Context)

	// GetGrant returns one grant
	// GET /api/v1/grants/:kind/:id
	GetGrant(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

func (h *handler) GetCollection(c *gin.Context) {
	chain, contract, err := parseCollectionParams(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	collection, err := h.executor.GetCollection(c.Request.Context(), chain, contract)
	if err != nil {
		respondError(c, err, "Failed to get collection")
		return
	}
	if collection == nil {
		respondNotFound(c, "Collection not found")
		return
	}

	c.JSON(http.StatusOK, collection)
}

func (h *handler) ListCollectionTokens(c *gin.Context) {
	chain, contract, err := parseCollectionParams(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tokens, err := h.executor.ListCollectionTokens(c.Request.Context(), chain, contract)
	if err != nil {
		respondError(c, err, "Failed to list tokens")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *handler) GetTokenOwner(c *gin.Context) {
	chain, contract, err := parseCollectionParams(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tokenID := strings.TrimSpace(c.Param("token_id"))
	if tokenID == "" || strings.TrimLeft(tokenID, "0123456789") != "" {
		respondBadRequest(c, fmt.Sprintf("invalid token id: %s", tokenID))
		return
	}

	owner, err := h.executor.GetTokenOwner(c.Request.Context(), chain, contract, tokenID)
	if err != nil {
		respondError(c, err, "Failed to get owner")
		return
	}
	if owner == nil {
		respondNotFound(c, "Owner not found")
		return
	}

	c.JSON(http.StatusOK, owner)
}

func (h *handler) RegisterCollection(c *gin.Context) {
	var req dto.RegisterCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	collection, err := h.executor.RegisterCollection(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register collection")
		return
	}

	c.JSON(http.StatusAccepted, collection)
}

func (h *handler) RequeueCollection(c *gin.Context) {
	chain, contract, err := parseCollectionParams(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.executor.RequeueCollection(c.Request.Context(), chain, contract)
	if err != nil {
		respondError(c, err, "Failed to requeue collection")
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (h *handler) CreateGrant(c *gin.Context) {
	kind, err := parseGrantKind(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	grant, err := h.executor.CreateGrant(c.Request.Context(), kind, req)
	if err != nil {
		respondError(c, err, "Failed to create grant")
		return
	}

	c.JSON(http.StatusCreated, grant)
}

func (h *handler) SearchGrants(c *gin.Context) {
	kind, err := parseGrantKind(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	queryParams, err := ParseSearchGrantsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.SearchGrants(c.Request.Context(), queryParams.ToFilter(kind))
	if err != nil {
		respondError(c, err, "Failed to search grants")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetGrant(c *gin.Context) {
	kind, err := parseGrantKind(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	grant, err := h.executor.GetGrant(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get grant")
		return
	}
	if grant == nil {
		respondNotFound(c, "Grant not found")
		return
	}

	c.JSON(http.StatusOK, grant)
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-collection-indexer-api",
	})
}
