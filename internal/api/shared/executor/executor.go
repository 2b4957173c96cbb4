package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/providers/temporal"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/workflows"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetCollection returns the indexing state of a collection, nil if it is not tracked
	GetCollection(ctx context.Context, chain domain.ChainID, contract string) (*dto.CollectionResponse, error)

	// ListCollectionTokens returns every indexed token id of a tracked collection
	ListCollectionTokens(ctx context.Context, chain domain.ChainID, contract string) (*dto.CollectionTokensResponse, error)

	// GetTokenOwner returns the current owner of a token, nil if unknown
	GetTokenOwner(ctx context.Context, chain domain.ChainID, contract string, tokenID string) (*dto.TokenOwnerResponse, error)

	// RegisterCollection starts tracking a collection and kicks the snapshot cycle
	RegisterCollection(ctx context.Context, req dto.RegisterCollectionRequest) (*dto.CollectionResponse, error)

	// RequeueCollection moves a failed collection back to the snapshot queue
	RequeueCollection(ctx context.Context, chain domain.ChainID, contract string) (*dto.RequeueCollectionResponse, error)

	// CreateGrant registers a PENDING grant
	CreateGrant(ctx context.Context, kind domain.GrantKind, req dto.CreateGrantRequest) (*dto.GrantResponse, error)

	// SearchGrants returns a page of grants
	SearchGrants(ctx context.Context, filter store.GrantFilter) (*dto.GrantListResponse, error)

	// GetGrant returns one grant, nil if not found
	GetGrant(ctx context.Context, kind domain.GrantKind, id string) (*dto.GrantResponse, error)
}

type executor struct {
	store                 store.Store
	creator               grants.Creator
	orchestrator          temporal.TemporalOrchestrator
	orchestratorTaskQueue string
}

// NewExecutor creates the API executor. A nil orchestrator disables the snapshot kick on registration.
func NewExecutor(store store.Store, creator grants.Creator, orchestrator temporal.TemporalOrchestrator, orchestratorTaskQueue string) Executor {
	return &executor{
		store:                 store,
		creator:               creator,
		orchestrator:          orchestrator,
		orchestratorTaskQueue: orchestratorTaskQueue,
	}
}

func partitionOf(chain domain.ChainID, contract string) domain.Partition {
	return domain.NewPartition(chain, domain.NormalizeAddress(contract))
}

func (e *executor) GetCollection(ctx context.Context, chain domain.ChainID, contract string) (*dto.CollectionResponse, error) {
	collection, err := e.store.FindCollectionInfo(ctx, partitionOf(chain, contract))
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get collection: %v", err))
	}
	if collection == nil {
		return nil, nil
	}
	return dto.MapCollectionToDTO(collection), nil
}

func (e *executor) ListCollectionTokens(ctx context.Context, chain domain.ChainID, contract string) (*dto.CollectionTokensResponse, error) {
	partition := partitionOf(chain, contract)

	collection, err := e.store.FindCollectionInfo(ctx, partition)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get collection: %v", err))
	}
	if collection == nil {
		return nil, apierrors.NewNotFoundError("Collection not found")
	}

	tokenIDs, err := e.store.GetAllTokenNumbersForCollection(ctx, partition)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get tokens: %v", err))
	}
	if tokenIDs == nil {
		tokenIDs = []string{}
	}

	return &dto.CollectionTokensResponse{
		Partition: partition.String(),
		TokenIDs:  tokenIDs,
		Total:     len(tokenIDs),
	}, nil
}

func (e *executor) GetTokenOwner(ctx context.Context, chain domain.ChainID, contract string, tokenID string) (*dto.TokenOwnerResponse, error) {
	owner, err := e.store.GetOwner(ctx, partitionOf(chain, contract), tokenID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get owner: %v", err))
	}
	if owner == nil {
		return nil, nil
	}
	return dto.MapOwnerToDTO(owner), nil
}

func (e *executor) RegisterCollection(ctx context.Context, req dto.RegisterCollectionRequest) (*dto.CollectionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	collection, err := e.store.UpsertOrSelectCollection(ctx, domain.ChainID(req.Chain), domain.NormalizeAddress(req.Contract))
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to register collection: %v", err))
	}

	if collection.Status == domain.IndexingStatusWaitingForSnapshotting {
		e.kickSnapshotCycle(ctx)
	}

	return dto.MapCollectionToDTO(collection), nil
}

func (e *executor) RequeueCollection(ctx context.Context, chain domain.ChainID, contract string) (*dto.RequeueCollectionResponse, error) {
	partition := partitionOf(chain, contract)

	collection, err := e.store.FindCollectionInfo(ctx, partition)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get collection: %v", err))
	}
	if collection == nil {
		return nil, apierrors.NewNotFoundError("Collection not found")
	}

	requeued, err := e.store.RequeueCollection(ctx, partition)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to requeue collection: %v", err))
	}
	if !requeued {
		return nil, apierrors.NewConflictError(domain.ErrNotRequeueable.Error(), string(collection.Status))
	}

	logger.InfoCtx(ctx, "Collection requeued for snapshotting", zap.String("partition", partition.String()))
	e.kickSnapshotCycle(ctx)

	return &dto.RequeueCollectionResponse{
		Partition: partition.String(),
		Status:    string(domain.IndexingStatusWaitingForSnapshotting),
	}, nil
}

// kickSnapshotCycle starts the snapshot cycle now instead of on the next sweeper tick.
// Failures only delay the snapshot so they are logged, not returned.
func (e *executor) kickSnapshotCycle(ctx context.Context) {
	if e.orchestrator == nil {
		return
	}

	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{})
	options := client.StartWorkflowOptions{
		ID:                       workflows.SnapshotCycleWorkflowID,
		TaskQueue:                e.orchestratorTaskQueue,
		WorkflowRunTimeout:       30 * time.Minute,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_FAIL,
	}

	_, err := e.orchestrator.ExecuteWorkflow(ctx, options, w.SnapshotCycle)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return
		}
		logger.WarnCtx(ctx, "Failed to start snapshot cycle", zap.Error(err))
	}
}

func (e *executor) CreateGrant(ctx context.Context, kind domain.GrantKind, req dto.CreateGrantRequest) (*dto.GrantResponse, error) {
	grant, err := e.creator.Create(ctx, grants.CreateGrantInput{
		Kind:           kind,
		GrantorID:      req.GrantorID,
		TargetChain:    domain.ChainID(req.TargetChain),
		TargetContract: req.TargetContract,
		TargetTokens:   req.TargetTokens,
		ValidTo:        req.ValidTo,
		Rate:           req.Rate,
		IsIrrevocable:  req.IsIrrevocable,
	})
	if err != nil {
		return nil, apierrors.FromError(err, "Failed to create grant")
	}

	resp := dto.MapGrantToDTO(grant)
	return &resp, nil
}

func (e *executor) SearchGrants(ctx context.Context, filter store.GrantFilter) (*dto.GrantListResponse, error) {
	if filter.Contract != nil {
		normalized := domain.NormalizeAddress(*filter.Contract)
		filter.Contract = &normalized
	}

	results, total, err := e.store.SearchGrants(ctx, filter)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to search grants: %v", err))
	}

	items := make([]dto.GrantResponse, len(results))
	for i := range results {
		items[i] = dto.MapGrantToDTO(&results[i])
	}

	return &dto.GrantListResponse{
		Grants: items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (e *executor) GetGrant(ctx context.Context, kind domain.GrantKind, id string) (*dto.GrantResponse, error) {
	grant, err := e.store.GetGrant(ctx, kind, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get grant: %v", err))
	}
	if grant == nil {
		return nil, nil
	}
	resp := dto.MapGrantToDTO(grant)
	return &resp, nil
}
