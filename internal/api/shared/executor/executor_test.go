package executor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/feral-file/ff-collection-indexer/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-collection-indexer/internal/api/shared/errors"
	"github.com/feral-file/ff-collection-indexer/internal/api/shared/executor"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/mocks"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
	"github.com/feral-file/ff-collection-indexer/internal/workflows"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const (
	testContract   = "0x00000000000000000000000000000000000000aB"
	testNormalized = "0x00000000000000000000000000000000000000ab"
	testTaskQueue  = "collection-indexer"
)

var testPartition = domain.NewPartition(1, testNormalized)

type executorMocks struct {
	store        *mocks.MockStore
	creator      *mocks.MockCreator
	orchestrator *mocks.MockTemporalOrchestrator
	executor     executor.Executor
}

func setupExecutor(t *testing.T) *executorMocks {
	ctrl := gomock.NewController(t)
	m := &executorMocks{
		store:        mocks.NewMockStore(ctrl),
		creator:      mocks.NewMockCreator(ctrl),
		orchestrator: mocks.NewMockTemporalOrchestrator(ctrl),
	}
	m.executor = executor.NewExecutor(m.store, m.creator, m.orchestrator, testTaskQueue)
	return m
}

func collectionWithStatus(status domain.IndexingStatus) *schema.IndexedCollection {
	return &schema.IndexedCollection{
		Partition: testPartition.String(),
		Chain:     1,
		Contract:  testNormalized,
		Status:    status,
	}
}

// expectSnapshotKick expects the snapshot cycle to be started under its stable id
func (m *executorMocks) expectSnapshotKick(t *testing.T, err error) {
	m.orchestrator.EXPECT().
		ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			assert.Equal(t, workflows.SnapshotCycleWorkflowID, options.ID)
			assert.Equal(t, testTaskQueue, options.TaskQueue)
			return nil, err
		})
}

func TestGetCollection(t *testing.T) {
	t.Run("normalizes the contract", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(collectionWithStatus(domain.IndexingStatusLiveTailing), nil)

		resp, err := m.executor.GetCollection(context.Background(), 1, testContract)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, testPartition.String(), resp.Partition)
		assert.Equal(t, "LIVE_TAILING", resp.Status)
	})

	t.Run("not tracked", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(nil, nil)

		resp, err := m.executor.GetCollection(context.Background(), 1, testContract)

		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("database error", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(nil, errors.New("connection refused"))

		_, err := m.executor.GetCollection(context.Background(), 1, testContract)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeDatabaseError, apiErr.Code)
	})
}

func TestListCollectionTokens(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(collectionWithStatus(domain.IndexingStatusLiveTailing), nil)
		m.store.EXPECT().GetAllTokenNumbersForCollection(gomock.Any(), testPartition).Return(nil, nil)

		resp, err := m.executor.ListCollectionTokens(context.Background(), 1, testContract)

		require.NoError(t, err)
		assert.Equal(t, []string{}, resp.TokenIDs)
		assert.Equal(t, 0, resp.Total)
	})

	t.Run("not tracked", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(nil, nil)

		_, err := m.executor.ListCollectionTokens(context.Background(), 1, testContract)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
	})
}

func TestRegisterCollection(t *testing.T) {
	req := dto.RegisterCollectionRequest{Chain: 1, Contract: testContract}

	t.Run("new collection kicks the snapshot cycle", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().
			UpsertOrSelectCollection(gomock.Any(), domain.ChainID(1), testNormalized).
			Return(collectionWithStatus(domain.IndexingStatusWaitingForSnapshotting), nil)
		m.expectSnapshotKick(t, nil)

		resp, err := m.executor.RegisterCollection(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "WAITING_FOR_SNAPSHOTTING", resp.Status)
	})

	t.Run("running cycle is not an error", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().
			UpsertOrSelectCollection(gomock.Any(), domain.ChainID(1), testNormalized).
			Return(collectionWithStatus(domain.IndexingStatusWaitingForSnapshotting), nil)
		m.expectSnapshotKick(t, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", ""))

		_, err := m.executor.RegisterCollection(context.Background(), req)

		require.NoError(t, err)
	})

	t.Run("tracked collection is returned as is", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().
			UpsertOrSelectCollection(gomock.Any(), domain.ChainID(1), testNormalized).
			Return(collectionWithStatus(domain.IndexingStatusLiveTailing), nil)

		resp, err := m.executor.RegisterCollection(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "LIVE_TAILING", resp.Status)
	})

	t.Run("invalid contract", func(t *testing.T) {
		m := setupExecutor(t)

		_, err := m.executor.RegisterCollection(context.Background(), dto.RegisterCollectionRequest{Chain: 1, Contract: "punks"})

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeValidationFailed, apiErr.Code)
	})

	t.Run("without orchestrator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStore(ctrl)
		exec := executor.NewExecutor(st, mocks.NewMockCreator(ctrl), nil, testTaskQueue)
		st.EXPECT().
			UpsertOrSelectCollection(gomock.Any(), domain.ChainID(1), testNormalized).
			Return(collectionWithStatus(domain.IndexingStatusWaitingForSnapshotting), nil)

		_, err := exec.RegisterCollection(context.Background(), req)

		require.NoError(t, err)
	})
}

func TestRequeueCollection(t *testing.T) {
	t.Run("failed collection", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(collectionWithStatus(domain.IndexingStatusErrorSnapshotting), nil)
		m.store.EXPECT().RequeueCollection(gomock.Any(), testPartition).Return(true, nil)
		m.expectSnapshotKick(t, nil)

		resp, err := m.executor.RequeueCollection(context.Background(), 1, testContract)

		require.NoError(t, err)
		assert.Equal(t, "WAITING_FOR_SNAPSHOTTING", resp.Status)
	})

	t.Run("healthy collection", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(collectionWithStatus(domain.IndexingStatusLiveTailing), nil)
		m.store.EXPECT().RequeueCollection(gomock.Any(), testPartition).Return(false, nil)

		_, err := m.executor.RequeueCollection(context.Background(), 1, testContract)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeConflict, apiErr.Code)
		assert.Equal(t, "LIVE_TAILING", apiErr.Details)
	})

	t.Run("not tracked", func(t *testing.T) {
		m := setupExecutor(t)
		m.store.EXPECT().FindCollectionInfo(gomock.Any(), testPartition).Return(nil, nil)

		_, err := m.executor.RequeueCollection(context.Background(), 1, testContract)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
	})
}

func TestCreateGrant(t *testing.T) {
	validTo := int64(1_900_000_000_000)
	req := dto.CreateGrantRequest{
		GrantorID:      "grantor-1",
		TargetChain:    1,
		TargetContract: testContract,
		TargetTokens:   []string{"3", "1-2"},
		ValidTo:        &validTo,
		Rate:           12.5,
	}

	t.Run("created", func(t *testing.T) {
		m := setupExecutor(t)
		m.creator.EXPECT().
			Create(gomock.Any(), grants.CreateGrantInput{
				Kind:           domain.GrantKindTDH,
				GrantorID:      "grantor-1",
				TargetChain:    1,
				TargetContract: testContract,
				TargetTokens:   []string{"3", "1-2"},
				ValidTo:        &validTo,
				Rate:           12.5,
			}).
			Return(&schema.Grant{
				ID:              "01J0000000000000000000000",
				Kind:            domain.GrantKindTDH,
				TargetPartition: testPartition.String(),
				TokenMode:       domain.GrantTokenModeInclude,
				Rate:            12.5,
				Status:          domain.GrantStatusPending,
			}, nil)

		resp, err := m.executor.CreateGrant(context.Background(), domain.GrantKindTDH, req)

		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, "INCLUDE", resp.TokenMode)
	})

	t.Run("validation failure becomes a bad request", func(t *testing.T) {
		m := setupExecutor(t)
		m.creator.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, "rate must be positive"))

		_, err := m.executor.CreateGrant(context.Background(), domain.GrantKindTDH, req)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeBadRequest, apiErr.Code)
		assert.Equal(t, "rate must be positive", apiErr.Message)
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		m := setupExecutor(t)
		m.creator.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("failed to insert grant: deadlock"))

		_, err := m.executor.CreateGrant(context.Background(), domain.GrantKindTDH, req)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.ErrCodeInternalError, apiErr.Code)
	})
}

func TestSearchGrants(t *testing.T) {
	m := setupExecutor(t)
	contract := testContract
	m.store.EXPECT().
		SearchGrants(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter store.GrantFilter) ([]schema.Grant, int64, error) {
			require.NotNil(t, filter.Contract)
			assert.Equal(t, testNormalized, *filter.Contract)
			return []schema.Grant{{ID: "a", Status: domain.GrantStatusGranted}, {ID: "b", Status: domain.GrantStatusDisabled}}, 12, nil
		})

	resp, err := m.executor.SearchGrants(context.Background(), store.GrantFilter{
		Kind:     domain.GrantKindXTDH,
		Contract: &contract,
		Limit:    2,
		Offset:   4,
	})

	require.NoError(t, err)
	require.Len(t, resp.Grants, 2)
	assert.Equal(t, "DISABLED", resp.Grants[1].Status)
	assert.Equal(t, int64(12), resp.Total)
	assert.Equal(t, 4, resp.Offset)
	// the caller's filter is left untouched
	assert.Equal(t, testContract, contract)
}

func TestGetGrant(t *testing.T) {
	m := setupExecutor(t)
	m.store.EXPECT().GetGrant(gomock.Any(), domain.GrantKindTDH, "missing").Return(nil, nil)

	resp, err := m.executor.GetGrant(context.Background(), domain.GrantKindTDH, "missing")

	require.NoError(t, err)
	assert.Nil(t, resp)
}
