package sweeper

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testSchedulerConfig = SchedulerConfig{
	TaskQueue:           "collection-indexing",
	SnapshotInterval:    time.Minute,
	LiveTailInterval:    30 * time.Second,
	GrantReviewInterval: time.Minute,
	RateReviewInterval:  10 * time.Minute,
	GrantKinds:          []domain.GrantKind{domain.GrantKindTDH, domain.GrantKindXTDH},
}

type testSchedulerMocks struct {
	orchestrator *mocks.MockTemporalOrchestrator
	clock        *mocks.MockClock
	scheduler    *scheduler

	mu      sync.Mutex
	started []string
}

func setupScheduler(t *testing.T, config SchedulerConfig) *testSchedulerMocks {
	ctrl := gomock.NewController(t)
	tm := &testSchedulerMocks{
		orchestrator: mocks.NewMockTemporalOrchestrator(ctrl),
		clock:        mocks.NewMockClock(ctrl),
	}
	tm.scheduler = NewScheduler(config, tm.orchestrator, tm.clock).(*scheduler)
	return tm
}

// expectStarts records the workflow ids started through the orchestrator
func (tm *testSchedulerMocks) expectStarts(t *testing.T, times int, err error) {
	tm.orchestrator.EXPECT().ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			assert.Equal(t, "collection-indexing", options.TaskQueue)
			assert.Equal(t, enums.WORKFLOW_ID_CONFLICT_POLICY_FAIL, options.WorkflowIDConflictPolicy)
			assert.Equal(t, 30*time.Minute, options.WorkflowRunTimeout)
			tm.mu.Lock()
			tm.started = append(tm.started, options.ID)
			tm.mu.Unlock()
			return nil, err
		}).Times(times)
}

func (tm *testSchedulerMocks) startedIDs() []string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	ids := append([]string(nil), tm.started...)
	sort.Strings(ids)
	tm.started = nil
	return ids
}

func TestScheduler_StartsDueCycles(t *testing.T) {
	tm := setupScheduler(t, testSchedulerConfig)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// first tick starts everything
	tm.clock.EXPECT().Now().Return(now)
	tm.expectStarts(t, 6, nil)
	assert.Equal(t, 6, tm.scheduler.tick(ctx))
	assert.Equal(t, []string{
		"live-tail-cycle",
		"rereview-rates-tdh",
		"rereview-rates-xtdh",
		"review-grants-tdh",
		"review-grants-xtdh",
		"snapshot-cycle",
	}, tm.startedIDs())

	// 40s later only the live tail is due
	tm.clock.EXPECT().Now().Return(now.Add(40 * time.Second))
	tm.expectStarts(t, 1, nil)
	assert.Equal(t, 1, tm.scheduler.tick(ctx))
	assert.Equal(t, []string{"live-tail-cycle"}, tm.startedIDs())

	// 61s after the first tick the minute cycles are due again
	tm.clock.EXPECT().Now().Return(now.Add(61 * time.Second))
	tm.expectStarts(t, 3, nil)
	assert.Equal(t, 3, tm.scheduler.tick(ctx))
	assert.Equal(t, []string{"review-grants-tdh", "review-grants-xtdh", "snapshot-cycle"}, tm.startedIDs())

	// nothing due
	tm.clock.EXPECT().Now().Return(now.Add(62 * time.Second))
	assert.Equal(t, 0, tm.scheduler.tick(ctx))
}

func TestScheduler_SkipsRunningCycles(t *testing.T) {
	config := testSchedulerConfig
	config.GrantKinds = nil
	tm := setupScheduler(t, config)

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.expectStarts(t, 2, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", ""))
	assert.Equal(t, 0, tm.scheduler.tick(context.Background()))
}

func TestScheduler_StartErrorDoesNotBlockOthers(t *testing.T) {
	config := testSchedulerConfig
	config.GrantKinds = []domain.GrantKind{domain.GrantKindTDH}
	config.RateReviewInterval = 0
	tm := setupScheduler(t, config)

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.orchestrator.EXPECT().ExecuteWorkflow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
			if options.ID == "snapshot-cycle" {
				return nil, errors.New("frontend unavailable")
			}
			return nil, nil
		}).Times(3)

	assert.Equal(t, 2, tm.scheduler.tick(context.Background()))
}

func TestScheduler_StartAndStop(t *testing.T) {
	config := testSchedulerConfig
	config.GrantKinds = nil
	config.LiveTailInterval = 0
	tm := setupScheduler(t, config)
	assert.Equal(t, "cycle-scheduler", tm.scheduler.Name())

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.expectStarts(t, 1, nil)
	tm.clock.EXPECT().SleepCtx(gomock.Any(), TICK_INTERVAL).
		DoAndReturn(func(ctx context.Context, _ time.Duration) bool {
			<-ctx.Done()
			return false
		})

	errCh := make(chan error, 1)
	go func() {
		errCh <- tm.scheduler.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return tm.scheduler.running.Load() && len(tm.startedIDs()) == 1 }, time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tm.scheduler.Stop(stopCtx))
	require.NoError(t, <-errCh)

	// a second stop is a no-op
	require.NoError(t, tm.scheduler.Stop(stopCtx))
}
