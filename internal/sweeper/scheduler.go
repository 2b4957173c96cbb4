package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/providers/temporal"
	"github.com/feral-file/ff-collection-indexer/internal/workflows"
)

const (
	// TICK_INTERVAL is how often the scheduler checks which cycles are due
	TICK_INTERVAL = 5 * time.Second
)

// SchedulerConfig holds the intervals of the periodic cycles
type SchedulerConfig struct {
	TaskQueue           string
	SnapshotInterval    time.Duration
	LiveTailInterval    time.Duration
	GrantReviewInterval time.Duration
	RateReviewInterval  time.Duration
	GrantKinds          []domain.GrantKind
	// RunTimeout bounds each started workflow run
	RunTimeout time.Duration
}

// cycle is one periodically started workflow
type cycle struct {
	workflowID string
	interval   time.Duration
	workflow   interface{}
	args       []interface{}
	lastRun    time.Time
}

// scheduler starts the cycle workflows with stable workflow ids so a cycle never runs twice at once
type scheduler struct {
	config       SchedulerConfig
	orchestrator temporal.TemporalOrchestrator
	clock        adapter.Clock
	cycles       []*cycle
	mu           sync.Mutex
	running      atomic.Bool
	stopOnce     sync.Once
	stopChan     chan struct{}
	stoppedCh    chan struct{}
}

// NewScheduler creates the cycle scheduler
func NewScheduler(config SchedulerConfig, orchestrator temporal.TemporalOrchestrator, clock adapter.Clock) Sweeper {
	if config.RunTimeout <= 0 {
		config.RunTimeout = 30 * time.Minute
	}

	// only used to reference workflow functions by name
	w := workflows.NewWorkerCore(nil, workflows.WorkerCoreConfig{})

	cycles := []*cycle{
		{workflowID: workflows.SnapshotCycleWorkflowID, interval: config.SnapshotInterval, workflow: w.SnapshotCycle},
		{workflowID: workflows.LiveTailCycleWorkflowID, interval: config.LiveTailInterval, workflow: w.LiveTailCycle},
	}
	for _, kind := range config.GrantKinds {
		cycles = append(cycles,
			&cycle{workflowID: workflows.ReviewGrantsWorkflowID(kind), interval: config.GrantReviewInterval, workflow: w.ReviewGrants, args: []interface{}{kind}},
			&cycle{workflowID: workflows.ReReviewRatesWorkflowID(kind), interval: config.RateReviewInterval, workflow: w.ReReviewRates, args: []interface{}{kind}},
		)
	}

	// a zero interval disables a cycle
	enabled := cycles[:0]
	for _, c := range cycles {
		if c.interval > 0 {
			enabled = append(enabled, c)
		}
	}

	return &scheduler{
		config:       config,
		orchestrator: orchestrator,
		clock:        clock,
		cycles:       enabled,
		stopChan:     make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *scheduler) Name() string {
	return "cycle-scheduler"
}

// Start runs the scheduling loop until the context is canceled or Stop is called
func (s *scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting cycle scheduler",
		zap.Int("cycles", len(s.cycles)),
		zap.String("task_queue", s.config.TaskQueue))

	// Stop interrupts the sleep between ticks
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Cycle scheduler stop requested")
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		s.tick(ctx)

		if !s.clock.SleepCtx(ctx, TICK_INTERVAL) {
			logger.InfoCtx(ctx, "Cycle scheduler stopping", zap.Error(ctx.Err()))
			return nil
		}
	}
}

// tick starts every cycle that is due and returns how many were started
func (s *scheduler) tick(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var due []*cycle
	for _, c := range s.cycles {
		if c.lastRun.IsZero() || now.Sub(c.lastRun) >= c.interval {
			due = append(due, c)
		}
	}
	if len(due) == 0 {
		return 0
	}

	var started atomic.Int32
	pool := pond.NewPool(len(due), pond.WithContext(ctx))
	for _, c := range due {
		pool.Submit(func() {
			if s.startCycle(ctx, c) {
				started.Add(1)
			}
		})
	}
	pool.StopAndWait()

	for _, c := range due {
		c.lastRun = now
	}

	return int(started.Load())
}

// startCycle starts one workflow; false if it could not be started or is still running
func (s *scheduler) startCycle(ctx context.Context, c *cycle) bool {
	options := client.StartWorkflowOptions{
		ID:                       c.workflowID,
		TaskQueue:                s.config.TaskQueue,
		WorkflowRunTimeout:       s.config.RunTimeout,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_FAIL,
	}

	run, err := s.orchestrator.ExecuteWorkflow(ctx, options, c.workflow, c.args...)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			logger.DebugCtx(ctx, "Cycle still running, skipping", zap.String("workflow_id", c.workflowID))
			return false
		}
		logger.ErrorCtx(ctx, fmt.Errorf("failed to start cycle workflow: %w", err), zap.String("workflow_id", c.workflowID))
		return false
	}

	// nil run from tests
	if run != nil {
		logger.InfoCtx(ctx, "Cycle workflow started",
			zap.String("workflow_id", run.GetID()),
			zap.String("run_id", run.GetRunID()))
	}
	return true
}

// Stop gracefully stops the scheduler
func (s *scheduler) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping cycle scheduler")
	s.stopOnce.Do(func() { close(s.stopChan) })

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Cycle scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Cycle scheduler stop interrupted by context timeout")
		return ctx.Err()
	}
}
