package grants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// DeniedError is an expected validation outcome; the grant is marked FAILED with its message
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

func deny(format string, args ...any) error {
	return &DeniedError{Message: fmt.Sprintf(format, args...)}
}

// Config holds the grant pipeline tunables
type Config struct {
	// ReviewBudget bounds the wall-clock time of one Handle call
	ReviewBudget time.Duration
}

// ReviewResult summarises one review run
type ReviewResult struct {
	Reviewed int `json:"reviewed"`
	Granted  int `json:"granted"`
	Failed   int `json:"failed"`
	Pending  int `json:"pending"`
	// StopReason is one of "empty", "repeated", "budget" or "cancelled"
	StopReason string `json:"stop_reason"`
}

const (
	stopEmpty     = "empty"
	stopRepeated  = "repeated"
	stopBudget    = "budget"
	stopCancelled = "cancelled"
)

// Reviewer drains the queue of pending grants of one kind
//
//go:generate mockgen -source=review.go -destination=../mocks/grant_reviewer.go -package=mocks -mock_names=Reviewer=MockReviewer
type Reviewer interface {
	// Handle reviews pending grants oldest first, one transaction per grant
	Handle(ctx context.Context, kind domain.GrantKind) (*ReviewResult, error)
}

type reviewer struct {
	store     store.Store
	capacity  CapacitySource
	publisher messaging.Publisher
	clock     adapter.Clock
	config    Config
}

// NewReviewer creates a Reviewer
func NewReviewer(st store.Store, capacity CapacitySource, publisher messaging.Publisher, clock adapter.Clock, config Config) Reviewer {
	if config.ReviewBudget <= 0 {
		config.ReviewBudget = 10 * time.Minute
	}
	return &reviewer{
		store:     st,
		capacity:  capacity,
		publisher: publisher,
		clock:     clock,
		config:    config,
	}
}

type reviewDecision int

const (
	decisionPending reviewDecision = iota
	decisionGranted
	decisionFailed
)

func (r *reviewer) Handle(ctx context.Context, kind domain.GrantKind) (*ReviewResult, error) {
	if !domain.IsValidGrantKind(kind) {
		return nil, fmt.Errorf("%w: unknown grant kind %q", domain.ErrBadRequest, kind)
	}

	logger.InfoCtx(ctx, "Checking for pending grants in the queue", zap.String("kind", string(kind)))

	startedAt := r.clock.Now()
	seen := make(map[string]struct{})
	result := &ReviewResult{}

	for {
		if ctx.Err() != nil {
			result.StopReason = stopCancelled
			break
		}
		if r.clock.Since(startedAt) >= r.config.ReviewBudget {
			result.StopReason = stopBudget
			break
		}

		var (
			grant    *schema.Grant
			decision reviewDecision
			message  string
			stop     string
		)
		err := r.store.WithTransaction(ctx, func(tx store.Store) error {
			var err error
			grant, decision, message, stop, err = r.attemptOne(ctx, tx, kind, seen)
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to review grant: %w", err)
		}
		if stop != "" {
			result.StopReason = stop
			break
		}

		result.Reviewed++
		switch decision {
		case decisionGranted:
			result.Granted++
			r.publish(ctx, messaging.EventGrantGranted, grant, "")
		case decisionFailed:
			result.Failed++
			r.publish(ctx, messaging.EventGrantFailed, grant, message)
		case decisionPending:
			result.Pending++
		}
	}

	logger.InfoCtx(ctx, "Stopped looking for pending grants",
		zap.String("kind", string(kind)),
		zap.String("stop_reason", result.StopReason),
		zap.Int("reviewed", result.Reviewed),
		zap.Int("granted", result.Granted),
		zap.Int("failed", result.Failed),
		zap.Int("pending", result.Pending))

	return result, nil
}

// attemptOne locks and reviews the oldest pending grant inside tx
func (r *reviewer) attemptOne(
	ctx context.Context,
	tx store.Store,
	kind domain.GrantKind,
	seen map[string]struct{},
) (*schema.Grant, reviewDecision, string, string, error) {
	now := r.clock.Now()

	grant, err := tx.LockOldestPendingGrant(ctx, kind, now)
	if err != nil {
		return nil, 0, "", "", err
	}
	if grant == nil {
		logger.InfoCtx(ctx, "Found no pending grants in the queue", zap.String("kind", string(kind)))
		return nil, 0, "", stopEmpty, nil
	}
	if _, ok := seen[grant.ID]; ok {
		logger.InfoCtx(ctx, "Found reoccurring grant in queue, stopping for now", zap.String("grant_id", grant.ID))
		return nil, 0, "", stopRepeated, nil
	}
	seen[grant.ID] = struct{}{}

	logger.InfoCtx(ctx, "Reviewing pending grant",
		zap.String("grant_id", grant.ID),
		zap.String("grantor_id", grant.GrantorID),
		zap.String("partition", grant.TargetPartition))

	decision, err := r.validate(ctx, tx, grant, now)

	var denied *DeniedError
	if errors.As(err, &denied) {
		message := denied.Message
		err := tx.UpdateGrantStatus(ctx, store.UpdateGrantStatusInput{
			ID:           grant.ID,
			Status:       domain.GrantStatusFailed,
			ErrorDetails: &message,
			Now:          now,
		})
		return grant, decisionFailed, message, "", err
	}
	if err != nil {
		return nil, 0, "", "", err
	}

	switch decision {
	case decisionGranted:
		validFrom := now.UnixMilli()
		if grant.ValidFrom != nil {
			validFrom = *grant.ValidFrom
		}
		err = tx.UpdateGrantStatus(ctx, store.UpdateGrantStatusInput{
			ID:        grant.ID,
			Status:    domain.GrantStatusGranted,
			ValidFrom: &validFrom,
			Now:       now,
		})
	default:
		// rewriting PENDING moves the grant to the back of the queue
		err = tx.UpdateGrantStatus(ctx, store.UpdateGrantStatusInput{
			ID:     grant.ID,
			Status: domain.GrantStatusPending,
			Now:    now,
		})
	}
	return grant, decision, "", "", err
}

// validate decides the fate of a grant; denials are returned as *DeniedError
func (r *reviewer) validate(ctx context.Context, tx store.Store, grant *schema.Grant, now time.Time) (reviewDecision, error) {
	nowMillis := now.UnixMilli()
	if grant.ValidTo != nil && *grant.ValidTo < nowMillis {
		return 0, deny("Grant validation end is in the past")
	}

	partition := domain.Partition(grant.TargetPartition)
	info, err := tx.FindCollectionInfo(ctx, partition)
	if err != nil {
		return 0, fmt.Errorf("failed to find collection info: %w", err)
	}
	if info == nil {
		return 0, deny("Collection not indexed")
	}

	switch info.Status {
	case domain.IndexingStatusErrorSnapshotting, domain.IndexingStatusUnindexable:
		reason := ""
		if info.ErrorMessage != nil {
			reason = *info.ErrorMessage
		}
		return 0, deny("Collection indexing failed. %s", reason)
	case domain.IndexingStatusWaitingForSnapshotting, domain.IndexingStatusSnapshotting:
		return decisionPending, nil
	case domain.IndexingStatusLiveTailing:
	default:
		return 0, fmt.Errorf("unknown indexing status %q", info.Status)
	}

	if len(grant.Tokens) > 0 {
		indexed, err := tx.GetAllTokenNumbersForCollection(ctx, partition)
		if err != nil {
			return 0, fmt.Errorf("failed to get indexed tokens: %w", err)
		}
		if missing, ok := firstMissingToken(grant.Tokens, indexed); ok {
			return 0, deny("One or more of the tokens do not exist in the collection. Example: %s", missing)
		}
	}

	total, ok, err := r.capacity.ProducedRate(ctx, grant.Kind, grant.GrantorID)
	if err != nil {
		return 0, fmt.Errorf("failed to get produced rate: %w", err)
	}
	if !ok {
		total = 0
	}

	window := validityWindow(grant, nowMillis)
	spent, err := tx.GetGrantorSpentRate(ctx, store.SpentRateQuery{
		Kind:      grant.Kind,
		GrantorID: grant.GrantorID,
		ValidFrom: window.From,
		ValidTo:   window.To,
		ExcludeID: grant.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get spent rate: %w", err)
	}

	if total-spent < grant.Rate {
		return 0, deny("Grant too large. Not enough capacity in grantors %s rate", rateLabel(grant.Kind))
	}

	return decisionGranted, nil
}

func (r *reviewer) publish(ctx context.Context, eventType messaging.EventType, grant *schema.Grant, message string) {
	event := messaging.Event{
		ID:         fmt.Sprintf("%s:%s:%s", grant.Kind, grant.ID, eventType),
		Type:       eventType,
		Partition:  grant.TargetPartition,
		GrantID:    grant.ID,
		GrantKind:  string(grant.Kind),
		Message:    message,
		OccurredAt: r.clock.Now(),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish grant event",
			zap.String("grant_id", grant.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func firstMissingToken(requested, indexed []string) (string, bool) {
	set := make(map[string]struct{}, len(indexed))
	for _, tokenID := range indexed {
		set[tokenID] = struct{}{}
	}
	for _, tokenID := range requested {
		if _, ok := set[tokenID]; !ok {
			return tokenID, true
		}
	}
	return "", false
}

func rateLabel(kind domain.GrantKind) string {
	if kind == domain.GrantKindXTDH {
		return "xTDH"
	}
	return "TDH"
}
