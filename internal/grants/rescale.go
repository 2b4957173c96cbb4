package grants

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// DisabledByRescaleMessage is the error_details of grants replaced by the rescaling pass
const DisabledByRescaleMessage = "Sum of active grants in this timespan exceeded grantors rate. Created replacement grants"

// scaleEpsilon ignores float noise when deciding whether a grant needs replacing
const scaleEpsilon = 1e-9

// Window is a half-open validity interval [From, To) in unix millis
type Window struct {
	From int64
	To   int64
}

// validityWindow resolves open ends: a missing start is fallback, a missing end is MAX_VALID_TO
func validityWindow(grant *schema.Grant, fallbackFrom int64) Window {
	w := Window{From: fallbackFrom, To: domain.MAX_VALID_TO}
	if grant.ValidFrom != nil {
		w.From = *grant.ValidFrom
	}
	if grant.ValidTo != nil {
		w.To = *grant.ValidTo
	}
	return w
}

// ComputeScaleFactors splits the grantor's timeline at every grant boundary and, for each segment,
// computes min(1, capacity/sum of the rates active in it). A grant's factor is the minimum over
// all segments it is active in. Grants with an empty window keep a factor of 1.
func ComputeScaleFactors(grants []schema.Grant, capacity float64) map[string]float64 {
	factors := make(map[string]float64, len(grants))

	windows := make(map[string]Window, len(grants))
	points := make([]int64, 0, len(grants)*2)
	for i := range grants {
		w := validityWindow(&grants[i], 0)
		factors[grants[i].ID] = 1
		if w.From >= w.To {
			continue
		}
		windows[grants[i].ID] = w
		points = append(points, w.From, w.To)
	}

	slices.Sort(points)
	points = slices.Compact(points)

	for i := 0; i+1 < len(points); i++ {
		start, end := points[i], points[i+1]

		var total float64
		var active []string
		for _, g := range grants {
			w, ok := windows[g.ID]
			if !ok || w.From >= end || w.To <= start {
				continue
			}
			total += g.Rate
			active = append(active, g.ID)
		}
		if total <= 0 {
			continue
		}

		scale := math.Min(1, capacity/total)
		for _, id := range active {
			factors[id] = math.Min(factors[id], scale)
		}
	}

	return factors
}

// RescaleResult summarises one rescaling pass
type RescaleResult struct {
	Grantors     int `json:"grantors"`
	Overflowing  int `json:"overflowing"`
	Replacements int `json:"replacements"`
	// SkippedGrantors have GRANTED grants but no recorded capacity
	SkippedGrantors int `json:"skipped_grantors"`
}

// Rescaler corrects grantors whose GRANTED grants exceed their capacity
//
//go:generate mockgen -source=rescale.go -destination=../mocks/grant_rescaler.go -package=mocks -mock_names=Rescaler=MockRescaler
type Rescaler interface {
	// ReReviewRates disables overflowing grants and inserts scaled-down replacements
	ReReviewRates(ctx context.Context, kind domain.GrantKind) (*RescaleResult, error)
}

type rescaler struct {
	store     store.Store
	capacity  CapacitySource
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewRescaler creates a Rescaler
func NewRescaler(st store.Store, capacity CapacitySource, publisher messaging.Publisher, clock adapter.Clock) Rescaler {
	return &rescaler{store: st, capacity: capacity, publisher: publisher, clock: clock}
}

func (r *rescaler) ReReviewRates(ctx context.Context, kind domain.GrantKind) (*RescaleResult, error) {
	if !domain.IsValidGrantKind(kind) {
		return nil, fmt.Errorf("%w: unknown grant kind %q", domain.ErrBadRequest, kind)
	}

	logger.InfoCtx(ctx, "Reviewing grant rates for overflows", zap.String("kind", string(kind)))

	result := &RescaleResult{}
	var replacements []schema.Grant

	err := r.store.WithTransaction(ctx, func(tx store.Store) error {
		granted, err := tx.ListGrantedGrants(ctx, kind)
		if err != nil {
			return err
		}

		now := r.clock.Now()
		for _, group := range groupByGrantor(granted) {
			result.Grantors++
			grantorID := group[0].GrantorID

			capacity, ok, err := r.capacity.ProducedRate(ctx, kind, grantorID)
			if err != nil {
				return fmt.Errorf("failed to get produced rate of %s: %w", grantorID, err)
			}
			if !ok {
				result.SkippedGrantors++
				logger.WarnCtx(ctx, "Grantor has granted grants but no recorded capacity, skipping",
					zap.String("grantor_id", grantorID),
					zap.Int("grants", len(group)))
				continue
			}

			factors := ComputeScaleFactors(group, capacity)
			overflowing := false
			for _, g := range group {
				factor := factors[g.ID]
				if factor >= 1-scaleEpsilon {
					continue
				}
				overflowing = true
				replacements = append(replacements, replacementGrant(g, factor, now))
			}
			if overflowing {
				result.Overflowing++
			}
		}

		if len(replacements) == 0 {
			return nil
		}

		return tx.DisableGrantsAndInsertReplacements(ctx, store.ReplaceGrantsInput{
			Replacements:    replacements,
			DisabledMessage: DisabledByRescaleMessage,
			Now:             now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rescale grants: %w", err)
	}

	result.Replacements = len(replacements)

	for i := range replacements {
		replacement := &replacements[i]
		event := messaging.Event{
			ID:         fmt.Sprintf("%s:%s:%s", replacement.Kind, *replacement.ReplacedGrantID, messaging.EventGrantRescaled),
			Type:       messaging.EventGrantRescaled,
			Partition:  replacement.TargetPartition,
			GrantID:    replacement.ID,
			GrantKind:  string(replacement.Kind),
			Message:    fmt.Sprintf("replaces %s", *replacement.ReplacedGrantID),
			OccurredAt: r.clock.Now(),
		}
		if err := r.publisher.Publish(ctx, event); err != nil {
			logger.WarnCtx(ctx, "Failed to publish rescale event", zap.String("grant_id", replacement.ID), zap.Error(err))
		}
	}

	logger.InfoCtx(ctx, "Grant rates reviewed",
		zap.String("kind", string(kind)),
		zap.Int("grantors", result.Grantors),
		zap.Int("overflowing", result.Overflowing),
		zap.Int("replacements", result.Replacements),
		zap.Int("skipped_grantors", result.SkippedGrantors))

	return result, nil
}

// groupByGrantor splits grants ordered by grantor into per-grantor slices
func groupByGrantor(grants []schema.Grant) [][]schema.Grant {
	var groups [][]schema.Grant
	index := make(map[string]int)
	for _, g := range grants {
		i, ok := index[g.GrantorID]
		if !ok {
			i = len(groups)
			index[g.GrantorID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], g)
	}
	return groups
}

func replacementGrant(original schema.Grant, factor float64, now time.Time) schema.Grant {
	replacedID := original.ID
	replacement := original
	replacement.ID = ulid.Make().String()
	replacement.Rate = original.Rate * factor
	replacement.Status = domain.GrantStatusGranted
	replacement.ErrorDetails = nil
	replacement.ReplacedGrantID = &replacedID
	replacement.Tokens = nil
	replacement.CreatedAt = now
	replacement.UpdatedAt = now
	return replacement
}
