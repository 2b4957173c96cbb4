package grants

import (
	"context"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/store"
)

// CapacitySource provides the total rate a grantor produces and may hand out
//
//go:generate mockgen -source=capacity.go -destination=../mocks/capacity_source.go -package=mocks -mock_names=CapacitySource=MockCapacitySource
type CapacitySource interface {
	// ProducedRate returns false when the grantor has no recorded capacity
	ProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string) (float64, bool, error)
}

type storeCapacitySource struct {
	store store.Store
}

// NewStoreCapacitySource reads capacities from the grantor_capacities table
func NewStoreCapacitySource(st store.Store) CapacitySource {
	return &storeCapacitySource{store: st}
}

func (s *storeCapacitySource) ProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string) (float64, bool, error) {
	return s.store.GetProducedRate(ctx, kind, grantorID)
}
