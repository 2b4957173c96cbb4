package grants_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/grants"
	"github.com/feral-file/ff-collection-indexer/internal/messaging"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

func grantedGrant(id, grantor string, rate float64, from int64, to *int64) schema.Grant {
	return schema.Grant{
		ID:              id,
		Kind:            domain.GrantKindTDH,
		GrantorID:       grantor,
		TargetChain:     int64(domain.ChainEthereumMainnet),
		TargetContract:  testContract,
		TargetPartition: string(testPartition),
		TokenMode:       domain.GrantTokenModeAll,
		ValidFrom:       &from,
		ValidTo:         to,
		Rate:            rate,
		Status:          domain.GrantStatusGranted,
	}
}

func TestComputeScaleFactors(t *testing.T) {
	tests := []struct {
		name     string
		grants   []schema.Grant
		capacity float64
		want     map[string]float64
	}{
		{
			name: "three fully overlapping grants over capacity",
			grants: []schema.Grant{
				grantedGrant("a", testGrantor, 50, 1000, nil),
				grantedGrant("b", testGrantor, 30, 1000, nil),
				grantedGrant("c", testGrantor, 40, 1000, nil),
			},
			capacity: 100,
			want:     map[string]float64{"a": 100.0 / 120, "b": 100.0 / 120, "c": 100.0 / 120},
		},
		{
			name: "disjoint windows fit individually",
			grants: []schema.Grant{
				grantedGrant("a", testGrantor, 80, 1000, ptr(int64(2000))),
				grantedGrant("b", testGrantor, 80, 2000, ptr(int64(3000))),
			},
			capacity: 100,
			want:     map[string]float64{"a": 1, "b": 1},
		},
		{
			name: "worst segment decides",
			grants: []schema.Grant{
				grantedGrant("a", testGrantor, 60, 1000, ptr(int64(3000))),
				grantedGrant("b", testGrantor, 60, 2000, ptr(int64(4000))),
				grantedGrant("c", testGrantor, 40, 3500, ptr(int64(5000))),
			},
			capacity: 100,
			want:     map[string]float64{"a": 100.0 / 120, "b": 100.0 / 120, "c": 1},
		},
		{
			name: "empty window is ignored",
			grants: []schema.Grant{
				grantedGrant("a", testGrantor, 500, 2000, ptr(int64(2000))),
				grantedGrant("b", testGrantor, 50, 1000, nil),
			},
			capacity: 100,
			want:     map[string]float64{"a": 1, "b": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grants.ComputeScaleFactors(tt.grants, tt.capacity)
			require.Len(t, got, len(tt.want))
			for id, want := range tt.want {
				assert.InDelta(t, want, got[id], 1e-9, id)
			}
		})
	}
}

func TestRescaler_ReplacesOverflowingGrants(t *testing.T) {
	tm := setupGrantMocks(t)
	ctx := context.Background()
	tm.expectTransactions()

	granted := []schema.Grant{
		grantedGrant("01HGRANT0000000000000000D1", testGrantor, 50, 1000, nil),
		grantedGrant("01HGRANT0000000000000000D2", testGrantor, 30, 1000, nil),
		grantedGrant("01HGRANT0000000000000000D3", testGrantor, 40, 1000, nil),
		grantedGrant("01HGRANT0000000000000000D4", "grantor-2", 10, 1000, nil),
		grantedGrant("01HGRANT0000000000000000D5", "grantor-3", 10, 1000, nil),
	}
	tm.store.EXPECT().ListGrantedGrants(gomock.Any(), domain.GrantKindTDH).Return(granted, nil)
	tm.capacity.EXPECT().ProducedRate(gomock.Any(), domain.GrantKindTDH, testGrantor).Return(100.0, true, nil)
	tm.capacity.EXPECT().ProducedRate(gomock.Any(), domain.GrantKindTDH, "grantor-2").Return(50.0, true, nil)
	tm.capacity.EXPECT().ProducedRate(gomock.Any(), domain.GrantKindTDH, "grantor-3").Return(0.0, false, nil)
	tm.store.EXPECT().DisableGrantsAndInsertReplacements(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input store.ReplaceGrantsInput) error {
			assert.Equal(t, grants.DisabledByRescaleMessage, input.DisabledMessage)
			assert.Equal(t, testNow, input.Now)
			require.Len(t, input.Replacements, 3)

			wantRates := map[string]float64{
				"01HGRANT0000000000000000D1": 41.6667,
				"01HGRANT0000000000000000D2": 25,
				"01HGRANT0000000000000000D3": 33.3333,
			}
			var sum float64
			for _, r := range input.Replacements {
				require.NotNil(t, r.ReplacedGrantID)
				assert.NotEqual(t, *r.ReplacedGrantID, r.ID)
				assert.Len(t, r.ID, 26)
				assert.InDelta(t, wantRates[*r.ReplacedGrantID], r.Rate, 1e-3)
				assert.Equal(t, domain.GrantStatusGranted, r.Status)
				assert.Equal(t, int64(1000), *r.ValidFrom)
				assert.Nil(t, r.ErrorDetails)
				sum += r.Rate
			}
			assert.InDelta(t, 100, sum, 1e-9)
			return nil
		})
	tm.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event messaging.Event) error {
			assert.Equal(t, messaging.EventGrantRescaled, event.Type)
			return nil
		}).Times(3)

	result, err := grants.NewRescaler(tm.store, tm.capacity, tm.publisher, tm.clock).ReReviewRates(ctx, domain.GrantKindTDH)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Grantors)
	assert.Equal(t, 1, result.Overflowing)
	assert.Equal(t, 3, result.Replacements)
	assert.Equal(t, 1, result.SkippedGrantors)
}

func TestRescaler_NothingToDo(t *testing.T) {
	tm := setupGrantMocks(t)
	tm.expectTransactions()

	tm.store.EXPECT().ListGrantedGrants(gomock.Any(), domain.GrantKindXTDH).Return(nil, nil)

	result, err := grants.NewRescaler(tm.store, tm.capacity, tm.publisher, tm.clock).ReReviewRates(context.Background(), domain.GrantKindXTDH)
	require.NoError(t, err)
	assert.Zero(t, result.Replacements)
}

func TestRescaler_CapacityErrorRollsBack(t *testing.T) {
	tm := setupGrantMocks(t)
	tm.expectTransactions()

	tm.store.EXPECT().ListGrantedGrants(gomock.Any(), domain.GrantKindTDH).Return([]schema.Grant{
		grantedGrant("01HGRANT0000000000000000E1", testGrantor, 200, 1000, nil),
	}, nil)
	tm.capacity.EXPECT().ProducedRate(gomock.Any(), domain.GrantKindTDH, testGrantor).Return(0.0, false, errors.New("timeout"))

	_, err := grants.NewRescaler(tm.store, tm.capacity, tm.publisher, tm.clock).ReReviewRates(context.Background(), domain.GrantKindTDH)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
