package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// =============================================================================
// Grants
// =============================================================================

// InsertGrant inserts a grant and, for INCLUDE grants, one grant_tokens row per token
func (s *pgStore) InsertGrant(ctx context.Context, grant *schema.Grant, tokens []string) error {
	if grant == nil {
		return errors.New("grant is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(grant).Error; err != nil {
			return fmt.Errorf("failed to insert grant: %w", err)
		}

		if len(tokens) == 0 {
			return nil
		}

		rows := make([]schema.GrantToken, 0, len(tokens))
		for _, tokenID := range tokens {
			rows = append(rows, schema.GrantToken{
				GrantID:         grant.ID,
				TokenID:         tokenID,
				TargetPartition: grant.TargetPartition,
			})
		}

		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(rows, calculateSafeBatchSize(0, 3)).Error
		if err != nil {
			return fmt.Errorf("failed to insert grant tokens: %w", err)
		}
		return nil
	})
}

// GetGrant retrieves a grant of a kind with its tokens
func (s *pgStore) GetGrant(ctx context.Context, kind domain.GrantKind, id string) (*schema.Grant, error) {
	var grant schema.Grant
	err := s.db.WithContext(ctx).
		Where("id = ? AND kind = ?", id, kind).
		Take(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get grant: %w", err)
	}

	if err := s.loadGrantTokens(ctx, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *pgStore) loadGrantTokens(ctx context.Context, grant *schema.Grant) error {
	if grant.TokenMode != domain.GrantTokenModeInclude {
		return nil
	}

	var tokens []string
	err := s.db.WithContext(ctx).
		Model(&schema.GrantToken{}).
		Where("grant_id = ?", grant.ID).
		Order("token_id ASC").
		Pluck("token_id", &tokens).Error
	if err != nil {
		return fmt.Errorf("failed to load grant tokens: %w", err)
	}

	grant.Tokens = tokens
	return nil
}

// SearchGrants retrieves a page of grants matching the filter and the total count
func (s *pgStore) SearchGrants(ctx context.Context, filter GrantFilter) ([]schema.Grant, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Grant{}).Where("kind = ?", filter.Kind)

	if filter.GrantorID != nil {
		query = query.Where("grantor_id = ?", *filter.GrantorID)
	}
	if filter.Chain != nil {
		query = query.Where("target_chain = ?", *filter.Chain)
	}
	if filter.Contract != nil {
		query = query.Where("target_contract = ?", domain.NormalizeAddress(*filter.Contract))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count grants: %w", err)
	}

	sort := filter.Sort
	if !IsValidGrantSort(sort) {
		sort = GrantSortCreatedAt
	}
	desc := !strings.EqualFold(filter.SortDirection, "asc")

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var grants []schema.Grant
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: sort}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Limit(limit).
		Offset(filter.Offset).
		Find(&grants).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search grants: %w", err)
	}

	return grants, total, nil
}

// LockOldestPendingGrant locks the oldest PENDING grant of a kind and moves it to the back of the queue
func (s *pgStore) LockOldestPendingGrant(ctx context.Context, kind domain.GrantKind, now time.Time) (*schema.Grant, error) {
	var grants []schema.Grant
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("kind = ? AND status = ?", kind, domain.GrantStatusPending).
		Order("updated_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending grant: %w", err)
	}

	if len(grants) == 0 {
		return nil, nil
	}
	grant := grants[0]

	err = s.db.WithContext(ctx).
		Model(&schema.Grant{}).
		Where("id = ?", grant.ID).
		Update("updated_at", now).Error
	if err != nil {
		return nil, fmt.Errorf("failed to touch pending grant: %w", err)
	}
	grant.UpdatedAt = now

	if err := s.loadGrantTokens(ctx, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// UpdateGrantStatus sets the status, error details and optionally the start of validity of a grant
func (s *pgStore) UpdateGrantStatus(ctx context.Context, input UpdateGrantStatusInput) error {
	updates := map[string]interface{}{
		"status":        input.Status,
		"error_details": input.ErrorDetails,
		"updated_at":    input.Now,
	}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}

	result := s.db.WithContext(ctx).
		Model(&schema.Grant{}).
		Where("id = ?", input.ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update grant status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrGrantNotFound, input.ID)
	}
	return nil
}

// GetGrantorSpentRate sums the rates of the grantor's GRANTED grants whose validity overlaps the window
func (s *pgStore) GetGrantorSpentRate(ctx context.Context, query SpentRateQuery) (float64, error) {
	var spent float64
	err := s.db.WithContext(ctx).
		Model(&schema.Grant{}).
		Select("COALESCE(SUM(rate), 0)").
		Where("kind = ? AND grantor_id = ? AND status = ? AND id <> ?",
			query.Kind, query.GrantorID, domain.GrantStatusGranted, query.ExcludeID).
		Where("COALESCE(valid_from, 0) < ? AND COALESCE(valid_to, ?) > ?",
			query.ValidTo, domain.MAX_VALID_TO, query.ValidFrom).
		Scan(&spent).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get grantor spent rate: %w", err)
	}
	return spent, nil
}

// ListGrantedGrants retrieves every GRANTED grant of a kind
func (s *pgStore) ListGrantedGrants(ctx context.Context, kind domain.GrantKind) ([]schema.Grant, error) {
	var grants []schema.Grant
	err := s.db.WithContext(ctx).
		Where("kind = ? AND status = ?", kind, domain.GrantStatusGranted).
		Order("grantor_id ASC").
		Order("valid_from ASC").
		Order("id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list granted grants: %w", err)
	}
	return grants, nil
}

// DisableGrantsAndInsertReplacements swaps each replaced grant for its replacement in one transaction
func (s *pgStore) DisableGrantsAndInsertReplacements(ctx context.Context, input ReplaceGrantsInput) error {
	if len(input.Replacements) == 0 {
		return nil
	}

	replacedIDs := make([]string, 0, len(input.Replacements))
	for _, replacement := range input.Replacements {
		if replacement.ReplacedGrantID == nil || *replacement.ReplacedGrantID == "" {
			return fmt.Errorf("replacement grant %s has no replaced grant id", replacement.ID)
		}
		replacedIDs = append(replacedIDs, *replacement.ReplacedGrantID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(input.Replacements, calculateSafeBatchSize(0, 19)).Error; err != nil {
			return fmt.Errorf("failed to insert replacement grants: %w", err)
		}

		result := tx.Model(&schema.Grant{}).
			Where("id IN ? AND status = ?", replacedIDs, domain.GrantStatusGranted).
			Updates(map[string]interface{}{
				"status":        domain.GrantStatusDisabled,
				"error_details": input.DisabledMessage,
				"updated_at":    input.Now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to disable replaced grants: %w", result.Error)
		}
		if result.RowsAffected != int64(len(replacedIDs)) {
			return fmt.Errorf("expected to disable %d grants, disabled %d", len(replacedIDs), result.RowsAffected)
		}

		for _, replacement := range input.Replacements {
			err := tx.Model(&schema.GrantToken{}).
				Where("grant_id = ?", *replacement.ReplacedGrantID).
				Update("grant_id", replacement.ID).Error
			if err != nil {
				return fmt.Errorf("failed to move tokens to replacement grant: %w", err)
			}
		}

		return nil
	})
}

// =============================================================================
// Capacities
// =============================================================================

// GetProducedRate retrieves the produced rate of a grantor
func (s *pgStore) GetProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string) (float64, bool, error) {
	var capacity schema.GrantorCapacity
	err := s.db.WithContext(ctx).
		Where("kind = ? AND grantor_id = ?", kind, grantorID).
		Take(&capacity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get produced rate: %w", err)
	}
	return capacity.ProducedRate, true, nil
}

// UpsertProducedRate records the produced rate of a grantor
func (s *pgStore) UpsertProducedRate(ctx context.Context, kind domain.GrantKind, grantorID string, rate float64) error {
	row := schema.GrantorCapacity{
		Kind:         kind,
		GrantorID:    grantorID,
		ProducedRate: rate,
		UpdatedAt:    time.Now(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "grantor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"produced_rate", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert produced rate: %w", err)
	}
	return nil
}
