package grants

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/adapter"
	"github.com/feral-file/ff-collection-indexer/internal/domain"
	"github.com/feral-file/ff-collection-indexer/internal/logger"
	"github.com/feral-file/ff-collection-indexer/internal/store"
	"github.com/feral-file/ff-collection-indexer/internal/store/schema"
)

// MaxGrantTokens caps the number of token ids a grant may list after expanding ranges
const MaxGrantTokens = 100_000

// CreateGrantInput is a grant creation request
type CreateGrantInput struct {
	Kind           domain.GrantKind
	GrantorID      string
	TargetChain    domain.ChainID
	TargetContract string
	// TargetTokens lists decimal ids and inclusive ranges such as "1-5"; empty means the whole collection
	TargetTokens []string
	// ValidTo is unix millis, nil for open ended
	ValidTo       *int64
	Rate          float64
	IsIrrevocable bool
}

// Creator registers new PENDING grants
//
//go:generate mockgen -source=create.go -destination=../mocks/grant_creator.go -package=mocks -mock_names=Creator=MockCreator
type Creator interface {
	Create(ctx context.Context, input CreateGrantInput) (*schema.Grant, error)
}

type creator struct {
	store store.Store
	json  adapter.JSON
	jcs   adapter.JCS
	clock adapter.Clock
}

// NewCreator creates a Creator
func NewCreator(st store.Store, json adapter.JSON, jcs adapter.JCS, clock adapter.Clock) Creator {
	return &creator{store: st, json: json, jcs: jcs, clock: clock}
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrBadRequest, fmt.Sprintf(format, args...))
}

func (c *creator) Create(ctx context.Context, input CreateGrantInput) (*schema.Grant, error) {
	if input.IsIrrevocable {
		return nil, badRequest("Irrevocable grants are not supported yet")
	}
	if !domain.IsValidGrantKind(input.Kind) {
		return nil, badRequest("unknown grant kind %q", input.Kind)
	}
	if strings.TrimSpace(input.GrantorID) == "" {
		return nil, badRequest("grantor_id is required")
	}
	if input.TargetChain <= 0 {
		return nil, badRequest("target_chain must be positive")
	}
	if !common.IsHexAddress(input.TargetContract) {
		return nil, badRequest("target_contract %q is not an address", input.TargetContract)
	}
	if input.Rate <= 0 {
		return nil, badRequest("rate must be positive")
	}

	now := c.clock.Now()
	if input.ValidTo != nil && *input.ValidTo <= now.UnixMilli() {
		return nil, badRequest("valid_to must be in the future")
	}

	tokens, err := NormalizeTokens(input.TargetTokens)
	if err != nil {
		return nil, err
	}

	contract := domain.NormalizeAddress(input.TargetContract)
	collection, err := c.store.UpsertOrSelectCollection(ctx, input.TargetChain, contract)
	if err != nil {
		return nil, fmt.Errorf("failed to register collection: %w", err)
	}
	if collection.Status.IsFailed() {
		return nil, badRequest("There is a problem snapshotting given address. Please let the dev team know.")
	}

	grant := &schema.Grant{
		ID:              ulid.Make().String(),
		Kind:            input.Kind,
		GrantorID:       input.GrantorID,
		TargetChain:     int64(input.TargetChain),
		TargetContract:  contract,
		TargetPartition: collection.Partition,
		TokenMode:       domain.GrantTokenModeAll,
		ValidTo:         input.ValidTo,
		Rate:            input.Rate,
		Status:          domain.GrantStatusPending,
		IsIrrevocable:   input.IsIrrevocable,
		CreatedAt:       now,
		UpdatedAt:       now,
		Tokens:          tokens,
	}

	if len(tokens) > 0 {
		requested, err := c.json.Marshal(input.TargetTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal target tokens: %w", err)
		}
		digest, err := c.tokensDigest(tokens)
		if err != nil {
			return nil, err
		}
		grant.TokenMode = domain.GrantTokenModeInclude
		grant.TargetTokens = datatypes.JSON(requested)
		grant.TargetTokensDigest = &digest
	}

	err = c.store.WithTransaction(ctx, func(tx store.Store) error {
		return tx.InsertGrant(ctx, grant, tokens)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert grant: %w", err)
	}

	logger.InfoCtx(ctx, "Grant created",
		zap.String("grant_id", grant.ID),
		zap.String("kind", string(grant.Kind)),
		zap.String("grantor_id", grant.GrantorID),
		zap.String("partition", grant.TargetPartition),
		zap.Int("tokens", len(tokens)))

	return grant, nil
}

// tokensDigest hashes the canonical JSON of the normalized token ids
func (c *creator) tokensDigest(tokens []string) (string, error) {
	raw, err := c.json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tokens: %w", err)
	}
	canonical, err := c.jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize tokens: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// NormalizeTokens expands ranges and returns distinct decimal ids in ascending numeric order
func NormalizeTokens(raw []string) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []*big.Int

	add := func(id *big.Int) error {
		key := id.String()
		if _, ok := seen[key]; ok {
			return nil
		}
		if len(ids) >= MaxGrantTokens {
			return badRequest("a grant may target at most %d tokens", MaxGrantTokens)
		}
		seen[key] = struct{}{}
		ids = append(ids, id)
		return nil
	}

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		from, to, isRange := strings.Cut(entry, "-")
		if !isRange {
			id, err := parseTokenID(entry)
			if err != nil {
				return nil, err
			}
			if err := add(id); err != nil {
				return nil, err
			}
			continue
		}

		start, err := parseTokenID(from)
		if err != nil {
			return nil, err
		}
		end, err := parseTokenID(to)
		if err != nil {
			return nil, err
		}
		if start.Cmp(end) > 0 {
			return nil, badRequest("token range %q is reversed", entry)
		}
		span := new(big.Int).Sub(end, start)
		if span.Cmp(big.NewInt(MaxGrantTokens)) >= 0 {
			return nil, badRequest("token range %q is too large", entry)
		}
		for id := new(big.Int).Set(start); id.Cmp(end) <= 0; id = new(big.Int).Add(id, big.NewInt(1)) {
			if err := add(id); err != nil {
				return nil, err
			}
		}
	}

	slices.SortFunc(ids, func(a, b *big.Int) int { return a.Cmp(b) })

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out, nil
}

func parseTokenID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, badRequest("invalid token id %q", s)
	}
	return id, nil
}
