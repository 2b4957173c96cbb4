package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
)

// Grant represents the grants table - a time-bounded allocation of a grantor's produced rate
// against a collection or a set of its tokens. tdh and xtdh grants share the table, told apart by Kind.
type Grant struct {
	// ID is a ULID
	ID        string           `gorm:"column:id;primaryKey;type:varchar(26)"`
	Kind      domain.GrantKind `gorm:"column:kind;not null;type:varchar(8);index:idx_grants_kind_status_updated,priority:1"`
	GrantorID string           `gorm:"column:grantor_id;not null;type:varchar(100);index"`

	TargetChain     int64  `gorm:"column:target_chain;not null"`
	TargetContract  string `gorm:"column:target_contract;not null;type:varchar(42)"`
	TargetPartition string `gorm:"column:target_partition;not null;type:varchar(90);index"`
	// TokenMode is ALL for whole-collection grants and INCLUDE for explicit token lists
	TokenMode domain.GrantTokenMode `gorm:"column:token_mode;not null;type:varchar(8)"`
	// TargetTokens is the token list as requested (ids and ranges), null for ALL mode
	TargetTokens datatypes.JSON `gorm:"column:target_tokens;type:jsonb"`
	// TargetTokensDigest is the sha256 of the canonical JSON of the normalized token ids
	TargetTokensDigest *string `gorm:"column:target_tokens_digest;type:varchar(64)"`

	// ValidFrom and ValidTo are unix millis. A null ValidTo means open ended.
	ValidFrom *int64 `gorm:"column:valid_from"`
	ValidTo   *int64 `gorm:"column:valid_to"`

	Rate          float64            `gorm:"column:rate;not null"`
	Status        domain.GrantStatus `gorm:"column:status;not null;type:varchar(16);index:idx_grants_kind_status_updated,priority:2"`
	ErrorDetails  *string            `gorm:"column:error_details;type:text"`
	IsIrrevocable bool               `gorm:"column:is_irrevocable;not null;default:false"`
	// ReplacedGrantID points at the disabled grant this one replaces after rescaling
	ReplacedGrantID *string `gorm:"column:replaced_grant_id;type:varchar(26)"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();index:idx_grants_kind_status_updated,priority:3"`

	// Tokens is loaded for INCLUDE grants under review
	Tokens []string `gorm:"-"`
}

// TableName specifies the table name for the Grant model
func (Grant) TableName() string {
	return "grants"
}

// GrantToken represents the grant_tokens table - one row per token of an INCLUDE grant
type GrantToken struct {
	GrantID         string `gorm:"column:grant_id;primaryKey;type:varchar(26)"`
	TokenID         string `gorm:"column:token_id;primaryKey;type:varchar(78)"`
	TargetPartition string `gorm:"column:target_partition;not null;type:varchar(90)"`
}

// TableName specifies the table name for the GrantToken model
func (GrantToken) TableName() string {
	return "grant_tokens"
}

// GrantorCapacity represents the grantor_capacities table - the produced rate of a grantor,
// maintained by the identity subsystem
type GrantorCapacity struct {
	Kind         domain.GrantKind `gorm:"column:kind;primaryKey;type:varchar(8)"`
	GrantorID    string           `gorm:"column:grantor_id;primaryKey;type:varchar(100)"`
	ProducedRate float64          `gorm:"column:produced_rate;not null;default:0"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the GrantorCapacity model
func (GrantorCapacity) TableName() string {
	return "grantor_capacities"
}
