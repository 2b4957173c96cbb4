package schema

import (
	"time"
)

// CollectionOwner represents the collection_owners table - the current owner of every token
// of an indexed collection. Rows are superseded in place.
type CollectionOwner struct {
	Partition string `gorm:"column:partition;primaryKey;type:varchar(90)"`
	// TokenID is the decimal token id
	TokenID string `gorm:"column:token_id;primaryKey;type:varchar(78)"`
	// Owner is the lowercase owner address
	Owner string `gorm:"column:owner;not null;type:varchar(42);index"`
	// SinceBlock is the block the owner acquired the token at
	SinceBlock uint64 `gorm:"column:since_block;not null"`
	// SinceTime is the block time the owner acquired the token at
	SinceTime time.Time `gorm:"column:since_time;not null"`
	// SaleEpochStartBlock is the block of the sale that started the current ownership epoch
	SaleEpochStartBlock *uint64 `gorm:"column:sale_epoch_start_block"`
	// SaleEpochTx is the transaction of the sale that started the current ownership epoch
	SaleEpochTx *string `gorm:"column:sale_epoch_tx;type:varchar(66)"`
	// FreeTransfersSinceEpoch counts non-sale transfers since the last sale
	FreeTransfersSinceEpoch int `gorm:"column:free_transfers_since_epoch;not null;default:0"`
	UpdatedAt               time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the CollectionOwner model
func (CollectionOwner) TableName() string {
	return "collection_owners"
}

// CollectionOwnerHistory represents the collection_owner_history table - an append-only log
// of every ownership acquisition, keyed by the event that caused it
type CollectionOwnerHistory struct {
	Partition   string `gorm:"column:partition;primaryKey;type:varchar(90)"`
	TokenID     string `gorm:"column:token_id;primaryKey;type:varchar(78)"`
	BlockNumber uint64 `gorm:"column:block_number;primaryKey"`
	LogIndex    uint   `gorm:"column:log_index;primaryKey"`
	Owner       string `gorm:"column:owner;not null;type:varchar(42)"`
	// SinceTime is the block time of the acquisition
	SinceTime time.Time `gorm:"column:since_time;not null"`
	// AcquiredAsSale is 1 when the acquisition was a monetary sale
	AcquiredAsSale          int       `gorm:"column:acquired_as_sale;not null;default:0"`
	TxHash                  *string   `gorm:"column:tx_hash;type:varchar(66)"`
	SaleEpochStartBlock     *uint64   `gorm:"column:sale_epoch_start_block"`
	SaleEpochTx             *string   `gorm:"column:sale_epoch_tx;type:varchar(66)"`
	FreeTransfersSinceEpoch int       `gorm:"column:free_transfers_since_epoch;not null;default:0"`
	CreatedAt               time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the CollectionOwnerHistory model
func (CollectionOwnerHistory) TableName() string {
	return "collection_owner_history"
}
