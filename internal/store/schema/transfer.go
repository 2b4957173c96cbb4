package schema

import (
	"time"
)

// CollectionTransfer represents the collection_transfers table - the append-only ledger
// of transfers applied by live tailing
type CollectionTransfer struct {
	Partition   string `gorm:"column:partition;primaryKey;type:varchar(90)"`
	BlockNumber uint64 `gorm:"column:block_number;primaryKey"`
	LogIndex    uint   `gorm:"column:log_index;primaryKey"`
	TxHash      string `gorm:"column:tx_hash;not null;type:varchar(66);index"`
	TokenID     string `gorm:"column:token_id;not null;type:varchar(78)"`
	FromAddress string `gorm:"column:from_address;not null;type:varchar(42)"`
	ToAddress   string `gorm:"column:to_address;not null;type:varchar(42)"`
	Amount      int64  `gorm:"column:amount;not null;default:1"`
	// Time is the block time
	Time time.Time `gorm:"column:time;not null"`
	// IsMonetarySale is nil when the sale detector could not classify the transaction
	IsMonetarySale *bool `gorm:"column:is_monetary_sale"`
	// SaleEpochStart is true when this transfer opened a new sale epoch
	SaleEpochStart bool      `gorm:"column:sale_epoch_start;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the CollectionTransfer model
func (CollectionTransfer) TableName() string {
	return "collection_transfers"
}
