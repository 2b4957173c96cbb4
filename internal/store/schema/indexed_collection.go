package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-collection-indexer/internal/domain"
)

// IndexedCollection represents the indexed_collections table - one row per tracked collection partition
// holding its indexing state machine, block cursors, snapshot lock and lag telemetry
type IndexedCollection struct {
	// Partition is the primary key in format "<chain>:<contract>"
	Partition string `gorm:"column:partition;primaryKey;type:varchar(90)"`
	// Chain is the numeric EVM chain id
	Chain int64 `gorm:"column:chain;not null;uniqueIndex:uq_indexed_collections_chain_contract,priority:1"`
	// Contract is the lowercase contract address
	Contract string `gorm:"column:contract;not null;type:varchar(42);uniqueIndex:uq_indexed_collections_chain_contract,priority:2"`
	// Status is the current indexing state
	Status domain.IndexingStatus `gorm:"column:status;not null;type:varchar(32);index"`
	// Standard is the detected token standard
	Standard domain.CollectionStandard `gorm:"column:standard;not null;type:varchar(16);default:UNKNOWN"`
	// Adapter names a special-case integration (e.g., "cryptopunks")
	Adapter *string `gorm:"column:adapter;type:varchar(32)"`

	// IndexedSinceBlock is the block of the first successful snapshot, set once
	IndexedSinceBlock uint64 `gorm:"column:indexed_since_block;not null;default:0"`
	// LastIndexedBlock is the last block whose events have been applied
	LastIndexedBlock uint64 `gorm:"column:last_indexed_block;not null;default:0"`
	// SafeHeadBlock is the reorg-safe head the collection has been advanced to
	SafeHeadBlock uint64 `gorm:"column:safe_head_block;not null;default:0"`

	// SnapshotLockOwner is the opaque worker token holding the snapshot lock
	SnapshotLockOwner *string `gorm:"column:snapshot_lock_owner;type:varchar(64)"`
	// SnapshotLockAt is when the snapshot lock was taken
	SnapshotLockAt *time.Time `gorm:"column:snapshot_lock_at"`
	// SnapshotTargetBlock is the block the locked snapshot is taken at
	SnapshotTargetBlock *uint64 `gorm:"column:snapshot_target_block"`

	// LagBlocks is the distance between the chain head and the last indexed block
	LagBlocks uint64 `gorm:"column:lag_blocks;not null;default:0"`
	// LagSeconds is the age of the last indexed block
	LagSeconds int64 `gorm:"column:lag_seconds;not null;default:0"`
	// LastEventTime is the block time of the last applied event
	LastEventTime *time.Time `gorm:"column:last_event_time"`
	// ErrorMessage is the last snapshot failure or unindexable reason, cleared on success
	ErrorMessage *string `gorm:"column:error_message;type:text"`
	// CollectionName is the on-chain name()
	CollectionName *string `gorm:"column:collection_name;type:varchar(255)"`
	// TotalSupply is the number of owned tokens found by the last snapshot
	TotalSupply *int64 `gorm:"column:total_supply"`
	// SnapshotStats records how the last snapshot enumerated the collection
	SnapshotStats datatypes.JSON `gorm:"column:snapshot_stats;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the IndexedCollection model
func (IndexedCollection) TableName() string {
	return "indexed_collections"
}
