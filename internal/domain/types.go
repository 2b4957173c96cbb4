package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ChainID is the numeric EVM chain id (1 for Ethereum mainnet)
type ChainID int64

const (
	ChainEthereumMainnet ChainID = 1
	ChainEthereumSepolia ChainID = 11155111
)

// Partition identifies one tracked collection in format "<chain>:<contract>" (e.g., "1:0xabc...")
type Partition string

// NewPartition builds a partition key from a chain id and a contract address.
// The contract address is lowercased.
func NewPartition(chain ChainID, contract string) Partition {
	return Partition(fmt.Sprintf("%d:%s", chain, NormalizeAddress(contract)))
}

// Parse splits the partition into chain id and contract address
func (p Partition) Parse() (ChainID, string, error) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("%w: %s", ErrInvalidPartition, p)
	}

	chain, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || chain <= 0 {
		return 0, "", fmt.Errorf("%w: %s", ErrInvalidPartition, p)
	}

	if !common.IsHexAddress(parts[1]) {
		return 0, "", fmt.Errorf("%w: %s", ErrInvalidPartition, p)
	}

	return ChainID(chain), parts[1], nil
}

// Valid reports whether the partition is well formed
func (p Partition) Valid() bool {
	_, _, err := p.Parse()
	return err == nil
}

func (p Partition) String() string {
	return string(p)
}

// NormalizeAddress lowercases and trims an EVM address
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IndexingStatus is the state of a collection's indexing state machine
type IndexingStatus string

const (
	IndexingStatusWaitingForSnapshotting IndexingStatus = "WAITING_FOR_SNAPSHOTTING"
	IndexingStatusSnapshotting           IndexingStatus = "SNAPSHOTTING"
	IndexingStatusErrorSnapshotting      IndexingStatus = "ERROR_SNAPSHOTTING"
	IndexingStatusUnindexable            IndexingStatus = "UNINDEXABLE"
	IndexingStatusLiveTailing            IndexingStatus = "LIVE_TAILING"
)

// IsFailed reports whether the status is one of the failure states that need manual requeue
func (s IndexingStatus) IsFailed() bool {
	return s == IndexingStatusErrorSnapshotting || s == IndexingStatusUnindexable
}

// IsPending reports whether the collection is still on its way to being snapshotted
func (s IndexingStatus) IsPending() bool {
	return s == IndexingStatusWaitingForSnapshotting || s == IndexingStatusSnapshotting
}

// CollectionStandard is the persisted token standard of a collection
type CollectionStandard string

const (
	CollectionStandardERC721  CollectionStandard = "ERC721"
	CollectionStandardERC1155 CollectionStandard = "ERC1155"
	CollectionStandardLegacy  CollectionStandard = "LEGACY_721"
	CollectionStandardUnknown CollectionStandard = "UNKNOWN"
)

// AdapterCryptoPunks names the CryptoPunks legacy integration
const AdapterCryptoPunks = "cryptopunks"

// ClassificationKind tags a Classification
type ClassificationKind int

const (
	ClassificationUnknown ClassificationKind = iota
	ClassificationStandard721
	ClassificationStandard1155Rejected
	ClassificationLegacyAdapter
)

// Classification is the result of deciding how a contract can be indexed.
// It is decided once during validation and carried through the snapshot.
type Classification struct {
	Kind ClassificationKind
	// Adapter names the legacy integration when Kind is ClassificationLegacyAdapter
	Adapter string
}

// Standard721 returns a classification for a plain ERC-721 contract
func Standard721() Classification {
	return Classification{Kind: ClassificationStandard721}
}

// Standard1155Rejected returns a classification for an ERC-1155 contract
func Standard1155Rejected() Classification {
	return Classification{Kind: ClassificationStandard1155Rejected}
}

// LegacyAdapter returns a classification for a legacy contract handled by the named adapter
func LegacyAdapter(name string) Classification {
	return Classification{Kind: ClassificationLegacyAdapter, Adapter: name}
}

// Standard returns the persisted standard for the classification
func (c Classification) Standard() CollectionStandard {
	switch c.Kind {
	case ClassificationStandard721:
		return CollectionStandardERC721
	case ClassificationStandard1155Rejected:
		return CollectionStandardERC1155
	case ClassificationLegacyAdapter:
		return CollectionStandardLegacy
	default:
		return CollectionStandardUnknown
	}
}

// AdapterName returns the adapter name, or nil when the contract needs no adapter
func (c Classification) AdapterName() *string {
	if c.Kind != ClassificationLegacyAdapter || c.Adapter == "" {
		return nil
	}
	name := c.Adapter
	return &name
}

// IsPunks reports whether the classification is the CryptoPunks adapter
func (c Classification) IsPunks() bool {
	return c.Kind == ClassificationLegacyAdapter && c.Adapter == AdapterCryptoPunks
}

// GrantKind distinguishes the two grant families sharing the same pipeline
type GrantKind string

const (
	GrantKindTDH  GrantKind = "tdh"
	GrantKindXTDH GrantKind = "xtdh"
)

// IsValidGrantKind checks if a grant kind is supported
func IsValidGrantKind(kind GrantKind) bool {
	return kind == GrantKindTDH || kind == GrantKindXTDH
}

// GrantStatus is the state of a grant
type GrantStatus string

const (
	GrantStatusPending  GrantStatus = "PENDING"
	GrantStatusGranted  GrantStatus = "GRANTED"
	GrantStatusFailed   GrantStatus = "FAILED"
	GrantStatusDisabled GrantStatus = "DISABLED"
)

// IsValidGrantStatus checks if a grant status is known
func IsValidGrantStatus(status GrantStatus) bool {
	switch status {
	case GrantStatusPending, GrantStatusGranted, GrantStatusFailed, GrantStatusDisabled:
		return true
	default:
		return false
	}
}

// GrantTokenMode tells whether a grant covers the whole collection or an explicit token list
type GrantTokenMode string

const (
	GrantTokenModeAll     GrantTokenMode = "ALL"
	GrantTokenModeInclude GrantTokenMode = "INCLUDE"
)
