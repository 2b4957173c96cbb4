package messaging

import (
	"context"
	"time"
)

// EventType is the kind of an indexing or grant event
type EventType string

const (
	EventCollectionLiveTailing EventType = "collection.live_tailing"
	EventCollectionError       EventType = "collection.error_snapshotting"
	EventCollectionUnindexable EventType = "collection.unindexable"
	EventGrantGranted          EventType = "grant.granted"
	EventGrantFailed           EventType = "grant.failed"
	EventGrantRescaled         EventType = "grant.rescaled"
)

// Event is a state transition announced to downstream consumers
type Event struct {
	// ID deduplicates redeliveries of the same transition
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Partition  string    `json:"partition,omitempty"`
	GrantID    string    `json:"grant_id,omitempty"`
	GrantKind  string    `json:"grant_kind,omitempty"`
	AtBlock    uint64    `json:"at_block,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes events to the message broker. Publishing is best effort:
// callers log failures and never roll back state because of them.
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish publishes one event
	Publish(ctx context.Context, event Event) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() {}
