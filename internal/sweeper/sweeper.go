package sweeper

import (
	"context"
)

// Sweeper is a background loop owned by the sweeper binary. The cycle
// scheduler is the only implementation today.
type Sweeper interface {
	// Start blocks until ctx is canceled or Stop is called
	Start(ctx context.Context) error
	// Stop waits for the in-flight tick, bounded by ctx
	Stop(ctx context.Context) error
	Name() string
}
