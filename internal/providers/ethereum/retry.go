package ethereum

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackOff waits base, 2*base, 3*base, ... between attempts
type LinearBackOff struct {
	Base    time.Duration
	attempt int
}

// NextBackOff implements backoff.BackOff
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.Base
}

// Reset implements backoff.BackOff
func (b *LinearBackOff) Reset() {
	b.attempt = 0
}

// NewRetryPolicy returns a context-aware linear backoff allowing maxRetries retries after the first attempt
func NewRetryPolicy(ctx context.Context, base time.Duration, maxRetries int) backoff.BackOffContext {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(&LinearBackOff{Base: base}, uint64(maxRetries)), ctx) //nolint:gosec,G115
}
