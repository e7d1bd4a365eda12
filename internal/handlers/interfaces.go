package handlers

import (
	"context"

	"socialcast/internal/idempotency"
	"socialcast/internal/publish"
)

// Publisher runs one immediate publish call for a resolved user identity.
type Publisher interface {
	Publish(ctx context.Context, userID string, req publish.Request) (publish.Report, error)
}

// Scheduler enqueues deferred posts for later publication.
type Scheduler interface {
	Enqueue(ctx context.Context, post publish.ScheduledPost) error
}

// IdempotencyStore deduplicates publish calls carrying an idempotency key.
type IdempotencyStore = idempotency.Store
