// Package idempotency deduplicates publish calls that carry a
// caller-supplied idempotency key. Without a key every call is
// independent and may create duplicate posts on the remote platforms.
package idempotency

import (
	"context"
	"time"

	"socialcast/internal/publish"
)

// PublishFunc runs one publish call. It is invoked at most once per key
// within the deduplication window.
type PublishFunc func(ctx context.Context) (publish.Report, error)

// Store replays the stored report for a repeated key instead of
// publishing again. The second return value reports whether the result
// was replayed.
type Store interface {
	Execute(ctx context.Context, key string, fn PublishFunc) (publish.Report, bool, error)
}

// DefaultTTL bounds how long a key deduplicates. Keys are a retry guard,
// not a permanent record.
const DefaultTTL = 10 * time.Minute
