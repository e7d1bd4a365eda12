package idempotency

import (
	"context"
	"time"

	"socialcast/internal/publish"
	"socialcast/pkg/cache"
)

// Memory deduplicates keys within a single process. Concurrent calls for
// the same key collapse into one publish via singleflight loading.
type Memory struct {
	cache *cache.Cache
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		cache: cache.New(cache.Options{TTL: ttl, MaxEntries: maxEntries}),
	}
}

func (m *Memory) Execute(ctx context.Context, key string, fn PublishFunc) (publish.Report, bool, error) {
	executed := false
	value, ok, err := m.cache.Get(ctx, key, func(ctx context.Context, _ string) (interface{}, bool, error) {
		executed = true
		report, err := fn(ctx)
		if err != nil {
			// Failed calls are not cached; a retry gets a fresh attempt.
			return nil, false, err
		}
		return report, true, nil
	})
	if err != nil {
		return publish.Report{}, false, err
	}
	if !ok {
		return publish.Report{}, false, nil
	}
	report := value.(publish.Report)
	return report, !executed, nil
}
