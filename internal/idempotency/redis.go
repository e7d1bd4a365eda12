package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"socialcast/internal/publish"
	"socialcast/pkg/logging"
)

const redisKeyPrefix = "publish:idem:"

// Redis deduplicates keys across publisher replicas. Reports are stored
// as JSON under a TTL; a Redis outage degrades to executing the publish
// without deduplication rather than failing the request.
type Redis struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger logging.Logger
}

func NewRedis(client goredis.UniversalClient, ttl time.Duration, logger logging.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Execute(ctx context.Context, key string, fn PublishFunc) (publish.Report, bool, error) {
	storageKey := redisKeyPrefix + key

	raw, err := r.client.Get(ctx, storageKey).Result()
	switch {
	case err == nil:
		var report publish.Report
		if decodeErr := json.Unmarshal([]byte(raw), &report); decodeErr == nil {
			return report, true, nil
		}
		r.logger.WithField("key", key).Warn("Corrupt idempotency record, republishing")
	case !errors.Is(err, goredis.Nil):
		r.logger.WithError(err).Warn("Idempotency store unavailable, publishing without deduplication")
	}

	report, err := fn(ctx)
	if err != nil {
		return publish.Report{}, false, err
	}

	value, err := json.Marshal(report)
	if err != nil {
		return report, false, nil
	}
	if err := r.client.SetNX(ctx, storageKey, value, r.ttl).Err(); err != nil {
		r.logger.WithError(err).Warn("Failed to record idempotency key")
	}
	return report, false, nil
}

// Key namespaces a caller-supplied idempotency key per user so one
// user's key can never replay another's report.
func Key(userID, idempotencyKey string) string {
	return fmt.Sprintf("%s:%s", userID, idempotencyKey)
}
