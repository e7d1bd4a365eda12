package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialcast/pkg/kafka"
	"socialcast/pkg/logging"
)

// Entry is one audit record for a single publish attempt against a single
// provider. Entries are emitted for successes and failures alike.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ClientID   string    `json:"client_id,omitempty"`
	OwnerID    string    `json:"owner_id,omitempty"`
	Provider   string    `json:"provider"`
	Success    bool      `json:"success"`
	PostID     string    `json:"post_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Logger records publish attempt audit entries. Implementations must never
// let audit failures interfere with the publish flow itself.
type Logger interface {
	Record(ctx context.Context, entry Entry)
}

type producer interface {
	ProduceMessage(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// KafkaLogger emits audit entries to a Kafka topic, falling back to the
// service log when the produce fails.
type KafkaLogger struct {
	producer producer
	topic    string
	logger   logging.Logger
}

func NewKafkaLogger(p *kafka.Producer, topic string, logger logging.Logger) *KafkaLogger {
	return &KafkaLogger{producer: p, topic: topic, logger: logger}
}

func (k *KafkaLogger) Record(ctx context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(entry)
	if err != nil {
		k.logger.WithError(err).Error("Failed to encode audit entry")
		return
	}

	headers := map[string]string{"source": "publisher"}
	if err := k.producer.ProduceMessage(ctx, k.topic, []byte(entry.UserID), value, headers); err != nil {
		k.logger.WithError(err).WithFields(logging.Fields{
			"provider": entry.Provider,
			"user_id":  entry.UserID,
		}).Error("Failed to produce audit entry, logging locally")
		k.logEntry(entry)
	}
}

func (k *KafkaLogger) logEntry(entry Entry) {
	logFallback(k.logger, entry)
}

// LogLogger writes audit entries to the structured service log only. Used
// when Kafka is not configured.
type LogLogger struct {
	logger logging.Logger
}

func NewLogLogger(logger logging.Logger) *LogLogger {
	return &LogLogger{logger: logger}
}

func (l *LogLogger) Record(_ context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	logFallback(l.logger, entry)
}

func logFallback(logger logging.Logger, entry Entry) {
	fields := logging.Fields{
		"audit_id": entry.ID,
		"user_id":  entry.UserID,
		"provider": entry.Provider,
		"success":  entry.Success,
	}
	if entry.PostID != "" {
		fields["post_id"] = entry.PostID
	}
	if entry.Error != "" {
		fields["error"] = entry.Error
	}
	logger.WithFields(fields).Info("Publish attempt")
}

// RedactToken replaces any occurrence of the given access token in s with
// a placeholder. Provider errors can echo request URLs that carry the
// token as a query parameter.
func RedactToken(s, token string) string {
	if token == "" || s == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "[redacted]")
}
