package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"socialcast/internal/publish"
	"socialcast/pkg/kafka"
	"socialcast/pkg/logging"
)

type producer interface {
	ProduceMessage(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// KafkaScheduler hands deferred posts to the scheduling queue over Kafka.
// The downstream consumer owns persistence and eventual publication.
type KafkaScheduler struct {
	producer producer
	topic    string
	logger   logging.Logger
}

func NewKafkaScheduler(p *kafka.Producer, topic string, logger logging.Logger) *KafkaScheduler {
	return &KafkaScheduler{producer: p, topic: topic, logger: logger}
}

func (s *KafkaScheduler) Enqueue(ctx context.Context, post publish.ScheduledPost) error {
	value, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode scheduled post: %w", err)
	}

	key := []byte(uuid.New().String())
	headers := map[string]string{"source": "publisher"}
	if err := s.producer.ProduceMessage(ctx, s.topic, key, value, headers); err != nil {
		return fmt.Errorf("enqueue scheduled post: %w", err)
	}

	s.logger.WithFields(logging.Fields{
		"scheduled_at": post.ScheduledAt,
		"platforms":    post.Platforms,
	}).Info("Post deferred to scheduling queue")

	return nil
}
