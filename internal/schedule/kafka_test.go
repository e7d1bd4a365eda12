package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"socialcast/internal/publish"
	"socialcast/pkg/logging"
)

type stubProducer struct {
	topic string
	value []byte
	err   error
}

func (p *stubProducer) ProduceMessage(_ context.Context, topic string, _ []byte, value []byte, _ map[string]string) error {
	p.topic = topic
	p.value = value
	return p.err
}

func TestEnqueueProducesScheduledPayload(t *testing.T) {
	prod := &stubProducer{}
	sched := &KafkaScheduler{producer: prod, topic: "scheduled_posts", logger: logging.NewLogger()}

	at := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	req := publish.Request{Title: "Launch", Caption: "Big news", Platforms: []string{"facebook"}}

	if err := sched.Enqueue(context.Background(), publish.NewScheduledPost(req, at)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if prod.topic != "scheduled_posts" {
		t.Fatalf("expected topic scheduled_posts, got %q", prod.topic)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(prod.value, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got["status"] != "scheduled" {
		t.Fatalf("expected status scheduled, got %v", got["status"])
	}
	if got["titulo"] != "Launch" {
		t.Fatalf("expected flattened request fields, got %v", got)
	}
	if _, ok := got["scheduled_at"]; !ok {
		t.Fatal("expected scheduled_at field")
	}
}

func TestEnqueueProduceFailure(t *testing.T) {
	prod := &stubProducer{err: errors.New("broker down")}
	sched := &KafkaScheduler{producer: prod, topic: "scheduled_posts", logger: logging.NewLogger()}

	err := sched.Enqueue(context.Background(), publish.NewScheduledPost(publish.Request{}, time.Now()))
	if err == nil {
		t.Fatal("expected error when produce fails")
	}
}
