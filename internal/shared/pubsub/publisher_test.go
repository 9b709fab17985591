package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	defer p.Close()

	if err := p.Publish(context.Background(), TopicJourneyEvents, EventJourneyLogged, map[string]string{"id": "j1"}); err != nil {
		t.Fatalf("noop publish failed: %v", err)
	}
}

func TestNewNATSPublisher_ConnectFailure(t *testing.T) {
	if _, err := NewNATSPublisher("nats://127.0.0.1:1", "rewards-service", nil, nil); err == nil {
		t.Fatalf("expected connection to an unused port to fail")
	}
}

func TestEnvelopeShape(t *testing.T) {
	at := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)
	b, err := json.Marshal(Envelope{Event: EventBadgeUpgraded, OccurredAt: at, Data: map[string]string{"to": "silver"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"event":"badge.upgraded","occurredAt":"2024-05-15T09:00:00Z","data":{"to":"silver"}}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
