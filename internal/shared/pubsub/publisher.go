package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Envelope wraps every published payload with its event name.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher delivers domain events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, subject, event string, payload any) error
	Close()
}

// Metrics receives publish outcomes.
type Metrics interface {
	EventPublished(subject string)
	EventPublishFailed(subject string)
}

// NATSPublisher publishes JSON envelopes on core NATS subjects.
type NATSPublisher struct {
	nc      *nats.Conn
	logger  *slog.Logger
	metrics Metrics
}

// NewNATSPublisher connects to url. The connection reconnects on its own; connection state
// changes are logged.
func NewNATSPublisher(url, name string, logger *slog.Logger, m Metrics) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{nc: nc, logger: logger, metrics: m}, nil
}

// Publish marshals payload inside an Envelope and publishes it on subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := json.Marshal(Envelope{Event: event, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		p.failed(subject)
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := p.nc.Publish(subject, b); err != nil {
		p.failed(subject)
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if p.metrics != nil {
		p.metrics.EventPublished(subject)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("nats drain failed", slog.Any("error", err))
	}
	p.nc.Close()
}

func (p *NATSPublisher) failed(subject string) {
	if p.metrics != nil {
		p.metrics.EventPublishFailed(subject)
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event (used when NATS is not configured).
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (noopPublisher) Close() {}
