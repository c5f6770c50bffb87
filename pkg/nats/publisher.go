package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

type streamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NatsPublisher publishes events to JetStream and waits for the ack.
type NatsPublisher struct {
	js      streamPublisher
	timeout time.Duration
}

// NewNatsPublisher creates a publisher. A positive timeout bounds every publish call.
func NewNatsPublisher(js jetstream.JetStream, timeout time.Duration) *NatsPublisher {
	return &NatsPublisher{js: js, timeout: timeout}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
