package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerPublisher wraps a Publisher in a circuit breaker so an unavailable
// broker fails fast instead of stalling every mutation.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher creates a BreakerPublisher around next.
func NewBreakerPublisher(next Publisher, cfg config.CircuitBreakerConfig) *BreakerPublisher {
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	st := gobreaker.Settings{
		Name:        "event-publisher-cb",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= max(cfg.ConsecutiveFailures, 1)
		},
		IsSuccessful: func(err error) bool {
			// a cancelled caller says nothing about the broker
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerPublisher{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

// Publish forwards the event unless the breaker is open, in which case it
// returns gobreaker.ErrOpenState right away.
func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	return err
}

// State returns the current breaker state, mostly for logging.
func (p *BreakerPublisher) State() gobreaker.State {
	return p.cb.State()
}

// defaultOpenTimeout is used when the config leaves the open timeout unset.
const defaultOpenTimeout = 30 * time.Second
