package config

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig controls when event publishing stops calling the broker.
type CircuitBreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutivefailures"`
	// OpenTimeout is how long the breaker stays open before letting one probe through.
	OpenTimeout time.Duration `koanf:"opentimeout"`
}

func (c *CircuitBreakerConfig) String() string {
	return fmt.Sprintf("\n--- Circuit Breaker ---\n  consecutivefailures: %d\n  opentimeout: %v\n",
		c.ConsecutiveFailures, c.OpenTimeout)
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
