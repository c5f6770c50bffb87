package config

import (
	"errors"
	"fmt"
	"time"
)

// NATSConfig configures record event publishing. Everything but Enabled is
// ignored while publishing is off.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	// Stream is the JetStream stream that captures inventory subjects.
	Stream string `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	if !c.Enabled {
		return "\n--- NATS ---\n  enabled: false\n"
	}
	return fmt.Sprintf("\n--- NATS ---\n  enabled: true\n  url: %s\n  timeout: %s\n  stream: %s\n",
		c.Url, c.Timeout, c.Stream)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	if c.Url == "" {
		errs = append(errs, errors.New("nats.url is not configured"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("nats.timeout must be greater than 0"))
	}
	if c.Stream == "" {
		errs = append(errs, errors.New("nats.stream is not configured"))
	}
	return errors.Join(errs...)
}
