package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	MaxHeaderBytes int    `koanf:"maxheaderbytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readheader"`
	} `koanf:"timeout"`
}

// Addr returns the listen address. An empty host listens on every interface.
func (c *HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

func (c *HTTPConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- HTTP ---\n")
	fmt.Fprintf(&b, "  addr: %s\n", c.Addr())
	fmt.Fprintf(&b, "  maxheaderbytes: %d\n", c.MaxHeaderBytes)
	fmt.Fprintf(&b, "  timeout: read=%v write=%v idle=%v readheader=%v\n",
		c.Timeout.Read, c.Timeout.Write, c.Timeout.Idle, c.Timeout.ReadHeader)
	return b.String()
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Port)
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("server.maxheaderbytes must not be negative: %d", c.MaxHeaderBytes)
	}
	timeouts := []struct {
		key   string
		value time.Duration
	}{
		{"read", c.Timeout.Read},
		{"write", c.Timeout.Write},
		{"idle", c.Timeout.Idle},
		{"readheader", c.Timeout.ReadHeader},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("server.timeout.%s must be greater than 0, got %v", t.key, t.value)
		}
	}
	return nil
}

// PProfConfig configures the optional profiling listener.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	return fmt.Sprintf("\n--- PProf ---\n  enabled: %t\n  addr: %s\n", c.Enabled, c.Addr)
}

func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("pprof.addr %q: %w", c.Addr, err)
	}
	return nil
}

type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown.timeout must be greater than 0")
	}
	return nil
}

// LogConfig selects the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `koanf:"level"`
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n", c.Level)
}

func (c *LogConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
}
