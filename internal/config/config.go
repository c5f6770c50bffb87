// Package config holds the configuration of the inventory service and inventoryctl.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
)

// EnvPrefix is the prefix of every environment variable read by the loader.
const EnvPrefix = "inventory"

var (
	_ configloader.Validator = (*Config)(nil)
	_ configloader.Validator = (*CLIConfig)(nil)
)

// StoreConfig locates the inventory files.
type StoreConfig struct {
	DataDir string `koanf:"datadir"`
	// Seed writes the sample records into missing or empty inventory files.
	Seed bool `koanf:"seed"`
}

func (c *StoreConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("store.datadir is not configured")
	}
	return nil
}

// AuthConfig locates the credential files.
type AuthConfig struct {
	AdminFile    string `koanf:"adminfile"`
	EmployeeFile string `koanf:"employeefile"`
	// CreateDefaults writes the default account into missing credential files.
	CreateDefaults bool `koanf:"createdefaults"`
}

func (c *AuthConfig) Validate() error {
	if c.AdminFile == "" || c.EmployeeFile == "" {
		return fmt.Errorf("auth.adminfile and auth.employeefile must be configured")
	}
	if filepath.Clean(c.AdminFile) == filepath.Clean(c.EmployeeFile) {
		return fmt.Errorf("auth.adminfile and auth.employeefile must differ")
	}
	return nil
}

// Config is the configuration of the inventory service.
type Config struct {
	HTTPServer     config.HTTPConfig           `koanf:"server"`
	Log            config.LogConfig            `koanf:"log"`
	PProf          config.PProfConfig          `koanf:"pprof"`
	Shutdown       config.ShutdownConfig       `koanf:"shutdown"`
	Store          StoreConfig                 `koanf:"store"`
	Auth           AuthConfig                  `koanf:"auth"`
	NATS           config.NATSConfig           `koanf:"nats"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// Defaults returns the values used when neither the config file nor the
// environment set them.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                        8080,
		"server.maxheaderbytes":              1 << 20,
		"server.timeout.read":                "5s",
		"server.timeout.write":               "10s",
		"server.timeout.idle":                "60s",
		"server.timeout.readheader":          "2s",
		"log.level":                          "info",
		"pprof.enabled":                      false,
		"pprof.addr":                         "localhost:6060",
		"shutdown.timeout":                   "10s",
		"store.datadir":                      "data",
		"store.seed":                         true,
		"auth.adminfile":                     "admin.txt",
		"auth.employeefile":                  "employee.txt",
		"auth.createdefaults":                true,
		"nats.enabled":                       false,
		"nats.url":                           "nats://localhost:4222",
		"nats.timeout":                       "5s",
		"nats.stream":                        "INVENTORY",
		"circuitbreaker.consecutivefailures": 5,
		"circuitbreaker.opentimeout":         "30s",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Store.String())
	b.WriteString(c.Auth.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer, &c.Log, &c.PProf, &c.Shutdown, &c.Store, &c.Auth, &c.NATS,
	}
	if c.NATS.Enabled {
		validators = append(validators, &c.CircuitBreaker)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CLIConfig is the subset of the configuration read by inventoryctl.
type CLIConfig struct {
	Log   config.LogConfig `koanf:"log"`
	Store StoreConfig      `koanf:"store"`
	Auth  AuthConfig       `koanf:"auth"`
}

// CLIDefaults returns the inventoryctl defaults. The CLI logs warnings only so
// its tables stay readable.
func CLIDefaults() map[string]any {
	return map[string]any{
		"log.level":           "warn",
		"store.datadir":       "data",
		"store.seed":          true,
		"auth.adminfile":      "admin.txt",
		"auth.employeefile":   "employee.txt",
		"auth.createdefaults": true,
	}
}

func (c *CLIConfig) Validate() error {
	for _, v := range []configloader.Validator{&c.Log, &c.Store, &c.Auth} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  datadir: %s\n", c.DataDir))
	b.WriteString(fmt.Sprintf("  seed: %t\n", c.Seed))
	return b.String()
}

// String returns a string representation of the auth configuration. Credentials
// themselves live in the files and are never printed.
func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  adminfile: %s\n", c.AdminFile))
	b.WriteString(fmt.Sprintf("  employeefile: %s\n", c.EmployeeFile))
	b.WriteString(fmt.Sprintf("  createdefaults: %t\n", c.CreateDefaults))
	return b.String()
}
