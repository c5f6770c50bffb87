package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validHTTP() HTTPConfig {
	var c HTTPConfig
	c.Port = 8080
	c.Timeout.Read = time.Second
	c.Timeout.Write = time.Second
	c.Timeout.Idle = time.Second
	c.Timeout.ReadHeader = time.Second
	return c
}

func Test_HTTPConfig_Addr(t *testing.T) {
	c := validHTTP()
	assert.Equal(t, ":8080", c.Addr())

	c.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", c.Addr())
}

func Test_HTTPConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*HTTPConfig)
		expectError string
	}{
		{name: "valid", mutate: func(*HTTPConfig) {}},
		{name: "port too big", mutate: func(c *HTTPConfig) { c.Port = 70000 }, expectError: "server.port out of range: 70000"},
		{name: "negative header bytes", mutate: func(c *HTTPConfig) { c.MaxHeaderBytes = -1 }, expectError: "server.maxheaderbytes"},
		{name: "no idle timeout", mutate: func(c *HTTPConfig) { c.Timeout.Idle = 0 }, expectError: "server.timeout.idle must be greater than 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := validHTTP()
			tc.mutate(&c)
			// when
			err := c.Validate()
			// then
			if tc.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.expectError)
		})
	}
}

func Test_PProfConfig_Validate(t *testing.T) {
	assert.NoError(t, (&PProfConfig{Addr: "bogus"}).Validate())
	assert.NoError(t, (&PProfConfig{Enabled: true, Addr: "localhost:6060"}).Validate())
	assert.Error(t, (&PProfConfig{Enabled: true}).Validate())
}

func Test_NATSConfig_Validate(t *testing.T) {
	assert.NoError(t, (&NATSConfig{}).Validate())
	assert.Error(t, (&NATSConfig{Enabled: true, Timeout: time.Second, Stream: "INVENTORY"}).Validate())
	assert.NoError(t, (&NATSConfig{Enabled: true, Url: "nats://localhost:4222", Timeout: time.Second, Stream: "INVENTORY"}).Validate())
}

func Test_LogConfig_Validate(t *testing.T) {
	assert.NoError(t, (&LogConfig{Level: "DEBUG"}).Validate())
	assert.Error(t, (&LogConfig{Level: "trace"}).Validate())
}
