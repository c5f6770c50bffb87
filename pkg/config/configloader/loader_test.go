package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Store struct {
		DataDir string `koanf:"datadir"`
		Seed    bool   `koanf:"seed"`
	} `koanf:"store"`
	Shutdown struct {
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"shutdown"`
}

func (c testConfig) Validate() error {
	if c.Store.DataDir == "" {
		return errors.New("store.datadir is required")
	}
	return nil
}

func Test_Load_Precedence(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"store:\n  datadir: from-yaml\n  seed: true\nshutdown:\n  timeout: 5s\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"TESTAPP_SHUTDOWN_TIMEOUT=7s\nOTHER_STORE_DATADIR=ignored\n"), 0o644))
	t.Setenv("TESTAPP_STORE_SEED", "false")

	// when
	cfg, err := Load[testConfig]("testapp",
		WithDefaults(map[string]any{"store.datadir": "default", "shutdown.timeout": "1s"}))

	// then
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Store.DataDir)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, 7*time.Second, cfg.Shutdown.Timeout)
}

func Test_Load_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TESTAPP_STORE_DATADIR", "from-env")

	cfg, err := Load[testConfig]("testapp", WithOverrides(map[string]any{"store.datadir": "from-flag"}))

	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Store.DataDir)
}

func Test_Load_ExplicitFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load[testConfig]("testapp", WithFile("missing.yaml"))

	assert.Error(t, err)
}

func Test_Load_ValidationFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load[testConfig]("testapp")

	assert.ErrorContains(t, err, "config validation failed")
}
