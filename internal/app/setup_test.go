package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.HTTPServer.Port = 8080
	cfg.Store = config.StoreConfig{DataDir: filepath.Join(dir, "data"), Seed: true}
	cfg.Auth = config.AuthConfig{
		AdminFile:      filepath.Join(dir, "admin.txt"),
		EmployeeFile:   filepath.Join(dir, "employee.txt"),
		CreateDefaults: true,
	}
	return cfg
}

func Test_SetupHttpHandler(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := SetupDependencies(context.Background(), testConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	h := SetupHttpHandler(deps)

	testCases := []struct {
		name         string
		path         string
		user         string
		password     string
		expectedCode int
	}{
		{name: "health", path: "/healthz", expectedCode: http.StatusOK},
		{name: "default admin", path: "/api/v1/inventories/product/records/1", user: "admin", password: "admin123", expectedCode: http.StatusOK},
		{name: "default employee", path: "/api/v1/inventories/raw_material/report", user: "employee", password: "emp123", expectedCode: http.StatusOK},
		{name: "anonymous", path: "/api/v1/inventories/product/records", expectedCode: http.StatusUnauthorized},
		{name: "unknown route", path: "/nope", expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.user != "" {
				req.SetBasicAuth(tc.user, tc.password)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}

func Test_OpenDirectory_WithoutDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.CreateDefaults = false

	directory, err := OpenDirectory(cfg.Auth, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, err)
	assert.NoFileExists(t, cfg.Auth.AdminFile)
	_, err = directory.CheckCredentials("admin", "admin123")
	assert.Error(t, err)
}

func Test_SetupHttpServer(t *testing.T) {
	deps, err := SetupDependencies(context.Background(), testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	srv := SetupHttpServer(deps, testConfig(t))

	assert.Equal(t, ":8080", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
