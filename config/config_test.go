package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "http://remote.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "primrose", cfg.AppName)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "memory", cfg.NoticesDriver)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.NoticeTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "postgres://:@localhost:5432/primrose?sslmode=disable", cfg.DatabaseDSN())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REMOTE_BASE_URL", "http://remote.test")
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTICE_TTL", "90m")
	t.Setenv("HTTP_SERVER_ALLOW_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.NoticeTTL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowOrigins)
	assert.True(t, cfg.EventsEnabled)
}

func TestLoadDotEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("REMOTE_BASE_URL=http://from-file.test\nREMOTE_TOURS_PATH=/v2/tours\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REMOTE_BASE_URL")
		os.Unsetenv("REMOTE_TOURS_PATH")
	})

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file.test", cfg.RemoteBaseURL)
	assert.Equal(t, "/v2/tours", cfg.RemoteToursPath)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing remote", env: map[string]string{"REMOTE_BASE_URL": ""}},
		{name: "bad store driver", env: map[string]string{"REMOTE_BASE_URL": "http://r.test", "STORE_DRIVER": "mysql"}},
		{name: "bad notices driver", env: map[string]string{"REMOTE_BASE_URL": "http://r.test", "NOTICES_DRIVER": "disk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
