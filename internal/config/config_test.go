package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadRequiresBackendURL(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL")
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_URL", "https://ledger.example/graphql")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, time.Minute, cfg.Backend.CatalogTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_URL", "https://ledger.example/graphql")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BACKEND_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_URL", "https://ledger.example/graphql")
	t.Setenv("STORAGE_DRIVER", "floppy")

	_, err := Load()
	require.Error(t, err)
}
