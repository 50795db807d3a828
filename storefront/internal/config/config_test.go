package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.NotifierTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 720*time.Hour, cfg.StateTTL)
	assert.Equal(t, "name,mobile,email,targetLink", cfg.RequiredFields)
	assert.Empty(t, cfg.NotifierURL)
	assert.Equal(t, uint64(20), cfg.MongoMaxPool)
	assert.Equal(t, 10*time.Second, cfg.MongoTimeout)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NOTIFIER_URL", "http://notify:8081/api/order")
	t.Setenv("NOTIFIER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "http://notify:8081/api/order", cfg.NotifierURL)
	assert.Equal(t, 5*time.Second, cfg.NotifierTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("STORE_BACKEND: mongo\nMONGO_DB_NAME: shop\nMONGO_MAX_POOL_SIZE: 50\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "shop", cfg.MongoDBName)
	assert.Equal(t, uint64(50), cfg.MongoMaxPool)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")

	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGO_MIN_POOL_SIZE", "30")
	_, err = Load()
	assert.ErrorContains(t, err, "MONGO_MIN_POOL_SIZE")

	t.Setenv("MONGO_MIN_POOL_SIZE", "0")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	_, err = Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}
